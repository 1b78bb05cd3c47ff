package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
)

// Schedule names one of the two engine contexts a system runs in.
type Schedule int

const (
	// ScheduleMain runs on the engine tick goroutine: simulation, input, event polling.
	ScheduleMain Schedule = iota

	// ScheduleRender runs on the render goroutine: GPU submission and presentation.
	ScheduleRender
)

func (s Schedule) String() string {
	switch s {
	case ScheduleMain:
		return "main"
	case ScheduleRender:
		return "render"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

// Context is handed to every system invocation.
type Context struct {
	// Ctx is cancelled when the engine quits.
	Ctx context.Context

	// Schedule is the context the system runs in.
	Schedule Schedule

	// Delta is the time since the previous pass of the same schedule, in seconds.
	Delta float32

	// Pass counts the passes of the schedule, starting at 1.
	Pass uint64

	// Resources is the store owned by the schedule's context.
	Resources *handoff.Store

	// Engine is the running engine.
	Engine Engine
}

// SystemFunc is one named unit of work in a schedule. A returned error is logged
// with the system's name; the schedule continues with the next system.
type SystemFunc func(c *Context) error

// system is a registered SystemFunc and the conditions gating it.
type system struct {
	name  string
	fn    SystemFunc
	conds []func() bool
}

// ready reports whether every condition holds.
func (s *system) ready() bool {
	for _, c := range s.conds {
		if c != nil && !c() {
			return false
		}
	}
	return true
}

// schedule is an ordered list of systems. Registration may happen from any
// goroutine; a pass runs over a snapshot taken at its start.
type schedule struct {
	mu      sync.RWMutex
	systems []*system
}

// add appends a system, or replaces a system of the same name in place.
func (s *schedule) add(name string, fn SystemFunc, conds []func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sys := &system{name: name, fn: fn, conds: conds}
	if i := s.index(name); i >= 0 {
		s.systems[i] = sys
		return
	}
	s.systems = append(s.systems, sys)
}

// insertBefore places a system ahead of anchor, or appends it when anchor is unknown.
func (s *schedule) insertBefore(anchor, name string, fn SystemFunc, conds []func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(name); i >= 0 {
		s.systems = slices.Delete(s.systems, i, i+1)
	}
	sys := &system{name: name, fn: fn, conds: conds}
	i := s.index(anchor)
	if i < 0 {
		s.systems = append(s.systems, sys)
		return
	}
	s.systems = slices.Insert(s.systems, i, sys)
}

func (s *schedule) remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.systems = slices.Delete(s.systems, i, i+1)
	return true
}

func (s *schedule) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.systems))
	for i, sys := range s.systems {
		out[i] = sys.name
	}
	return out
}

func (s *schedule) snapshot() []*system {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.systems)
}

// index must be called with mu held.
func (s *schedule) index(name string) int {
	return slices.IndexFunc(s.systems, func(sys *system) bool { return sys.name == name })
}
