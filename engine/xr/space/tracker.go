package space

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
)

// Target receives located poses. Implementations guard their transform themselves;
// the tracker calls UpdateTransform from worker goroutines.
type Target interface {
	UpdateTransform(fn func(t *Transform))
}

// TransformTarget is a mutex-guarded Transform usable as a Target.
type TransformTarget struct {
	mu sync.Mutex
	t  Transform
}

// NewTransformTarget creates a target starting at the given transform.
func NewTransformTarget(t Transform) *TransformTarget {
	return &TransformTarget{t: t}
}

// UpdateTransform implements Target.
func (tt *TransformTarget) UpdateTransform(fn func(t *Transform)) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	fn(&tt.t)
}

// Transform returns a copy of the current transform.
func (tt *TransformTarget) Transform() Transform {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.t
}

// binding ties a tracked space to the target its pose is written into.
type binding struct {
	id       int
	space    Space
	target   Target
	velocity bool
	last     Location
}

// tracker implements the Tracker interface.
type tracker struct {
	rt      openxr.Runtime
	logger  *log.Logger
	workers int
	pool    worker.DynamicWorkerPool

	mu       sync.RWMutex
	bindings map[int]*binding
	nextID   int
}

// Tracker keeps a registry of (space, target) bindings and refreshes every target once per frame.
type Tracker interface {
	// Track registers a space whose pose is written into target each frame.
	//
	// Parameters:
	//   - space: the space to locate; its ownership is kept as given
	//   - target: the receiver of the located pose
	//   - withVelocity: also request velocities, exposed through Last
	//
	// Returns:
	//   - int: a handle for Untrack and Last
	Track(space Space, target Target, withVelocity bool) int

	// Untrack removes a binding. The space is not destroyed.
	//
	// Parameters:
	//   - id: the handle returned by Track
	Untrack(id int)

	// Len returns the number of bindings.
	Len() int

	// Last returns the location most recently produced for a binding.
	//
	// Parameters:
	//   - id: the handle returned by Track
	//
	// Returns:
	//   - Location: the last location
	//   - bool: false if id is unknown
	Last(id int) (Location, bool)

	// Update locates every tracked space against base at the same time, concurrently,
	// and applies the valid components to the targets. Bindings whose location fails
	// keep their previous transform.
	//
	// Parameters:
	//   - base: the reference space
	//   - time: the frame's query time, shared by every binding
	//
	// Returns:
	//   - error: the joined failures, nil if every binding was located
	Update(base Space, time openxr.Time) error
}

var _ Tracker = &tracker{}

// NewTracker creates a Tracker backed by a dynamic worker pool.
//
// Parameters:
//   - rt: the runtime used to locate spaces
//   - options: functional options
//
// Returns:
//   - Tracker: the tracker
func NewTracker(rt openxr.Runtime, options ...TrackerBuilderOption) Tracker {
	t := &tracker{
		rt:       rt,
		logger:   logger.For("xr.space"),
		workers:  max(runtime.NumCPU()-1, 1),
		bindings: make(map[int]*binding),
	}
	for _, opt := range options {
		opt(t)
	}
	t.pool = worker.NewDynamicWorkerPool(t.workers, 64, time.Second)
	return t
}

func (t *tracker) Track(space Space, target Target, withVelocity bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.bindings[t.nextID] = &binding{id: t.nextID, space: space, target: target, velocity: withVelocity}
	return t.nextID
}

func (t *tracker) Untrack(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bindings, id)
}

func (t *tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}

func (t *tracker) Last(id int) (Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bindings[id]
	if !ok {
		return Location{}, false
	}
	return b.last, true
}

func (t *tracker) Update(base Space, at openxr.Time) error {
	t.mu.RLock()
	list := make([]*binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		list = append(list, b)
	}
	t.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })

	var wg sync.WaitGroup
	results := make([]Location, len(list))
	errs := make([]error, len(list))
	for i, b := range list {
		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: b.id,
			Do: func() (any, error) {
				defer wg.Done()
				loc, err := Locate(t.rt, b.space, base, at, b.velocity)
				if err != nil {
					errs[i] = fmt.Errorf("space: locate binding %d: %w", b.id, err)
					return nil, errs[i]
				}
				results[i] = loc
				b.target.UpdateTransform(func(tr *Transform) { Apply(loc, tr) })
				return loc, nil
			},
		})
	}
	wg.Wait()

	t.mu.Lock()
	for i, b := range list {
		if errs[i] == nil {
			b.last = results[i]
		}
	}
	t.mu.Unlock()

	err := errors.Join(errs...)
	if err != nil {
		t.logger.Warn("tracked space location failed", "err", err)
	}
	return err
}
