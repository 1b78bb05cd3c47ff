package engine

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
)

type pluginFunc struct {
	name    string
	install func(Engine) error
}

func (p pluginFunc) Name() string           { return p.name }
func (p pluginFunc) Install(e Engine) error { return p.install(e) }

// runWithTimeout runs e and fails the test if it does not return in time.
func runWithTimeout(t *testing.T, e Engine) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
	}
}

func TestSystemsRunInOrderAndRespectConditions(t *testing.T) {
	// Given a main schedule with a gated system between two ungated ones
	var mu sync.Mutex
	var order []string
	record := func(name string) SystemFunc {
		return func(c *Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			if len(order) >= 6 {
				c.Engine.Quit()
			}
			return nil
		}
	}
	e := NewEngine(WithLogger(logger.Discard()), WithTickRate(1000))
	e.AddSystem(ScheduleMain, "first", record("first"))
	e.AddSystem(ScheduleMain, "gated", record("gated"), func() bool { return false })
	e.AddSystem(ScheduleMain, "last", record("last"))

	// When the engine runs until the sixth invocation
	runWithTimeout(t, e)

	// Then the gated system never ran and the others alternated in order
	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "last", "first", "last", "first", "last"}
	if !slices.Equal(order[:6], want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestScheduleRegistration(t *testing.T) {
	e := NewEngine(WithLogger(logger.Discard()))
	noop := func(*Context) error { return nil }

	e.AddSystem(ScheduleRender, "a", noop)
	e.AddSystem(ScheduleRender, "b", noop)
	e.AddSystem(ScheduleRender, "c", noop)
	e.AddSystem(ScheduleRender, "b", noop)
	if got := e.Systems(ScheduleRender); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("replace moved the system: %v", got)
	}

	e.AddSystemBefore(ScheduleRender, "a", "z", noop)
	e.AddSystemBefore(ScheduleRender, "missing", "y", noop)
	if got := e.Systems(ScheduleRender); !slices.Equal(got, []string{"z", "a", "b", "c", "y"}) {
		t.Errorf("systems = %v", got)
	}

	if !e.RemoveSystem(ScheduleRender, "b") || e.RemoveSystem(ScheduleRender, "b") {
		t.Error("RemoveSystem did not report the removal once")
	}
	if len(e.Systems(ScheduleMain)) != 0 {
		t.Error("render registrations leaked into the main schedule")
	}
}

func TestContextsOwnSeparateStores(t *testing.T) {
	// Given one system per schedule reading its own store
	type marker struct{ schedule Schedule }
	e := NewEngine(WithLogger(logger.Discard()), WithTickRate(1000))
	handoff.Insert(e.Resources(ScheduleMain), marker{ScheduleMain})
	handoff.Insert(e.Resources(ScheduleRender), marker{ScheduleRender})

	var mainSeen, renderSeen atomic.Bool
	check := func(seen *atomic.Bool) SystemFunc {
		return func(c *Context) error {
			m, ok := handoff.Get[marker](c.Resources)
			if ok && m.schedule == c.Schedule {
				seen.Store(true)
			}
			if mainSeen.Load() && renderSeen.Load() {
				c.Engine.Quit()
			}
			return nil
		}
	}
	e.AddSystem(ScheduleMain, "main", check(&mainSeen))
	e.AddSystem(ScheduleRender, "render", check(&renderSeen))

	runWithTimeout(t, e)

	if !mainSeen.Load() || !renderSeen.Load() {
		t.Errorf("main saw its store = %v, render saw its store = %v", mainSeen.Load(), renderSeen.Load())
	}
}

func TestSystemErrorDoesNotStopTheSchedule(t *testing.T) {
	var after atomic.Int32
	e := NewEngine(WithLogger(logger.Discard()), WithTickRate(1000))
	e.AddSystem(ScheduleMain, "broken", func(*Context) error { return errors.New("boom") })
	e.AddSystem(ScheduleMain, "after", func(c *Context) error {
		if after.Add(1) == 3 {
			c.Engine.Quit()
		}
		return nil
	})

	runWithTimeout(t, e)

	if after.Load() < 3 {
		t.Errorf("system after a failing one ran %d times", after.Load())
	}
}

func TestRenderPanicQuitsAndRunsHooks(t *testing.T) {
	// Given a render system that panics and two quit hooks
	e := NewEngine(WithLogger(logger.Discard()))
	e.AddSystem(ScheduleRender, "explode", func(*Context) error { panic("gpu lost") })
	var hooks []string
	e.OnQuit(func() { hooks = append(hooks, "first") })
	e.OnQuit(func() { hooks = append(hooks, "second") })

	// When the engine runs
	runWithTimeout(t, e)

	// Then it stopped, cancelled its context and ran the hooks in reverse order
	if e.Context().Err() == nil {
		t.Error("context not cancelled")
	}
	if !slices.Equal(hooks, []string{"second", "first"}) {
		t.Errorf("hooks = %v", hooks)
	}
}

func TestFreeRunningPacesOnBlockingSystem(t *testing.T) {
	var passes atomic.Int32
	e := NewEngine(WithLogger(logger.Discard()), WithTickRate(1), WithFreeRunning())
	e.AddSystem(ScheduleMain, "wait", func(c *Context) error {
		time.Sleep(time.Millisecond)
		if passes.Add(1) == 5 {
			c.Engine.Quit()
		}
		return nil
	})

	// A 1 Hz ticker would need seconds for five passes.
	start := time.Now()
	runWithTimeout(t, e)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("free-running loop took %v for five passes", elapsed)
	}
}

func TestAddPlugin(t *testing.T) {
	e := NewEngine(WithLogger(logger.Discard()))
	ok := pluginFunc{name: "ok", install: func(e Engine) error {
		e.AddSystem(ScheduleMain, "ok.tick", func(*Context) error { return nil })
		return nil
	}}
	boom := errors.New("no runtime")
	bad := pluginFunc{name: "bad", install: func(Engine) error { return boom }}

	if err := e.AddPlugin(ok); err != nil {
		t.Fatal(err)
	}
	if err := e.AddPlugin(bad); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped install error", err)
	}
	if got := e.Plugins(); !slices.Equal(got, []string{"ok"}) {
		t.Errorf("plugins = %v", got)
	}
	if got := e.Systems(ScheduleMain); !slices.Equal(got, []string{"ok.tick"}) {
		t.Errorf("systems = %v", got)
	}
}
