package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
	"github.com/charmbracelet/log"
)

// idleBackoff is how long a free-running loop sleeps after a pass in which no system ran.
const idleBackoff = time.Millisecond

// engine implements the Engine interface.
// Coordinates the main, render, and window threads.
type engine struct {
	logger *log.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	freeRunning     atomic.Bool

	running atomic.Bool
	wg      sync.WaitGroup

	ctx      context.Context
	cancel   context.CancelFunc
	quitOnce sync.Once // Ensures the context is only cancelled once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	schedules [2]*schedule
	stores    [2]*handoff.Store

	hookMu    sync.Mutex
	quitHooks []func()
	plugins   []string
}

// Engine is the main entry point for the engine.
// It runs two goroutine contexts, a fixed-rate main loop and a render loop, each
// executing an ordered list of named systems, and owns the desktop window if one is attached.
type Engine interface {
	// Window returns the attached window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the main loop tick rate in ticks per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetFreeRunning lets the main loop run passes back to back instead of on the
	// ticker. A blocking system (such as a compositor frame wait) then paces the loop;
	// passes in which no system runs back off briefly.
	//
	// Parameters:
	//   - free: true to run unpaced
	SetFreeRunning(free bool)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddSystem appends a system to a schedule. A system with the same name is
	// replaced in place, keeping its position.
	//
	// Parameters:
	//   - s: the schedule to run in
	//   - name: unique name within the schedule
	//   - fn: the work to run each pass
	//   - conds: run conditions; the system runs only when all of them hold
	AddSystem(s Schedule, name string, fn SystemFunc, conds ...func() bool)

	// AddSystemBefore inserts a system ahead of anchor. When anchor is not
	// registered the system is appended.
	//
	// Parameters:
	//   - s: the schedule to run in
	//   - anchor: the system to run before
	//   - name: unique name within the schedule
	//   - fn: the work to run each pass
	//   - conds: run conditions
	AddSystemBefore(s Schedule, anchor, name string, fn SystemFunc, conds ...func() bool)

	// RemoveSystem unregisters a system.
	//
	// Returns:
	//   - bool: false if no system of that name was registered
	RemoveSystem(s Schedule, name string) bool

	// Systems returns the system names of a schedule in run order.
	Systems(s Schedule) []string

	// Resources returns the store owned by a schedule's context.
	Resources(s Schedule) *handoff.Store

	// AddPlugin installs a plugin. Plugins register their systems and hooks in Install.
	//
	// Parameters:
	//   - p: the plugin
	//
	// Returns:
	//   - error: the plugin's install failure
	AddPlugin(p Plugin) error

	// Plugins returns the names of the installed plugins in install order.
	Plugins() []string

	// OnQuit registers a function run after both loops stopped. Hooks run in
	// reverse registration order.
	OnQuit(fn func())

	// Context returns a context cancelled when the engine quits.
	Context() context.Context

	// Run starts the main and render loops and blocks until the engine quits.
	// With a window attached, the window message loop runs on the calling goroutine
	// and closing the window quits the engine.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// Plugin bundles systems, resources and hooks installed into an engine as a unit.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Install registers the plugin with e.
	//
	// Parameters:
	//   - e: the engine being configured
	//
	// Returns:
	//   - error: a failure that makes the plugin unusable
	Install(e Engine) error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, window, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &engine{
		logger:          logger.For("engine"),
		tickRateChannel: make(chan time.Duration, 1),
		ctx:             ctx,
		cancel:          cancel,
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		schedules:       [2]*schedule{{}, {}},
		stores:          [2]*handoff.Store{handoff.NewStore(ScheduleMain.String()), handoff.NewStore(ScheduleRender.String())},
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			if e.ctx.Err() != nil {
				e.window.RequestClose()
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Context() context.Context {
	return e.ctx
}

func (e *engine) Run() {
	e.running.Store(true)
	e.logger.Info("engine starting", "tick_rate", e.engineTickRate, "plugins", e.Plugins())
	e.handle()

	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}

	e.wg.Wait()
	e.running.Store(false)
	e.runQuitHooks()
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Warn("window close failed", "err", err)
		}
	}
	e.logger.Info("engine stopped")
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit cancels the engine context to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.cancel()
	})
}

// handle launches the main and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the main schedule. On the ticker by default, back to back
// when free-running. Listens for dynamic rate changes via tickRateChannel and
// exits when the engine context is cancelled.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer e.recoverLoop(ScheduleMain)

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	c := &Context{Ctx: e.ctx, Schedule: ScheduleMain, Resources: e.stores[ScheduleMain], Engine: e}
	lastTick := time.Now()
	pass := func() int {
		now := time.Now()
		c.Delta = float32(now.Sub(lastTick).Seconds())
		c.Pass++
		lastTick = now
		return e.runPass(c)
	}

	for {
		if e.freeRunning.Load() {
			select {
			case <-e.ctx.Done():
				return
			case newRate := <-e.tickRateChannel:
				ticker.Reset(newRate)
				e.engineTickRate = newRate
			default:
				if pass() == 0 {
					time.Sleep(idleBackoff)
				}
			}
			continue
		}

		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			pass()
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render schedule as fast as its systems allow, optionally
// frame-limited. Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer e.recoverLoop(ScheduleRender)

	c := &Context{Ctx: e.ctx, Schedule: ScheduleRender, Resources: e.stores[ScheduleRender], Engine: e}
	lastRender := time.Now()

	for {
		select {
		case <-e.ctx.Done():
			return
		default:
		}

		now := time.Now()
		c.Delta = float32(now.Sub(lastRender).Seconds())
		c.Pass++
		lastRender = now

		ran := e.runPass(c)

		if e.profilingEnabled.Load() && e.profiler != nil {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
				time.Sleep(remaining)
			}
		} else if ran == 0 {
			time.Sleep(idleBackoff)
		}
	}
}

// runPass runs every ready system of c.Schedule once, in order.
//
// Returns:
//   - int: the number of systems that ran
func (e *engine) runPass(c *Context) int {
	ran := 0
	for _, sys := range e.schedules[c.Schedule].snapshot() {
		if c.Ctx.Err() != nil {
			break
		}
		if !sys.ready() {
			continue
		}
		ran++
		if err := sys.fn(c); err != nil {
			e.logger.Warn("system failed", "schedule", c.Schedule, "system", sys.name, "err", err)
		}
	}
	return ran
}

// recoverLoop turns a panic inside a loop goroutine into a logged error and an engine quit.
func (e *engine) recoverLoop(s Schedule) {
	if r := recover(); r != nil {
		e.logger.Error("loop recovered from panic", "schedule", s, "panic", r)
		e.signalQuit()
	}
}

func (e *engine) runQuitHooks() {
	e.hookMu.Lock()
	hooks := slices.Clone(e.quitHooks)
	e.quitHooks = nil
	e.hookMu.Unlock()
	for _, fn := range slices.Backward(hooks) {
		fn()
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetFreeRunning(free bool) {
	e.freeRunning.Store(free)
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddSystem(s Schedule, name string, fn SystemFunc, conds ...func() bool) {
	e.schedules[s].add(name, fn, conds)
}

func (e *engine) AddSystemBefore(s Schedule, anchor, name string, fn SystemFunc, conds ...func() bool) {
	e.schedules[s].insertBefore(anchor, name, fn, conds)
}

func (e *engine) RemoveSystem(s Schedule, name string) bool {
	return e.schedules[s].remove(name)
}

func (e *engine) Systems(s Schedule) []string {
	return e.schedules[s].names()
}

func (e *engine) Resources(s Schedule) *handoff.Store {
	return e.stores[s]
}

func (e *engine) AddPlugin(p Plugin) error {
	if err := p.Install(e); err != nil {
		return fmt.Errorf("engine: install plugin %s: %w", p.Name(), err)
	}
	e.hookMu.Lock()
	e.plugins = append(e.plugins, p.Name())
	e.hookMu.Unlock()
	e.logger.Debug("plugin installed", "plugin", p.Name())
	return nil
}

func (e *engine) Plugins() []string {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	return slices.Clone(e.plugins)
}

func (e *engine) OnQuit(fn func()) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.quitHooks = append(e.quitHooks, fn)
}
