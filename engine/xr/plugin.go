// Package xr plugs the OpenXR stack into the engine. Installing the plugin
// creates the instance, registers the systems that drive the session lifecycle
// and the frame loop on the engine's two contexts, and falls back to the flat
// window renderer whenever no headset session is running.
//
// The main schedule polls runtime events, creates the session when requested,
// waits for the next frame and locates tracked spaces before handing the frame
// over. The render schedule runs the handed-over frame: it acquires the swapchain
// image, locates the eyes, calls the render function and ends the frame.
package xr

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/config"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/frame"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/instance"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/loader"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// System names registered by Install. Other plugins can order their systems
// against them with AddSystemBefore.
const (
	SystemPoll          = "xr.poll"
	SystemCreateSession = "xr.create_session"
	SystemWaitFrame     = "xr.wait_frame"
	SystemRenderFrame   = "xr.render_frame"
	SystemFlatFrame     = "xr.flat_frame"
)

// RenderFunc draws one headset frame. Layer i of f.Texture belongs to eyes[i].
type RenderFunc func(f *frame.Frame, eyes []camera.Camera) error

// FlatRenderFunc draws into the open pass of a window frame, seen through the
// flat camera.
type FlatRenderFunc func(pass *wgpu.RenderPassEncoder, view camera.Camera) error

// Default flat camera placement: standing eye height, two meters behind the origin.
var (
	defaultFlatEye    = [3]float32{0, 1.6, 2}
	defaultFlatTarget = [3]float32{0, 1.6, 0}
)

const (
	lossNone int32 = iota
	lossSession
	lossInstance
)

// pendingFrame is a waited frame on its way from the main to the render context.
type pendingFrame struct {
	driver frame.Driver
	state  openxr.FrameState
}

// plugin implements the Plugin interface.
type plugin struct {
	logger *log.Logger

	// Pre-install configuration collected from builder options
	configPath     string
	watchConfig    bool
	runtime        openxr.Runtime
	backends       []graphics.Backend
	preferred      []graphics.BackendKind
	extensions     []string
	required       []string
	autoCreate     bool
	render         RenderFunc
	flatRender     FlatRenderFunc
	flatOptions    []renderer.RendererBuilderOption
	cameraOptions  []camera.CameraBuilderOption
	flatView       [2][3]float32
	sessionOptions []session.SessionBuilderOption
	workers        int

	registry  *handoff.Registry
	providers *frame.Providers
	frames    *handoff.Mailbox[pendingFrame]
	rig       *camera.Rig
	flatCam   camera.Camera

	engine  engine.Engine
	inst    instance.Instance
	machine *session.StateMachine
	timing  *space.Timing
	tracker space.Tracker
	flat    renderer.Renderer

	mu          sync.Mutex
	cfg         config.Config
	driver      frame.Driver
	device      *graphics.Device
	recenter    *space.Recenter
	tracked     []int
	viewTargets []space.Target
	retired     []*graphics.Device

	// frameMu is held by the render context for the whole of a frame; teardown
	// takes it so a session is never destroyed under a running frame.
	frameMu   sync.Mutex
	requested atomic.Bool
	inFlight  atomic.Bool
	loss      atomic.Int32
}

// Plugin is the XR integration installed into an engine.
//
// Before Install only the registration methods (RegisterCreator,
// RegisterLayerProvider, TrackView) have an effect. When Install found no usable
// runtime the conditions all report false and the engine renders flat.
type Plugin interface {
	engine.Plugin

	// InstanceCreated reports whether a usable instance exists.
	InstanceCreated() bool

	// SessionCreated reports whether a session exists, in any state.
	SessionCreated() bool

	// SessionReady reports whether the runtime asked the session to begin.
	SessionReady() bool

	// SessionRunning reports whether frames may be submitted.
	SessionRunning() bool

	// ShouldRender reports whether the runtime wanted content for the last waited frame.
	ShouldRender() bool

	// Status returns the lifecycle status, StatusUnavailable without an instance.
	Status() session.Status

	// Subscribe returns a channel receiving every status transition.
	//
	// Parameters:
	//   - buffer: the channel capacity
	//
	// Returns:
	//   - <-chan session.StateChanged: the subscription, nil when XR is unavailable
	Subscribe(buffer int) <-chan session.StateChanged

	// CreateSession asks for a session to be created on the next main pass.
	// It has no effect while a session exists.
	CreateSession()

	// RequestExit asks the runtime to stop the running session.
	//
	// Returns:
	//   - error: the native failure, nil when no session runs
	RequestExit() error

	// RegisterCreator adds a per-session resource creator.
	RegisterCreator(c handoff.Creator)

	// RegisterLayerProvider adds a composition layer provider. Registering an
	// existing name replaces it.
	RegisterLayerProvider(name string, lp frame.LayerProvider)

	// Track writes the pose of sp into target every frame until the session ends.
	//
	// Parameters:
	//   - sp: a space of the current session
	//   - target: the receiver of the pose
	//   - withVelocity: also locate velocities
	//
	// Returns:
	//   - int: the tracker handle, -1 when XR is unavailable
	Track(sp space.Space, target space.Target, withVelocity bool) int

	// TrackView follows the headset with target in every session.
	TrackView(target space.Target)

	// Session returns the current session, nil when none exists.
	Session() session.Session

	// Instance returns the instance, nil when XR is unavailable.
	Instance() instance.Instance

	// Config returns the configuration the next session is created with.
	Config() config.Config

	// Eyes returns the cameras of the last rendered frame.
	Eyes() []camera.Camera

	// Flat returns the window renderer, nil when running headless.
	Flat() renderer.Renderer

	// FlatCamera returns the camera the window is drawn with while no session runs.
	FlatCamera() camera.Camera
}

var _ Plugin = &plugin{}

// NewPlugin creates the XR plugin. Without WithRuntime the system OpenXR loader is used.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Plugin: the plugin, ready for engine.AddPlugin
func NewPlugin(options ...PluginBuilderOption) Plugin {
	p := &plugin{
		logger:     logger.For("xr"),
		cfg:        config.Default(),
		autoCreate: true,
		flatView:   [2][3]float32{defaultFlatEye, defaultFlatTarget},
		providers:  frame.NewProviders(),
		frames:     handoff.NewMailbox[pendingFrame](),
	}
	for _, opt := range options {
		opt(p)
	}
	p.registry = handoff.NewRegistry(p.logger)
	p.rig = camera.NewRig(p.cameraOptions...)
	p.flatCam = camera.NewCamera(append(append([]camera.CameraBuilderOption{}, p.cameraOptions...),
		camera.WithLookAt(p.flatView[0], p.flatView[1]))...)
	p.registry.Register(handoff.NewResource("session", func(s session.Session) (session.Session, error) {
		return s, nil
	}, nil))
	p.registry.Register(handoff.NewResource("device", func(s session.Session) (*graphics.Device, error) {
		return s.Device(), nil
	}, nil))
	return p
}

func (p *plugin) Name() string { return "xr" }

func (p *plugin) Install(e engine.Engine) error {
	p.engine = e
	p.loadConfig()
	if err := p.installFlat(e); err != nil {
		return err
	}

	rt := p.runtime
	if rt == nil {
		var err error
		rt, err = loader.Load()
		if err != nil {
			p.logger.Warn("OpenXR runtime unavailable, rendering flat", "err", err)
			return nil
		}
	}

	cfg := p.Config()
	inst, err := instance.New(rt, p.instanceOptions(cfg)...)
	if err != nil {
		p.logger.Warn("OpenXR instance creation failed, rendering flat", "err", err)
		return nil
	}
	p.inst = inst
	p.machine = session.NewStateMachine(inst, p.logger)
	p.timing = space.NewTiming(cfg.XR.Pipelined)
	trackerOptions := []space.TrackerBuilderOption{space.WithLogger(p.logger)}
	if p.workers > 0 {
		trackerOptions = append(trackerOptions, space.WithWorkers(p.workers))
	}
	p.tracker = space.NewTracker(rt, trackerOptions...)
	p.machine.OnTeardown(p.onTeardown)
	p.machine.OnBeforeEnd(p.beforeEnd)
	p.machine.OnReferenceSpaceChange(p.onReferenceSpaceChange)
	p.requested.Store(p.autoCreate)

	// xrWaitFrame paces the main loop from here on.
	e.SetFreeRunning(true)
	e.AddSystem(engine.ScheduleMain, SystemPoll, p.poll, p.hasInstance)
	e.AddSystem(engine.ScheduleMain, SystemCreateSession, p.createSession, p.sessionRequested)
	e.AddSystem(engine.ScheduleMain, SystemWaitFrame, p.waitFrame, p.canWait)
	e.AddSystem(engine.ScheduleRender, SystemRenderFrame, p.renderFrame, p.frames.Pending)
	e.OnQuit(p.shutdown)

	if p.watchConfig && p.configPath != "" {
		if err := config.Watch(e.Context(), p.configPath, p.logger, p.applyConfig); err != nil {
			p.logger.Warn("config watch failed", "path", p.configPath, "err", err)
		}
	}
	props := inst.SystemProperties()
	p.logger.Info("XR ready", "system", props.SystemName, "backend", inst.Backend().Kind(), "runtime", inst.RuntimeProperties().RuntimeName)
	return nil
}

// loadConfig reads the config file over the defaults. A missing file is not an error.
func (p *plugin) loadConfig() {
	if p.configPath == "" {
		return
	}
	cfg, err := config.Load(p.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		p.logger.Info("no config file, using defaults", "path", p.configPath)
		return
	case err != nil:
		p.logger.Warn("config ignored", "path", p.configPath, "err", err)
		return
	}
	p.setConfig(cfg)
	if cfg.Log.Level != "" {
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			p.logger.Warn("log level ignored", "level", cfg.Log.Level, "err", err)
		}
	}
}

// applyConfig takes a reloaded configuration. Negotiation preferences wait for
// the next session; the pipelined flag applies at the next frame.
func (p *plugin) applyConfig(cfg config.Config) {
	p.setConfig(cfg)
	if p.timing != nil {
		p.timing.SetPipelined(cfg.XR.Pipelined)
	}
	if cfg.Log.Level != "" {
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			p.logger.Warn("log level ignored", "level", cfg.Log.Level, "err", err)
		}
	}
}

func (p *plugin) setConfig(cfg config.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

func (p *plugin) Config() config.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// instanceOptions merges the file preferences with the builder options, which win.
func (p *plugin) instanceOptions(cfg config.Config) []instance.InstanceBuilderOption {
	opts := []instance.InstanceBuilderOption{
		instance.WithLogger(p.logger),
		instance.WithAppInfo(graphics.AppInfo{Name: cfg.App.Name, Version: cfg.App.Version}),
		instance.WithExtensions(append(append([]string{}, cfg.XR.Extensions...), p.extensions...)...),
		instance.WithRequiredExtensions(append(append([]string{}, cfg.XR.RequiredExtensions...), p.required...)...),
	}
	backends := p.backends
	if len(backends) == 0 {
		backends = defaultBackends()
	}
	opts = append(opts, instance.WithBackends(backends...))

	preferred := p.preferred
	if len(preferred) == 0 {
		// Validated on load.
		preferred, _ = cfg.Backends()
	}
	if len(preferred) > 0 {
		opts = append(opts, instance.WithPreferredBackends(preferred...))
	}
	return opts
}

// sessionOptions turns the current preferences into session options; builder options come last and win.
func (p *plugin) sessionOptions(cfg config.Config) []session.SessionBuilderOption {
	opts := []session.SessionBuilderOption{
		session.WithLogger(p.logger),
		session.WithResolutions(cfg.Resolutions()...),
		session.WithHandTracking(cfg.HandTracking()),
	}
	if formats, err := cfg.Formats(); err == nil && len(formats) > 0 {
		opts = append(opts, session.WithFormats(formats...))
	}
	if modes, err := cfg.BlendModes(); err == nil && len(modes) > 0 {
		opts = append(opts, session.WithBlendModes(modes...))
	}
	if kind, err := cfg.ReferenceSpace(); err == nil {
		opts = append(opts, session.WithReferenceSpace(kind, openxr.IdentityPose))
	}
	return append(opts, p.sessionOptions...)
}

func (p *plugin) onTeardown(s session.Session, reason openxr.SessionState) {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	p.frames.TryReceive()
	p.inFlight.Store(false)
	if p.engine != nil {
		p.registry.Teardown(p.engine.Resources(engine.ScheduleMain), p.engine.Resources(engine.ScheduleRender))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.tracked {
		p.tracker.Untrack(id)
	}
	p.tracked = nil
	if p.device != nil {
		// Released once the session that renders with it is destroyed.
		p.retired = append(p.retired, p.device)
	}
	p.driver, p.device, p.recenter = nil, nil, nil
	p.logger.Info("XR session ended", "session", s.ID(), "reason", reason)
}

// beforeEnd keeps xrEndSession out of a running frame. A waited frame still in
// the mailbox is dropped: its session is about to stop.
func (p *plugin) beforeEnd(s session.Session) func() {
	p.frameMu.Lock()
	if pf, ok := p.frames.TryReceive(); ok {
		pf.driver.Discard()
	}
	p.inFlight.Store(false)
	return p.frameMu.Unlock
}

func (p *plugin) onReferenceSpaceChange(ev openxr.EventReferenceSpaceChangePending) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.recenter != nil && p.recenter.Notify(ev) {
		p.logger.Debug("recenter pending", "change_time", ev.ChangeTime)
	}
}

// releaseRetired releases the devices of destroyed sessions.
func (p *plugin) releaseRetired() {
	p.mu.Lock()
	retired := p.retired
	p.retired = nil
	p.mu.Unlock()
	for _, d := range retired {
		d.Release()
	}
}

// markLost records a fatal frame error for the next poll.
func (p *plugin) markLost(err error) {
	kind := lossSession
	if errors.Is(err, openxr.ErrorInstanceLost) {
		kind = lossInstance
	}
	p.loss.CompareAndSwap(lossNone, kind)
}

func (p *plugin) shutdown() {
	if p.machine != nil {
		if s := p.machine.Session(); s != nil {
			p.onTeardown(s, openxr.SessionStateExiting)
			if err := s.Destroy(); err != nil {
				p.logger.Warn("session teardown", "err", err)
			}
		}
	}
	p.releaseRetired()
	if p.inst != nil {
		if err := p.inst.Destroy(); err != nil {
			p.logger.Warn("instance teardown", "err", err)
		}
	}
	if p.flat != nil {
		p.flat.Release()
	}
}

func (p *plugin) hasInstance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inst != nil
}

func (p *plugin) sessionRequested() bool {
	return p.requested.Load() && p.Status() == session.StatusAvailable
}

func (p *plugin) canWait() bool {
	return p.SessionRunning() && p.currentDriver() != nil && !p.inFlight.Load()
}

func (p *plugin) currentDriver() frame.Driver {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.driver
}

func (p *plugin) InstanceCreated() bool {
	return p.machine != nil && p.machine.InstanceCreated()
}

func (p *plugin) SessionCreated() bool {
	return p.machine != nil && p.machine.SessionCreated()
}

func (p *plugin) SessionReady() bool {
	return p.machine != nil && p.machine.SessionReady()
}

func (p *plugin) SessionRunning() bool {
	return p.machine != nil && p.machine.SessionRunning()
}

func (p *plugin) ShouldRender() bool {
	d := p.currentDriver()
	return d != nil && p.SessionRunning() && d.FrameState().ShouldRender
}

func (p *plugin) Status() session.Status {
	if p.machine == nil {
		return session.StatusUnavailable
	}
	return p.machine.Status()
}

func (p *plugin) Subscribe(buffer int) <-chan session.StateChanged {
	if p.machine == nil {
		return nil
	}
	return p.machine.Subscribe(buffer)
}

func (p *plugin) CreateSession() {
	p.requested.Store(true)
}

func (p *plugin) RequestExit() error {
	s := p.Session()
	if s == nil || !s.Running() {
		return nil
	}
	if err := s.RequestExit(); err != nil {
		return fmt.Errorf("xr: request exit: %w", err)
	}
	return nil
}

func (p *plugin) RegisterCreator(c handoff.Creator) {
	p.registry.Register(c)
}

func (p *plugin) RegisterLayerProvider(name string, lp frame.LayerProvider) {
	p.providers.Register(name, lp)
}

func (p *plugin) Track(sp space.Space, target space.Target, withVelocity bool) int {
	if p.tracker == nil {
		p.logger.Warn("track ignored, XR unavailable")
		return -1
	}
	id := p.tracker.Track(sp, target, withVelocity)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked = append(p.tracked, id)
	return id
}

func (p *plugin) TrackView(target space.Target) {
	p.mu.Lock()
	p.viewTargets = append(p.viewTargets, target)
	p.mu.Unlock()
	if s := p.Session(); s != nil {
		p.Track(s.ViewSpace(), target, false)
	}
}

func (p *plugin) Session() session.Session {
	if p.machine == nil {
		return nil
	}
	return p.machine.Session()
}

func (p *plugin) Instance() instance.Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inst
}

func (p *plugin) Eyes() []camera.Camera {
	return p.rig.Eyes()
}

func (p *plugin) Flat() renderer.Renderer {
	return p.flat
}

func (p *plugin) FlatCamera() camera.Camera {
	return p.flatCam
}

// framePeriod converts a runtime period for the profiler.
func framePeriod(fs openxr.FrameState) time.Duration {
	return time.Duration(fs.PredictedDisplayPeriod)
}

// sample classifies the frame that moved the driver stats from before to after.
func sample(fs openxr.FrameState, before, after frame.Stats) profiler.FrameSample {
	return profiler.FrameSample{
		DisplayPeriod: framePeriod(fs),
		Rendered:      after.Rendered > before.Rendered,
		Skipped:       after.Skipped > before.Skipped,
		Failed:        after.Failed > before.Failed,
	}
}
