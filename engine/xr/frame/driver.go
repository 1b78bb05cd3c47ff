package frame

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
	"github.com/charmbracelet/log"
)

type phase int

const (
	phaseIdle phase = iota
	phaseWaited
	phaseBegun
	phaseAcquired
	phaseImageReady
	phaseLocated
	phaseReleased
)

// driver implements the Driver interface.
type driver struct {
	session   session.Session
	rt        openxr.Runtime
	logger    *log.Logger
	timing    *space.Timing
	providers *Providers
	timeout   openxr.Duration
	noDefault bool

	mu     sync.Mutex
	phase  phase
	state  openxr.FrameState
	number uint64
	views  []openxr.View
	stats  Stats
}

// Driver runs the frame sequence of one session. Wait belongs to the main
// context; the remaining steps, or Run, to the render context. Every error a
// Driver returns is a *Error.
type Driver interface {
	// Wait blocks until the runtime wants the next frame and publishes its state.
	//
	// Returns:
	//   - openxr.FrameState: the predicted display time, period and render hint
	//   - error: ErrOutOfOrder or the native failure
	Wait() (openxr.FrameState, error)

	// Begin begins the waited frame.
	Begin() error

	// Acquire acquires the next swapchain image.
	//
	// Returns:
	//   - uint32: the image index
	//   - error: ErrOutOfOrder or the native failure
	Acquire() (uint32, error)

	// WaitImage blocks until the acquired image may be written, bounded by the image timeout.
	WaitImage() error

	// LocateViews locates both eyes at the predicted display time in the session's
	// reference space. A component the runtime marks invalid keeps its previous value.
	//
	// Returns:
	//   - []openxr.View: the located views
	//   - openxr.ViewStateFlags: the validity reported by the runtime
	//   - error: ErrOutOfOrder or the native failure
	LocateViews() ([]openxr.View, openxr.ViewStateFlags, error)

	// Release releases the acquired image.
	Release() error

	// End ends the frame with the given layers. Layers of another backend than the
	// session's are dropped with a warning; the frame is ended regardless.
	End(layers []Layer) error

	// Run executes Begin through End for a waited frame, calling render with the
	// acquired image. After a failed step inside a begun frame the frame is still
	// ended, without layers.
	//
	// Parameters:
	//   - render: writes the frame; may be nil
	//
	// Returns:
	//   - error: the first failed step as *Error
	Run(render RenderFunc) error

	// FrameState returns the state published by the last Wait.
	FrameState() openxr.FrameState

	// PipelinedTime returns the last predicted display time plus one display period.
	PipelinedTime() openxr.Time

	// ShouldRender reports whether the runtime asked for content in the waited frame.
	ShouldRender() bool

	// Waited reports whether a frame was waited on and not yet ended.
	Waited() bool

	// Discard forgets a waited frame that will never be begun, as when the
	// session ends under it. It is a no-op in any other phase.
	Discard()

	// Timing returns the pose query timing published by Wait.
	Timing() *space.Timing

	// Providers returns the layer provider registry.
	Providers() *Providers

	// Session returns the driven session.
	Session() session.Session

	// Stats returns the frame counters.
	Stats() Stats
}

var _ Driver = &driver{}

// NewDriver creates a frame driver for a session. Unless disabled with
// WithoutProjection, the stereo projection layer is registered first.
//
// Parameters:
//   - s: the session
//   - options: functional options
//
// Returns:
//   - Driver: the driver
func NewDriver(s session.Session, options ...DriverBuilderOption) Driver {
	d := &driver{
		session: s,
		rt:      s.Instance().Runtime(),
		logger:  logger.For("xr.frame"),
		timeout: openxr.InfiniteDuration,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.timing == nil {
		d.timing = space.NewTiming(false)
	}
	if d.providers == nil {
		d.providers = NewProviders()
	}
	if !d.noDefault {
		d.providers.Register(ProjectionName, Projection(s))
	}
	d.logger = d.logger.With("session", s.ID())
	d.views = make([]openxr.View, len(s.Views()))
	for i := range d.views {
		d.views[i].Pose = openxr.IdentityPose
	}
	return d
}

func (d *driver) Wait() (openxr.FrameState, error) {
	d.mu.Lock()
	if d.phase != phaseIdle {
		d.mu.Unlock()
		return openxr.FrameState{}, fail(StageWait, ErrOutOfOrder)
	}
	d.mu.Unlock()

	fs, err := d.rt.WaitFrame(d.session.Handle())
	if err != nil {
		return openxr.FrameState{}, fail(StageWait, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.phase = phaseWaited
	d.state = fs
	d.number++
	d.timing.Publish(fs)
	return fs, nil
}

// step moves from one of the allowed phases to next around a call.
func (d *driver) step(stage Stage, next phase, call func() error, allowed ...phase) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := false
	for _, p := range allowed {
		if d.phase == p {
			ok = true
			break
		}
	}
	if !ok {
		return fail(stage, ErrOutOfOrder)
	}
	if err := call(); err != nil {
		return fail(stage, err)
	}
	d.phase = next
	return nil
}

func (d *driver) Begin() error {
	err := d.step(StageBegin, phaseBegun, func() error {
		return d.rt.BeginFrame(d.session.Handle())
	}, phaseWaited)
	if err != nil && !errors.Is(err, ErrOutOfOrder) {
		// A frame that failed to begin cannot be ended; the next one starts with Wait.
		d.mu.Lock()
		d.phase = phaseIdle
		d.mu.Unlock()
	}
	return err
}

func (d *driver) Acquire() (uint32, error) {
	var idx uint32
	err := d.step(StageAcquire, phaseAcquired, func() error {
		i, err := d.session.Swapchain().Acquire()
		idx = i
		return err
	}, phaseBegun)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

func (d *driver) WaitImage() error {
	return d.step(StageWaitImage, phaseImageReady, func() error {
		return d.session.Swapchain().Wait(d.timeout)
	}, phaseAcquired)
}

func (d *driver) LocateViews() ([]openxr.View, openxr.ViewStateFlags, error) {
	var views []openxr.View
	var flags openxr.ViewStateFlags
	err := d.step(StageLocateViews, phaseLocated, func() error {
		state, located, err := d.rt.LocateViews(d.session.Handle(), &openxr.ViewLocateInfo{
			ViewConfigurationType: d.session.ViewConfiguration(),
			DisplayTime:           d.state.PredictedDisplayTime,
			Space:                 d.session.ReferenceSpace().Handle,
		})
		if err != nil {
			return err
		}
		if len(d.views) < len(located) {
			grown := make([]openxr.View, len(located))
			copy(grown, d.views)
			for i := len(d.views); i < len(grown); i++ {
				grown[i].Pose = openxr.IdentityPose
			}
			d.views = grown
		}
		for i, v := range located {
			d.views[i] = openxr.View{Pose: space.Retain(d.views[i].Pose, v.Pose, state.Flags), Fov: v.Fov}
		}
		views = append([]openxr.View(nil), d.views[:len(located)]...)
		flags = state.Flags
		return nil
	}, phaseImageReady)
	return views, flags, err
}

func (d *driver) Release() error {
	return d.step(StageRelease, phaseReleased, func() error {
		return d.session.Swapchain().Release()
	}, phaseImageReady, phaseLocated)
}

func (d *driver) End(layers []Layer) error {
	backend := d.session.Backend()
	submitted := make([]openxr.CompositionLayer, 0, len(layers))
	dropped := 0
	for _, l := range layers {
		if l.Layer == nil {
			continue
		}
		if l.Backend != backend {
			d.logger.Warn("dropping composition layer of another backend", "layer_backend", l.Backend, "session_backend", backend)
			dropped++
			continue
		}
		submitted = append(submitted, l.Layer)
	}

	err := d.step(StageEnd, phaseIdle, func() error {
		return d.rt.EndFrame(d.session.Handle(), &openxr.FrameEndInfo{
			DisplayTime:          d.state.PredictedDisplayTime,
			EnvironmentBlendMode: d.session.BlendMode(),
			Layers:               submitted,
		})
	}, phaseBegun, phaseReleased)
	if errors.Is(err, ErrOutOfOrder) {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// The frame is over either way; the next one starts with Wait.
	d.phase = phaseIdle
	d.stats.Frames++
	d.stats.DroppedLayers += uint64(dropped)
	if len(submitted) > 0 {
		d.stats.Rendered++
	}
	return err
}

func (d *driver) Run(render RenderFunc) error {
	if err := d.Begin(); err != nil {
		return err
	}
	if !d.ShouldRender() {
		d.mu.Lock()
		d.stats.Skipped++
		d.mu.Unlock()
		return d.End(nil)
	}

	f, err := d.produce(render)
	if err != nil {
		d.logger.Warn("frame failed, ending without layers", "stage", stageOf(err), "err", err)
		d.releaseAcquired()
		d.mu.Lock()
		d.stats.Failed++
		d.mu.Unlock()
		if endErr := d.End(nil); endErr != nil && IsFatal(endErr) {
			return endErr
		}
		return err
	}
	return d.End(d.providers.Layers(f))
}

// produce runs acquire through release and returns the frame handed to providers.
func (d *driver) produce(render RenderFunc) (*Frame, error) {
	idx, err := d.Acquire()
	if err != nil {
		return nil, err
	}
	if err := d.WaitImage(); err != nil {
		return nil, err
	}
	views, flags, err := d.LocateViews()
	if err != nil {
		return nil, err
	}
	f := &Frame{
		Number:     d.frameNumber(),
		State:      d.FrameState(),
		QueryTime:  d.timing.Time(),
		ImageIndex: idx,
		Views:      views,
		ViewFlags:  flags,
	}
	if textures := d.session.Swapchain().Textures(); int(idx) < len(textures) {
		f.Texture = textures[idx]
	}
	if render != nil {
		if err := render(f); err != nil {
			return nil, fail(StageRender, err)
		}
	}
	if err := d.Release(); err != nil {
		return nil, err
	}
	return f, nil
}

// releaseAcquired hands a still-acquired image back so the frame can be ended.
func (d *driver) releaseAcquired() {
	sc := d.session.Swapchain()
	if _, ok := sc.Acquired(); ok {
		err := sc.Release()
		if errors.Is(err, session.ErrImageNotWaited) {
			if err = sc.Wait(d.timeout); err == nil {
				err = sc.Release()
			}
		}
		if err != nil {
			d.logger.Warn("could not release swapchain image", "err", err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != phaseIdle && d.phase != phaseWaited {
		d.phase = phaseReleased
	}
}

func stageOf(err error) Stage {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return StageRender
}

func (d *driver) frameNumber() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.number
}

func (d *driver) FrameState() openxr.FrameState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *driver) PipelinedTime() openxr.Time {
	return space.PipelinedTime(d.FrameState())
}

func (d *driver) ShouldRender() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase != phaseIdle && d.state.ShouldRender
}

func (d *driver) Waited() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase == phaseWaited
}

func (d *driver) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == phaseWaited {
		d.phase = phaseIdle
		d.stats.Skipped++
	}
}

func (d *driver) Timing() *space.Timing    { return d.timing }
func (d *driver) Providers() *Providers    { return d.providers }
func (d *driver) Session() session.Session { return d.session }

func (d *driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}
