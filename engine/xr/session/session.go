package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/instance"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// ErrSessionDestroyed is returned by operations on a destroyed session.
var ErrSessionDestroyed = errors.New("session: destroyed")

// session implements the Session interface.
type session struct {
	id     uuid.UUID
	inst   instance.Instance
	rt     openxr.Runtime
	device *graphics.Device
	logger *log.Logger
	handle openxr.Session

	viewConfig openxr.ViewConfigurationType
	views      []openxr.ViewConfigurationView
	resolution graphics.Resolution
	format     wgpu.TextureFormat
	blendMode  openxr.EnvironmentBlendMode
	swapchain  *swapchain
	reference  space.Space
	refType    openxr.ReferenceSpaceType
	viewSpace  space.Space
	hands      *space.Hands

	acceptableViews []openxr.ViewConfigurationType
	resolutions     []graphics.Resolution
	formats         []wgpu.TextureFormat
	blendModes      []openxr.EnvironmentBlendMode
	wantReference   openxr.ReferenceSpaceType
	referencePose   openxr.Posef
	usage           openxr.SwapchainUsageFlags
	handTracking    bool

	mu        sync.RWMutex
	running   bool
	destroyed bool
}

// Session is a live XrSession bound to one graphics device, together with the
// stereo swapchain, the reference space and the view space it renders with.
type Session interface {
	// ID returns the identifier attached to every log line and event of this session.
	ID() uuid.UUID

	// Handle returns the native session handle.
	Handle() openxr.Session

	// Backend returns the graphics backend the session was created for.
	Backend() graphics.BackendKind

	// Instance returns the owning instance.
	Instance() instance.Instance

	// Device returns the graphics device the session renders with.
	Device() *graphics.Device

	// ViewConfiguration returns the negotiated view configuration.
	ViewConfiguration() openxr.ViewConfigurationType

	// Views returns the per-view image recommendations of the configuration.
	Views() []openxr.ViewConfigurationView

	// Resolution returns the per-eye swapchain size.
	Resolution() graphics.Resolution

	// Format returns the portable swapchain format.
	Format() wgpu.TextureFormat

	// BlendMode returns the environment blend mode submitted with every frame.
	BlendMode() openxr.EnvironmentBlendMode

	// Swapchain returns the stereo swapchain.
	Swapchain() Swapchain

	// ReferenceSpace returns the space poses are reported in.
	ReferenceSpace() space.Space

	// ReferenceSpaceType returns the type the reference space was created with after fallback.
	ReferenceSpaceType() openxr.ReferenceSpaceType

	// ViewSpace returns the head-locked VIEW space.
	ViewSpace() space.Space

	// Hands returns the hand joint source; it reports inactive hands without hand tracking.
	Hands() *space.Hands

	// CheckBackend validates that an object created for kind may be used with this session.
	//
	// Parameters:
	//   - kind: the backend of the object
	//
	// Returns:
	//   - error: a *graphics.BackendMismatchError on mismatch
	CheckBackend(kind graphics.BackendKind) error

	// Begin begins the session with its view configuration.
	//
	// Returns:
	//   - error: ErrSessionDestroyed or the native failure
	Begin() error

	// End ends a running session.
	//
	// Returns:
	//   - error: ErrSessionDestroyed or the native failure
	End() error

	// RequestExit asks the runtime to stop the session. The session still
	// goes through STOPPING and EXITING before it may be destroyed.
	//
	// Returns:
	//   - error: the native failure
	RequestExit() error

	// Running reports whether Begin succeeded and End has not been called since.
	Running() bool

	// Destroy releases the swapchain, the spaces, the hand trackers and the native session.
	// Calling it twice is a no-op.
	//
	// Returns:
	//   - error: the joined native failures
	Destroy() error
}

var _ Session = &session{}

// Create creates a session for an instance and the device opened by its InitGraphics,
// then negotiates the view configuration, resolution, swapchain format and blend mode,
// creates the stereo swapchain and the reference and view spaces.
//
// Parameters:
//   - inst: the owning instance
//   - device: the device returned by inst.InitGraphics
//   - binding: the binding returned by inst.InitGraphics
//   - options: functional options
//
// Returns:
//   - Session: the created session
//   - error: a *graphics.BackendMismatchError, a selection error, or a wrapped native failure
func Create(inst instance.Instance, device *graphics.Device, binding openxr.GraphicsBinding, options ...SessionBuilderOption) (Session, error) {
	if !inst.Valid() {
		return nil, instance.ErrDestroyed
	}
	if device == nil || binding == nil {
		return nil, fmt.Errorf("session: create: %w", openxr.ErrorGraphicsDeviceInvalid)
	}
	if err := inst.CheckBackend(device.Kind); err != nil {
		return nil, err
	}
	if binding.GraphicsAPI() != inst.Backend().Kind().API() {
		return nil, &graphics.BackendMismatchError{Expected: inst.Backend().Kind(), Actual: kindOf(binding.GraphicsAPI())}
	}

	s := &session{
		id:            uuid.New(),
		inst:          inst,
		rt:            inst.Runtime(),
		device:        device,
		logger:        logger.For("xr.session"),
		wantReference: openxr.ReferenceSpaceStage,
		referencePose: openxr.IdentityPose,
		usage:         openxr.SwapchainUsageColorAttachment | openxr.SwapchainUsageSampled,
		handTracking:  true,
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id, "instance", inst.ID())

	available, err := s.rt.EnumerateViewConfigurations(inst.Handle(), inst.System())
	if err != nil {
		return nil, fmt.Errorf("session: enumerate view configurations: %w", err)
	}
	s.viewConfig, err = SelectViewConfiguration(available, s.acceptableViews)
	if err != nil {
		return nil, err
	}
	s.views, err = s.rt.EnumerateViewConfigurationViews(inst.Handle(), inst.System(), s.viewConfig)
	if err != nil {
		return nil, fmt.Errorf("session: enumerate views: %w", err)
	}
	s.resolution, err = SelectResolution(s.views, s.resolutions)
	if err != nil {
		return nil, err
	}
	modes, err := s.rt.EnumerateEnvironmentBlendModes(inst.Handle(), inst.System(), s.viewConfig)
	if err != nil {
		return nil, fmt.Errorf("session: enumerate blend modes: %w", err)
	}
	s.blendMode, err = SelectBlendMode(modes, s.blendModes)
	if err != nil {
		return nil, err
	}

	s.handle, err = s.rt.CreateSession(inst.Handle(), &openxr.SessionCreateInfo{SystemID: inst.System(), Binding: binding})
	if err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	if err := s.setup(); err != nil {
		_ = s.Destroy()
		return nil, err
	}
	s.logger.Info("session created",
		"backend", s.Backend(),
		"view_configuration", s.viewConfig,
		"resolution", s.resolution,
		"format", s.format,
		"blend_mode", s.blendMode,
		"reference_space", s.refType,
		"hands", s.hands.Enabled(),
	)
	return s, nil
}

// setup creates everything hanging off the native session.
func (s *session) setup() error {
	native, err := s.rt.EnumerateSwapchainFormats(s.handle)
	if err != nil {
		return fmt.Errorf("session: enumerate swapchain formats: %w", err)
	}
	backend := s.inst.Backend()
	s.format, err = SelectFormat(PortableFormats(backend, native), s.formats)
	if err != nil {
		return err
	}

	layers := uint32(len(s.views))
	s.swapchain, err = newSwapchain(s.rt, s.handle, backend, s.device, s.format, s.resolution, layers, s.usage)
	if err != nil {
		return err
	}

	s.reference, s.refType, err = space.CreateReference(s.rt, s.handle, s.wantReference, s.referencePose, s.logger)
	if err != nil {
		return err
	}
	view, err := s.rt.CreateReferenceSpace(s.handle, &openxr.ReferenceSpaceCreateInfo{
		ReferenceSpaceType:   openxr.ReferenceSpaceView,
		PoseInReferenceSpace: openxr.IdentityPose,
	})
	if err != nil {
		return fmt.Errorf("session: create view space: %w", err)
	}
	s.viewSpace = space.Own(view)

	enabled := s.handTracking &&
		s.inst.Extensions().Has(openxr.ExtEXTHandTracking) &&
		s.inst.SystemProperties().SupportsHandTracking
	s.hands, err = space.NewHands(s.rt, s.handle, enabled)
	if err != nil {
		s.logger.Warn("hand tracking unavailable", "err", err)
	}
	return nil
}

func kindOf(api openxr.GraphicsAPI) graphics.BackendKind {
	if api == openxr.GraphicsAPID3D12 {
		return graphics.D3D12
	}
	return graphics.Vulkan
}

func (s *session) ID() uuid.UUID                                   { return s.id }
func (s *session) Handle() openxr.Session                          { return s.handle }
func (s *session) Backend() graphics.BackendKind                   { return s.inst.Backend().Kind() }
func (s *session) Instance() instance.Instance                     { return s.inst }
func (s *session) Device() *graphics.Device                        { return s.device }
func (s *session) ViewConfiguration() openxr.ViewConfigurationType { return s.viewConfig }
func (s *session) Views() []openxr.ViewConfigurationView           { return s.views }
func (s *session) Resolution() graphics.Resolution                 { return s.resolution }
func (s *session) Format() wgpu.TextureFormat                      { return s.format }
func (s *session) BlendMode() openxr.EnvironmentBlendMode          { return s.blendMode }
func (s *session) Swapchain() Swapchain                            { return s.swapchain }
func (s *session) ReferenceSpace() space.Space                     { return s.reference }
func (s *session) ReferenceSpaceType() openxr.ReferenceSpaceType   { return s.refType }
func (s *session) ViewSpace() space.Space                          { return s.viewSpace }
func (s *session) Hands() *space.Hands                             { return s.hands }

func (s *session) CheckBackend(kind graphics.BackendKind) error {
	return graphics.CheckBackend(s.Backend(), kind)
}

func (s *session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if err := s.rt.BeginSession(s.handle, s.viewConfig); err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	s.running = true
	s.logger.Info("session begun")
	return nil
}

func (s *session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	s.running = false
	if err := s.rt.EndSession(s.handle); err != nil {
		return fmt.Errorf("session: end: %w", err)
	}
	s.logger.Info("session ended")
	return nil
}

func (s *session) RequestExit() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if err := s.rt.RequestExitSession(s.handle); err != nil {
		return fmt.Errorf("session: request exit: %w", err)
	}
	return nil
}

func (s *session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running && !s.destroyed
}

func (s *session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.running = false

	var errs []error
	if s.hands != nil {
		errs = append(errs, s.hands.Destroy())
	}
	if s.swapchain != nil {
		errs = append(errs, s.swapchain.Destroy())
	}
	errs = append(errs, s.viewSpace.Destroy(s.rt), s.reference.Destroy(s.rt))
	if err := s.rt.DestroySession(s.handle); err != nil {
		errs = append(errs, fmt.Errorf("session: destroy: %w", err))
	}
	s.logger.Info("session destroyed")
	return errors.Join(errs...)
}
