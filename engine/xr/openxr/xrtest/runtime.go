// Package xrtest provides a scripted in-memory OpenXR runtime for tests.
//
// The fake implements openxr.Runtime together with the Vulkan, D3D12 and hand
// tracking extension interfaces. It records every call, replays scripted
// events, and rejects illegal frame-loop orderings with
// XR_ERROR_CALL_ORDER_INVALID the way a validating runtime would.
package xrtest

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Vulkan format values used by the default swapchain format list.
const (
	VkFormatR8G8B8A8Unorm int64 = 37
	VkFormatR8G8B8A8Srgb  int64 = 43
	VkFormatB8G8R8A8Unorm int64 = 44
	VkFormatB8G8R8A8Srgb  int64 = 50
)

// DefaultPeriod is the predicted display period of the fake, 90 Hz.
const DefaultPeriod openxr.Duration = 11_111_111

// Runtime is the scripted fake. Exported fields may be edited before the code
// under test runs; use the methods once it is running.
type Runtime struct {
	mu sync.Mutex

	Extensions          []openxr.ExtensionProperties
	Properties          openxr.SystemProperties
	ViewConfigurations  []openxr.ViewConfigurationType
	ConfigurationViews  []openxr.ViewConfigurationView
	BlendModes          []openxr.EnvironmentBlendMode
	SwapchainFormats    []int64
	ReferenceSpaces     []openxr.ReferenceSpaceType
	SwapchainImageCount int
	NoSystem            bool

	VulkanRequirements     openxr.VulkanGraphicsRequirements
	VulkanInstanceExts     []string
	VulkanDeviceExts       []string
	D3D12Requirements      openxr.D3D12GraphicsRequirements
	DisplayPeriod          openxr.Duration
	ShouldRender           bool
	ViewFlags              openxr.ViewStateFlags
	LocatedViews           []openxr.View
	SpaceLocations         map[openxr.Space]openxr.SpaceLocation
	HandJoints             map[openxr.HandEXT]openxr.HandJointLocations
	InstanceCreateInfo     *openxr.InstanceCreateInfo
	SessionCreateInfo      *openxr.SessionCreateInfo
	SwapchainCreateInfo    *openxr.SwapchainCreateInfo
	LastFrameEnd           *openxr.FrameEndInfo
	LastLocateTime         openxr.Time
	ReferenceSpacesCreated []openxr.ReferenceSpaceType

	failures   map[string]openxr.Result
	failOnce   map[string]bool
	events     []openxr.Event
	calls      []string
	nextHandle uint64
	now        openxr.Time

	instance       openxr.Instance
	session        openxr.Session
	sessionRunning bool
	spaces         map[openxr.Space]bool
	swapchains     map[openxr.Swapchain]*swapchainState
	trackers       map[openxr.HandTracker]openxr.HandEXT

	waited bool
	begun  bool
}

type swapchainState struct {
	images   int
	next     uint32
	acquired bool
	waited   bool
}

// New creates a fake runtime describing a stereo head-mounted display that
// supports both graphics extensions and hand tracking.
//
// Returns:
//   - *Runtime: the fake runtime
func New() *Runtime {
	return &Runtime{
		Extensions: []openxr.ExtensionProperties{
			{Name: openxr.ExtKHRVulkanEnable.Name(), Version: 8},
			{Name: openxr.ExtKHRD3D12Enable.Name(), Version: 9},
			{Name: openxr.ExtEXTHandTracking.Name(), Version: 4},
			{Name: openxr.ExtEXTDebugUtils.Name(), Version: 5},
		},
		Properties: openxr.SystemProperties{
			SystemName:              "xrtest HMD",
			VendorID:                0x1234,
			MaxSwapchainImageWidth:  4096,
			MaxSwapchainImageHeight: 4096,
			MaxLayerCount:           16,
			OrientationTracking:     true,
			PositionTracking:        true,
			SupportsHandTracking:    true,
		},
		ViewConfigurations: []openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryStereo, openxr.ViewConfigurationPrimaryMono},
		ConfigurationViews: []openxr.ViewConfigurationView{
			{RecommendedImageRectWidth: 1440, RecommendedImageRectHeight: 1600, MaxImageRectWidth: 2880, MaxImageRectHeight: 3200, RecommendedSwapchainSampleCount: 1, MaxSwapchainSampleCount: 4},
			{RecommendedImageRectWidth: 1440, RecommendedImageRectHeight: 1600, MaxImageRectWidth: 2880, MaxImageRectHeight: 3200, RecommendedSwapchainSampleCount: 1, MaxSwapchainSampleCount: 4},
		},
		BlendModes:          []openxr.EnvironmentBlendMode{openxr.BlendModeOpaque},
		SwapchainFormats:    []int64{VkFormatB8G8R8A8Srgb, VkFormatR8G8B8A8Srgb, VkFormatB8G8R8A8Unorm},
		ReferenceSpaces:     []openxr.ReferenceSpaceType{openxr.ReferenceSpaceView, openxr.ReferenceSpaceLocal, openxr.ReferenceSpaceStage},
		SwapchainImageCount: 3,
		VulkanRequirements: openxr.VulkanGraphicsRequirements{
			MinAPIVersionSupported: openxr.MakeVersion(1, 0, 0),
			MaxAPIVersionSupported: openxr.MakeVersion(1, 3, 0),
		},
		D3D12Requirements: openxr.D3D12GraphicsRequirements{MinFeatureLevel: 0xb000},
		DisplayPeriod:     DefaultPeriod,
		ShouldRender:      true,
		ViewFlags: openxr.SpaceLocationOrientationValid | openxr.SpaceLocationPositionValid |
			openxr.SpaceLocationOrientationTracked | openxr.SpaceLocationPositionTracked,
		LocatedViews: []openxr.View{
			{Pose: openxr.Posef{Orientation: openxr.IdentityQuaternion, Position: openxr.Vector3f{X: -0.032, Y: 1.6}}, Fov: openxr.Fovf{AngleLeft: -0.8, AngleRight: 0.7, AngleUp: 0.8, AngleDown: -0.8}},
			{Pose: openxr.Posef{Orientation: openxr.IdentityQuaternion, Position: openxr.Vector3f{X: 0.032, Y: 1.6}}, Fov: openxr.Fovf{AngleLeft: -0.7, AngleRight: 0.8, AngleUp: 0.8, AngleDown: -0.8}},
		},
		SpaceLocations: make(map[openxr.Space]openxr.SpaceLocation),
		HandJoints:     make(map[openxr.HandEXT]openxr.HandJointLocations),
		failures:       make(map[string]openxr.Result),
		failOnce:       make(map[string]bool),
		spaces:         make(map[openxr.Space]bool),
		swapchains:     make(map[openxr.Swapchain]*swapchainState),
		trackers:       make(map[openxr.HandTracker]openxr.HandEXT),
		now:            1_000_000_000,
		nextHandle:     0x100,
	}
}

// Push queues events returned by subsequent PollEvent calls, in order.
func (r *Runtime) Push(events ...openxr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

// PushState queues a session state change for the current session.
func (r *Runtime) PushState(states ...openxr.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range states {
		r.events = append(r.events, openxr.EventSessionStateChanged{Session: r.session, State: s, Time: r.now})
	}
}

// Fail makes every later call of the named method return res.
func (r *Runtime) Fail(method string, res openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = res
	delete(r.failOnce, method)
}

// FailOnce makes the next call of the named method return res.
func (r *Runtime) FailOnce(method string, res openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = res
	r.failOnce[method] = true
}

// Calls returns the names of every method invoked so far, in order.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Count returns how many times the named method was invoked.
func (r *Runtime) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (r *Runtime) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// SetSpaceLocation scripts the result of LocateSpace for a space.
func (r *Runtime) SetSpaceLocation(space openxr.Space, loc openxr.SpaceLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SpaceLocations[space] = loc
}

// SetViews scripts the result of LocateViews.
func (r *Runtime) SetViews(flags openxr.ViewStateFlags, views ...openxr.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ViewFlags = flags
	if views != nil {
		r.LocatedViews = views
	}
}

// SetHandJoints scripts the result of LocateHandJoints for a hand.
func (r *Runtime) SetHandJoints(hand openxr.HandEXT, joints openxr.HandJointLocations) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HandJoints[hand] = joints
}

// LiveSpaces returns how many spaces were created and not yet destroyed.
func (r *Runtime) LiveSpaces() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}

// Running reports whether the session was begun and not yet ended.
func (r *Runtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionRunning
}

// Now returns the predicted display time the next WaitFrame will report.
func (r *Runtime) Now() openxr.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// enter records the call and returns the scripted failure for it, if any.
// The caller must hold r.mu.
func (r *Runtime) enter(method string) error {
	r.calls = append(r.calls, method)
	if res, ok := r.failures[method]; ok {
		if r.failOnce[method] {
			delete(r.failures, method)
			delete(r.failOnce, method)
		}
		return res
	}
	return nil
}

func (r *Runtime) handle() uint64 {
	r.nextHandle++
	return r.nextHandle
}
