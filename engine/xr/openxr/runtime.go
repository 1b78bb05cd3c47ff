package openxr

// Runtime is the core OpenXR function table. Implementations are the cgo loader
// binding and the scripted fake used by tests. Every method maps to exactly one
// native entry point and returns a Result as error on failure.
type Runtime interface {
	EnumerateInstanceExtensionProperties() ([]ExtensionProperties, error)
	CreateInstance(info *InstanceCreateInfo) (Instance, error)
	DestroyInstance(instance Instance) error
	GetInstanceProperties(instance Instance) (InstanceProperties, error)

	GetSystem(instance Instance, formFactor FormFactor) (SystemID, error)
	GetSystemProperties(instance Instance, system SystemID) (SystemProperties, error)
	EnumerateViewConfigurations(instance Instance, system SystemID) ([]ViewConfigurationType, error)
	EnumerateViewConfigurationViews(instance Instance, system SystemID, viewConfig ViewConfigurationType) ([]ViewConfigurationView, error)
	EnumerateEnvironmentBlendModes(instance Instance, system SystemID, viewConfig ViewConfigurationType) ([]EnvironmentBlendMode, error)

	// PollEvent returns the next queued event, or (nil, false, nil) when the queue is empty.
	PollEvent(instance Instance) (Event, bool, error)

	CreateSession(instance Instance, info *SessionCreateInfo) (Session, error)
	DestroySession(session Session) error
	BeginSession(session Session, viewConfig ViewConfigurationType) error
	EndSession(session Session) error
	RequestExitSession(session Session) error

	EnumerateSwapchainFormats(session Session) ([]int64, error)
	CreateSwapchain(session Session, info *SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(swapchain Swapchain) error
	// EnumerateSwapchainImages returns the native image handles (VkImage or ID3D12Resource*)
	// for the graphics API the session was created with.
	EnumerateSwapchainImages(swapchain Swapchain, api GraphicsAPI) ([]uint64, error)
	AcquireSwapchainImage(swapchain Swapchain) (uint32, error)
	WaitSwapchainImage(swapchain Swapchain, timeout Duration) error
	ReleaseSwapchainImage(swapchain Swapchain) error

	EnumerateReferenceSpaces(session Session) ([]ReferenceSpaceType, error)
	CreateReferenceSpace(session Session, info *ReferenceSpaceCreateInfo) (Space, error)
	DestroySpace(space Space) error
	LocateSpace(space, baseSpace Space, time Time, withVelocity bool) (SpaceLocation, error)
	LocateViews(session Session, info *ViewLocateInfo) (ViewState, []View, error)

	WaitFrame(session Session) (FrameState, error)
	BeginFrame(session Session) error
	EndFrame(session Session, info *FrameEndInfo) error
}

// VulkanRuntime exposes XR_KHR_vulkan_enable.
type VulkanRuntime interface {
	GetVulkanGraphicsRequirements(instance Instance, system SystemID) (VulkanGraphicsRequirements, error)
	GetVulkanInstanceExtensions(instance Instance, system SystemID) ([]string, error)
	GetVulkanDeviceExtensions(instance Instance, system SystemID) ([]string, error)
	// GetVulkanGraphicsDevice returns the VkPhysicalDevice the runtime requires for vkInstance.
	GetVulkanGraphicsDevice(instance Instance, system SystemID, vkInstance uintptr) (uintptr, error)
}

// D3D12Runtime exposes XR_KHR_D3D12_enable.
type D3D12Runtime interface {
	GetD3D12GraphicsRequirements(instance Instance, system SystemID) (D3D12GraphicsRequirements, error)
}

// HandTrackingRuntime exposes XR_EXT_hand_tracking.
type HandTrackingRuntime interface {
	CreateHandTracker(session Session, hand HandEXT) (HandTracker, error)
	DestroyHandTracker(tracker HandTracker) error
	LocateHandJoints(tracker HandTracker, baseSpace Space, time Time) (HandJointLocations, error)
}
