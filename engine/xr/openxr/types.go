// Package openxr mirrors the OpenXR 1.0 structures, enums and entry points that the
// engine exchanges with an XR runtime. Enum values match the native ones so the
// loader can pass them across the C boundary without translation.
package openxr

import (
	"fmt"
	"math"
)

// Instance is the native XrInstance handle.
type Instance uint64

// Session is the native XrSession handle.
type Session uint64

// Swapchain is the native XrSwapchain handle.
type Swapchain uint64

// Space is the native XrSpace handle.
type Space uint64

// HandTracker is the native XrHandTrackerEXT handle.
type HandTracker uint64

// SystemID identifies a physical XR device. Zero is XR_NULL_SYSTEM_ID.
type SystemID uint64

// NullSystemID is returned when no system matches the requested form factor.
const NullSystemID SystemID = 0

// Time is an XrTime in nanoseconds in the runtime's clock domain.
type Time int64

// Duration is an XrDuration in nanoseconds.
type Duration int64

const (
	// InfiniteDuration blocks without timeout.
	InfiniteDuration Duration = math.MaxInt64
	// NoDuration returns immediately.
	NoDuration Duration = 0
)

// Version is an XrVersion packed as major<<48 | minor<<32 | patch.
type Version uint64

// MakeVersion packs the components of a version.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(uint64(major)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

// Major returns the major component.
func (v Version) Major() uint32 { return uint32(uint64(v) >> 48) }

// Minor returns the minor component.
func (v Version) Minor() uint32 { return uint32(uint64(v)>>32) & 0xffff }

// Patch returns the patch component.
func (v Version) Patch() uint32 { return uint32(uint64(v) & 0xffffffff) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// CurrentAPIVersion is the API version requested at instance creation.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

// FormFactor selects the kind of device a system is queried for.
type FormFactor int32

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

// ViewConfigurationType names a view layout supported by a system.
type ViewConfigurationType int32

const (
	ViewConfigurationPrimaryMono   ViewConfigurationType = 1
	ViewConfigurationPrimaryStereo ViewConfigurationType = 2
	ViewConfigurationQuadVarjo     ViewConfigurationType = 1000037000
)

func (v ViewConfigurationType) String() string {
	switch v {
	case ViewConfigurationPrimaryMono:
		return "PRIMARY_MONO"
	case ViewConfigurationPrimaryStereo:
		return "PRIMARY_STEREO"
	case ViewConfigurationQuadVarjo:
		return "PRIMARY_QUAD_VARJO"
	}
	return fmt.Sprintf("ViewConfigurationType(%d)", int32(v))
}

// EnvironmentBlendMode is how the compositor blends rendered content with the environment.
type EnvironmentBlendMode int32

const (
	BlendModeOpaque     EnvironmentBlendMode = 1
	BlendModeAdditive   EnvironmentBlendMode = 2
	BlendModeAlphaBlend EnvironmentBlendMode = 3
)

func (b EnvironmentBlendMode) String() string {
	switch b {
	case BlendModeOpaque:
		return "OPAQUE"
	case BlendModeAdditive:
		return "ADDITIVE"
	case BlendModeAlphaBlend:
		return "ALPHA_BLEND"
	}
	return fmt.Sprintf("EnvironmentBlendMode(%d)", int32(b))
}

// ReferenceSpaceType names a reference space anchor.
type ReferenceSpaceType int32

const (
	ReferenceSpaceView       ReferenceSpaceType = 1
	ReferenceSpaceLocal      ReferenceSpaceType = 2
	ReferenceSpaceStage      ReferenceSpaceType = 3
	ReferenceSpaceUnbounded  ReferenceSpaceType = 1000038000
	ReferenceSpaceLocalFloor ReferenceSpaceType = 1000426000
)

func (r ReferenceSpaceType) String() string {
	switch r {
	case ReferenceSpaceView:
		return "VIEW"
	case ReferenceSpaceLocal:
		return "LOCAL"
	case ReferenceSpaceStage:
		return "STAGE"
	case ReferenceSpaceUnbounded:
		return "UNBOUNDED_MSFT"
	case ReferenceSpaceLocalFloor:
		return "LOCAL_FLOOR"
	}
	return fmt.Sprintf("ReferenceSpaceType(%d)", int32(r))
}

// SessionState is the runtime-reported lifecycle state of a session.
type SessionState int32

const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

func (s SessionState) String() string {
	switch s {
	case SessionStateUnknown:
		return "UNKNOWN"
	case SessionStateIdle:
		return "IDLE"
	case SessionStateReady:
		return "READY"
	case SessionStateSynchronized:
		return "SYNCHRONIZED"
	case SessionStateVisible:
		return "VISIBLE"
	case SessionStateFocused:
		return "FOCUSED"
	case SessionStateStopping:
		return "STOPPING"
	case SessionStateLossPending:
		return "LOSS_PENDING"
	case SessionStateExiting:
		return "EXITING"
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// Vector3f is a position or direction in meters.
type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is a unit rotation quaternion.
type Quaternionf struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternionf{W: 1}

// Posef is a rigid transform.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose is the pose at the origin with no rotation.
var IdentityPose = Posef{Orientation: IdentityQuaternion}

// Fovf holds the four half-angles of an asymmetric field of view, in radians.
type Fovf struct {
	AngleLeft, AngleRight, AngleUp, AngleDown float32
}

// Extent2Di is a size in pixels.
type Extent2Di struct {
	Width, Height int32
}

// Offset2Di is a pixel offset.
type Offset2Di struct {
	X, Y int32
}

// Rect2Di is a pixel rectangle.
type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}

// SpaceLocationFlags carries validity and tracking bits for a located space or view.
type SpaceLocationFlags uint64

const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x1
	SpaceLocationPositionValid      SpaceLocationFlags = 0x2
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x4
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x8
)

// Has reports whether every bit in f is set.
func (l SpaceLocationFlags) Has(f SpaceLocationFlags) bool { return l&f == f }

// SpaceVelocityFlags carries validity bits for a located velocity.
type SpaceVelocityFlags uint64

const (
	SpaceVelocityLinearValid  SpaceVelocityFlags = 0x1
	SpaceVelocityAngularValid SpaceVelocityFlags = 0x2
)

// SpaceVelocity is the optional velocity chained onto a space location.
type SpaceVelocity struct {
	Flags           SpaceVelocityFlags
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}

// SpaceLocation is the result of locating one space relative to another.
type SpaceLocation struct {
	Flags    SpaceLocationFlags
	Pose     Posef
	Velocity *SpaceVelocity
}

// ViewStateFlags mirrors SpaceLocationFlags for located views.
type ViewStateFlags = SpaceLocationFlags

// ViewState carries the combined validity of a located view set.
type ViewState struct {
	Flags ViewStateFlags
}

// View is one located eye.
type View struct {
	Pose Posef
	Fov  Fovf
}

// ViewLocateInfo selects the view configuration, time and base space of a view location.
type ViewLocateInfo struct {
	ViewConfigurationType ViewConfigurationType
	DisplayTime           Time
	Space                 Space
}

// ViewConfigurationView describes the recommended and maximum image properties of one view.
type ViewConfigurationView struct {
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

// FrameState is produced by WaitFrame.
type FrameState struct {
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

// ApplicationInfo names the application and engine at instance creation.
type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         Version
}

// InstanceCreateInfo holds everything required by xrCreateInstance.
type InstanceCreateInfo struct {
	ApplicationInfo ApplicationInfo
	EnabledLayers   []string
	Extensions      []string
}

// ExtensionProperties is one entry of xrEnumerateInstanceExtensionProperties.
type ExtensionProperties struct {
	Name    string
	Version uint32
}

// InstanceProperties describes the runtime behind an instance.
type InstanceProperties struct {
	RuntimeName    string
	RuntimeVersion Version
}

// SystemProperties describes a system.
type SystemProperties struct {
	SystemID                SystemID
	VendorID                uint32
	SystemName              string
	MaxSwapchainImageWidth  uint32
	MaxSwapchainImageHeight uint32
	MaxLayerCount           uint32
	OrientationTracking     bool
	PositionTracking        bool
	SupportsHandTracking    bool
}

// GraphicsAPI identifies which graphics binding a session or swapchain uses.
type GraphicsAPI int

const (
	GraphicsAPIVulkan GraphicsAPI = iota + 1
	GraphicsAPID3D12
)

func (g GraphicsAPI) String() string {
	switch g {
	case GraphicsAPIVulkan:
		return "Vulkan"
	case GraphicsAPID3D12:
		return "D3D12"
	}
	return fmt.Sprintf("GraphicsAPI(%d)", int(g))
}

// GraphicsBinding is an element of the session create-info next chain binding a graphics device.
type GraphicsBinding interface {
	GraphicsAPI() GraphicsAPI
}

// VulkanBinding is XrGraphicsBindingVulkanKHR. Handles are raw native pointers.
type VulkanBinding struct {
	Instance         uintptr
	PhysicalDevice   uintptr
	Device           uintptr
	QueueFamilyIndex uint32
	QueueIndex       uint32
}

// GraphicsAPI implements GraphicsBinding.
func (VulkanBinding) GraphicsAPI() GraphicsAPI { return GraphicsAPIVulkan }

// D3D12Binding is XrGraphicsBindingD3D12KHR. Handles are raw COM pointers.
type D3D12Binding struct {
	Device uintptr
	Queue  uintptr
}

// GraphicsAPI implements GraphicsBinding.
func (D3D12Binding) GraphicsAPI() GraphicsAPI { return GraphicsAPID3D12 }

// SessionCreateInfo holds everything required by xrCreateSession.
type SessionCreateInfo struct {
	SystemID SystemID
	Binding  GraphicsBinding
}

// ReferenceSpaceCreateInfo holds everything required by xrCreateReferenceSpace.
type ReferenceSpaceCreateInfo struct {
	ReferenceSpaceType   ReferenceSpaceType
	PoseInReferenceSpace Posef
}

// SwapchainUsageFlags declares how swapchain images will be used.
type SwapchainUsageFlags uint64

const (
	SwapchainUsageColorAttachment        SwapchainUsageFlags = 0x1
	SwapchainUsageDepthStencilAttachment SwapchainUsageFlags = 0x2
	SwapchainUsageUnorderedAccess        SwapchainUsageFlags = 0x4
	SwapchainUsageTransferSrc            SwapchainUsageFlags = 0x8
	SwapchainUsageTransferDst            SwapchainUsageFlags = 0x10
	SwapchainUsageSampled                SwapchainUsageFlags = 0x20
	SwapchainUsageMutableFormat          SwapchainUsageFlags = 0x40
)

// SwapchainCreateInfo holds everything required by xrCreateSwapchain.
// Format is the backend-native format value.
type SwapchainCreateInfo struct {
	UsageFlags  SwapchainUsageFlags
	Format      int64
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

// HandEXT selects a hand for XR_EXT_hand_tracking.
type HandEXT int32

const (
	HandLeft  HandEXT = 1
	HandRight HandEXT = 2
)

func (h HandEXT) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	}
	return fmt.Sprintf("HandEXT(%d)", int32(h))
}

// HandJointCount is XR_HAND_JOINT_COUNT_EXT.
const HandJointCount = 26

// HandJoint indexes the joints of XR_HAND_JOINT_SET_DEFAULT_EXT.
type HandJoint int32

const (
	HandJointPalm HandJoint = iota
	HandJointWrist
	HandJointThumbMetacarpal
	HandJointThumbProximal
	HandJointThumbDistal
	HandJointThumbTip
	HandJointIndexMetacarpal
	HandJointIndexProximal
	HandJointIndexIntermediate
	HandJointIndexDistal
	HandJointIndexTip
	HandJointMiddleMetacarpal
	HandJointMiddleProximal
	HandJointMiddleIntermediate
	HandJointMiddleDistal
	HandJointMiddleTip
	HandJointRingMetacarpal
	HandJointRingProximal
	HandJointRingIntermediate
	HandJointRingDistal
	HandJointRingTip
	HandJointLittleMetacarpal
	HandJointLittleProximal
	HandJointLittleIntermediate
	HandJointLittleDistal
	HandJointLittleTip
)

// HandJointLocation is one located joint.
type HandJointLocation struct {
	Flags  SpaceLocationFlags
	Pose   Posef
	Radius float32
}

// HandJointLocations is the batched result of xrLocateHandJointsEXT.
type HandJointLocations struct {
	IsActive bool
	Joints   [HandJointCount]HandJointLocation
}

// VulkanGraphicsRequirements is XrGraphicsRequirementsVulkanKHR.
type VulkanGraphicsRequirements struct {
	MinAPIVersionSupported Version
	MaxAPIVersionSupported Version
}

// D3D12GraphicsRequirements is XrGraphicsRequirementsD3D12KHR.
type D3D12GraphicsRequirements struct {
	AdapterLUID     uint64
	MinFeatureLevel uint32
}
