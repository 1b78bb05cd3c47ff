package xrtest

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

var (
	_ openxr.VulkanRuntime       = (*Runtime)(nil)
	_ openxr.D3D12Runtime        = (*Runtime)(nil)
	_ openxr.HandTrackingRuntime = (*Runtime)(nil)
)

// FakeVkPhysicalDevice is the VkPhysicalDevice handle returned by GetVulkanGraphicsDevice.
const FakeVkPhysicalDevice uintptr = 0xd1ce

func (r *Runtime) GetVulkanGraphicsRequirements(instance openxr.Instance, system openxr.SystemID) (openxr.VulkanGraphicsRequirements, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetVulkanGraphicsRequirements"); err != nil {
		return openxr.VulkanGraphicsRequirements{}, err
	}
	return r.VulkanRequirements, nil
}

func (r *Runtime) GetVulkanInstanceExtensions(instance openxr.Instance, system openxr.SystemID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetVulkanInstanceExtensions"); err != nil {
		return nil, err
	}
	return slices.Clone(r.VulkanInstanceExts), nil
}

func (r *Runtime) GetVulkanDeviceExtensions(instance openxr.Instance, system openxr.SystemID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetVulkanDeviceExtensions"); err != nil {
		return nil, err
	}
	return slices.Clone(r.VulkanDeviceExts), nil
}

func (r *Runtime) GetVulkanGraphicsDevice(instance openxr.Instance, system openxr.SystemID, vkInstance uintptr) (uintptr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetVulkanGraphicsDevice"); err != nil {
		return 0, err
	}
	if vkInstance == 0 {
		return 0, openxr.ErrorHandleInvalid
	}
	return FakeVkPhysicalDevice, nil
}

func (r *Runtime) GetD3D12GraphicsRequirements(instance openxr.Instance, system openxr.SystemID) (openxr.D3D12GraphicsRequirements, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetD3D12GraphicsRequirements"); err != nil {
		return openxr.D3D12GraphicsRequirements{}, err
	}
	return r.D3D12Requirements, nil
}

func (r *Runtime) CreateHandTracker(session openxr.Session, hand openxr.HandEXT) (openxr.HandTracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateHandTracker"); err != nil {
		return 0, err
	}
	if session == 0 || session != r.session {
		return 0, openxr.ErrorHandleInvalid
	}
	t := openxr.HandTracker(r.handle())
	r.trackers[t] = hand
	return t, nil
}

func (r *Runtime) DestroyHandTracker(tracker openxr.HandTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DestroyHandTracker"); err != nil {
		return err
	}
	if _, ok := r.trackers[tracker]; !ok {
		return openxr.ErrorHandleInvalid
	}
	delete(r.trackers, tracker)
	return nil
}

func (r *Runtime) LocateHandJoints(tracker openxr.HandTracker, baseSpace openxr.Space, time openxr.Time) (openxr.HandJointLocations, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("LocateHandJoints"); err != nil {
		return openxr.HandJointLocations{}, err
	}
	hand, ok := r.trackers[tracker]
	if !ok {
		return openxr.HandJointLocations{}, openxr.ErrorHandleInvalid
	}
	r.LastLocateTime = time
	return r.HandJoints[hand], nil
}

// CoreOnly hides the extension interfaces of a runtime, modelling a runtime
// without graphics or hand tracking extensions.
type CoreOnly struct {
	openxr.Runtime
}
