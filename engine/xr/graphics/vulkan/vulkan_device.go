package vulkan

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	vk "github.com/goki/vulkan"
)

var (
	loadMu sync.Mutex
	loaded bool
)

// loadVulkan resolves the Vulkan loader once per process.
func loadVulkan() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	if loaded {
		return nil
	}
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("vulkan: load library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vulkan: init loader: %w", err)
	}
	loaded = true
	return nil
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// InitGraphics opens a Vulkan instance and device the runtime can drive.
// The physical device is the one the runtime names; the instance API version is
// chosen inside the runtime's supported range and the device must support it.
func (b *backend) InitGraphics(app graphics.AppInfo, rt openxr.Runtime, instance openxr.Instance, system openxr.SystemID) (*graphics.Device, openxr.GraphicsBinding, error) {
	vrt, ok := rt.(openxr.VulkanRuntime)
	if !ok {
		return nil, nil, graphics.ErrMissingRuntimeExtension
	}

	reqs, err := vrt.GetVulkanGraphicsRequirements(instance, system)
	if err != nil {
		return nil, nil, fmt.Errorf("vulkan: graphics requirements: %w", err)
	}
	apiVersion := pickAPIVersion(reqs)

	runtimeInstanceExts, err := vrt.GetVulkanInstanceExtensions(instance, system)
	if err != nil {
		return nil, nil, fmt.Errorf("vulkan: instance extensions: %w", err)
	}
	runtimeDeviceExts, err := vrt.GetVulkanDeviceExtensions(instance, system)
	if err != nil {
		return nil, nil, fmt.Errorf("vulkan: device extensions: %w", err)
	}

	if err := loadVulkan(); err != nil {
		return nil, nil, err
	}

	vkInstance, err := b.createInstance(app, apiVersion, mergeNames(runtimeInstanceExts, b.instanceExts...))
	if err != nil {
		return nil, nil, err
	}

	physHandle, err := vrt.GetVulkanGraphicsDevice(instance, system, uintptr(unsafe.Pointer(vkInstance)))
	if err != nil {
		vk.DestroyInstance(vkInstance, nil)
		return nil, nil, fmt.Errorf("vulkan: runtime graphics device: %w", err)
	}
	phys := vk.PhysicalDevice(unsafe.Pointer(physHandle))

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(phys, &props)
	props.Deref()
	available := fromVkVersion(props.ApiVersion)
	if err := graphics.CheckRequirements(graphics.Vulkan, reqs.MinAPIVersionSupported, 0, available); err != nil {
		b.logger.Error("vulkan device below runtime requirements",
			"required_min", reqs.MinAPIVersionSupported, "required_max", reqs.MaxAPIVersionSupported, "available", available)
		vk.DestroyInstance(vkInstance, nil)
		return nil, nil, err
	}
	if available < apiVersion {
		apiVersion = available
	}

	family, err := graphicsQueueFamily(phys)
	if err != nil {
		vk.DestroyInstance(vkInstance, nil)
		return nil, nil, err
	}

	device, err := b.createDevice(phys, family, mergeNames(runtimeDeviceExts, b.deviceExts...))
	if err != nil {
		vk.DestroyInstance(vkInstance, nil)
		return nil, nil, err
	}
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)

	dev := graphics.NewDevice(graphics.Vulkan, func() {
		vk.DeviceWaitIdle(device)
		vk.DestroyDevice(device, nil)
		vk.DestroyInstance(vkInstance, nil)
	})
	dev.Instance = uintptr(unsafe.Pointer(vkInstance))
	dev.Adapter = physHandle
	dev.Handle = uintptr(unsafe.Pointer(device))
	dev.Queue = uintptr(unsafe.Pointer(queue))
	dev.QueueFamilyIndex = family
	dev.APIVersion = apiVersion

	b.logger.Info("vulkan device opened", "api_version", apiVersion, "queue_family", family)

	binding := openxr.VulkanBinding{
		Instance:         dev.Instance,
		PhysicalDevice:   dev.Adapter,
		Device:           dev.Handle,
		QueueFamilyIndex: family,
		QueueIndex:       0,
	}
	return dev, binding, nil
}

func (b *backend) createInstance(app graphics.AppInfo, apiVersion openxr.Version, extensions []string) (vk.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(app.Name),
		ApplicationVersion: app.Version,
		PEngineName:        safeString("oxy-xr"),
		EngineVersion:      uint32(vk.MakeVersion(0, 1, 0)),
		ApiVersion:         toVkVersion(apiVersion),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(b.layers)),
		PpEnabledLayerNames:     safeStrings(b.layers),
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return nil, fmt.Errorf("vulkan: vkCreateInstance failed: %d", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("vulkan: init instance: %w", err)
	}
	return instance, nil
}

func graphicsQueueFamily(phys vk.PhysicalDevice) (uint32, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(phys, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(phys, &count, families)
	for i := range families {
		families[i].Deref()
		if families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return uint32(i), nil
		}
	}
	return 0, errors.New("vulkan: physical device has no graphics queue")
}

func (b *backend) createDevice(phys vk.PhysicalDevice, family uint32, extensions []string) (vk.Device, error) {
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	if b.enableMultiview {
		multiview := vk.PhysicalDeviceMultiviewFeatures{
			SType:     vk.StructureTypePhysicalDeviceMultiviewFeatures,
			Multiview: vk.True,
		}
		ref, allocs := multiview.PassRef()
		defer allocs.Free()
		createInfo.PNext = unsafe.Pointer(ref)
	}

	var device vk.Device
	if res := vk.CreateDevice(phys, &createInfo, nil, &device); res != vk.Success {
		return nil, fmt.Errorf("vulkan: vkCreateDevice failed: %d", res)
	}
	return device, nil
}
