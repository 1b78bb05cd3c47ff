// Package graphics abstracts the native graphics APIs an XR session can be bound to.
//
// Each supported API is a Backend. Generic engine code holds a Backend, a Device
// and Textures without knowing which API sits underneath; the backend identity
// travels with every object so two objects from different backends are rejected
// with a BackendMismatchError the moment they are combined.
package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendKind identifies a native graphics API.
type BackendKind int

const (
	// Vulkan binds sessions through XR_KHR_vulkan_enable.
	Vulkan BackendKind = iota + 1
	// D3D12 binds sessions through XR_KHR_D3D12_enable.
	D3D12
)

func (k BackendKind) String() string {
	switch k {
	case Vulkan:
		return "vulkan"
	case D3D12:
		return "d3d12"
	}
	return fmt.Sprintf("BackendKind(%d)", int(k))
}

// API returns the OpenXR graphics API tag of the backend.
func (k BackendKind) API() openxr.GraphicsAPI {
	switch k {
	case Vulkan:
		return openxr.GraphicsAPIVulkan
	case D3D12:
		return openxr.GraphicsAPID3D12
	}
	return 0
}

// ParseBackendKind accepts the names produced by String.
//
// Parameters:
//   - name: "vulkan" or "d3d12"
//
// Returns:
//   - BackendKind: the parsed kind
//   - error: an error if the name is unknown
func ParseBackendKind(name string) (BackendKind, error) {
	switch name {
	case "vulkan", "Vulkan":
		return Vulkan, nil
	case "d3d12", "D3D12":
		return D3D12, nil
	}
	return 0, fmt.Errorf("graphics: unknown backend %q", name)
}

// AppInfo names the application to the runtime and to the native graphics API.
type AppInfo struct {
	Name    string
	Version uint32
}

// Resolution is a swapchain image size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

func (r Resolution) String() string { return fmt.Sprintf("%dx%d", r.Width, r.Height) }

// Device is the backend-erased bundle of native graphics objects opened for a session.
// Handles are raw native pointers: VkInstance/VkPhysicalDevice/VkDevice/VkQueue for
// Vulkan, nil/IDXGIAdapter1/ID3D12Device/ID3D12CommandQueue for D3D12.
type Device struct {
	Kind             BackendKind
	Instance         uintptr
	Adapter          uintptr
	Handle           uintptr
	Queue            uintptr
	QueueFamilyIndex uint32
	APIVersion       openxr.Version

	release func()
}

// NewDevice bundles native handles. release is called once by Release.
func NewDevice(kind BackendKind, release func()) *Device {
	return &Device{Kind: kind, release: release}
}

// Release destroys the native objects owned by the device. Calling it twice is a no-op.
func (d *Device) Release() {
	if d == nil || d.release == nil {
		return
	}
	d.release()
	d.release = nil
}

// Texture is a runtime-owned swapchain image described in portable terms.
// The image is borrowed from the swapchain and never freed here; the views the
// importing backend created over it are owned by the Texture and freed by Release.
type Texture struct {
	Backend     BackendKind
	Native      uint64
	Format      wgpu.TextureFormat
	Size        Resolution
	ArrayLayers uint32

	// View covers every layer of the image (a VkImageView of type 2D array on Vulkan).
	// Zero on backends that render into the image resource directly.
	View uintptr
	// LayerViews holds one single-layer view per array layer, in layer order.
	LayerViews []uintptr

	release func()
}

// LayerView returns the single-layer view of one eye.
//
// Parameters:
//   - layer: the array layer
//
// Returns:
//   - uintptr: the native view
//   - bool: false when the layer has no view
func (t *Texture) LayerView(layer uint32) (uintptr, bool) {
	if t == nil || int(layer) >= len(t.LayerViews) {
		return 0, false
	}
	return t.LayerViews[layer], true
}

// OnRelease sets the function destroying the views created for the texture.
func (t *Texture) OnRelease(fn func()) {
	t.release = fn
}

// Release destroys the views owned by the texture. The borrowed image is left
// to the runtime. Calling it twice is a no-op.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.release != nil {
		t.release()
		t.release = nil
	}
	t.View, t.LayerViews = 0, nil
}

// Backend is the capability contract implemented once per native graphics API.
type Backend interface {
	// Kind returns the backend identity.
	Kind() BackendKind

	// RequiredExtensions returns the extensions the runtime must offer for this backend to be usable.
	RequiredExtensions() openxr.ExtensionSet

	// ToNative converts a portable format into the backend's native format value.
	//
	// Parameters:
	//   - format: the portable format
	//
	// Returns:
	//   - int64: the native format value
	//   - bool: false if the backend has no equivalent
	ToNative(format wgpu.TextureFormat) (int64, bool)

	// FromNative converts a native format value into the portable format.
	//
	// Parameters:
	//   - native: the native format value
	//
	// Returns:
	//   - wgpu.TextureFormat: the portable format
	//   - bool: false if the portable enum has no equivalent
	FromNative(native int64) (wgpu.TextureFormat, bool)

	// InitGraphics opens a native device satisfying the runtime's graphics requirements.
	//
	// Parameters:
	//   - app: application identity passed to the native API
	//   - rt: the runtime, which must implement this backend's extension interface
	//   - instance: the XR instance
	//   - system: the XR system the device must drive
	//
	// Returns:
	//   - *Device: the opened device bundle
	//   - openxr.GraphicsBinding: the session create-info binding for the device
	//   - error: a *RequirementsError if the local stack cannot satisfy the runtime
	InitGraphics(app AppInfo, rt openxr.Runtime, instance openxr.Instance, system openxr.SystemID) (*Device, openxr.GraphicsBinding, error)

	// ImportSwapchainImage wraps a runtime-owned image into a Texture without copying,
	// creating whatever views the backend renders through. The caller releases the
	// Texture before the swapchain is destroyed.
	//
	// Parameters:
	//   - native: the native image handle from EnumerateSwapchainImages
	//   - device: the device the swapchain was created against
	//   - format: the swapchain's portable format
	//   - size: the swapchain resolution
	//   - layers: the swapchain array size
	//
	// Returns:
	//   - *Texture: the borrowed texture
	//   - error: a *BackendMismatchError if device belongs to another backend
	ImportSwapchainImage(native uint64, device *Device, format wgpu.TextureFormat, size Resolution, layers uint32) (*Texture, error)
}
