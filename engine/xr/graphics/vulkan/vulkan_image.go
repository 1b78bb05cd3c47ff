package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/goki/vulkan"
)

// viewDesc describes one image view over a swapchain image.
type viewDesc struct {
	viewType   vk.ImageViewType
	baseLayer  uint32
	layerCount uint32
}

// imageViews lists the views created per swapchain image: a 2D array view over
// every layer first, then one 2D view per layer.
func imageViews(layers uint32) []viewDesc {
	out := make([]viewDesc, 0, layers+1)
	out = append(out, viewDesc{viewType: vk.ImageViewType2dArray, layerCount: layers})
	for l := uint32(0); l < layers; l++ {
		out = append(out, viewDesc{viewType: vk.ImageViewType2d, baseLayer: l, layerCount: 1})
	}
	return out
}

func createImageView(device uintptr, image uint64, format vk.Format, d viewDesc) (uintptr, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    vk.Image(unsafe.Pointer(uintptr(image))),
		ViewType: d.viewType,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: d.baseLayer,
			LayerCount:     d.layerCount,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(vk.Device(unsafe.Pointer(device)), &info, nil, &view); res != vk.Success {
		return 0, fmt.Errorf("vulkan: vkCreateImageView failed: %d", res)
	}
	return uintptr(unsafe.Pointer(view)), nil
}

func destroyImageView(device, view uintptr) {
	vk.DestroyImageView(vk.Device(unsafe.Pointer(device)), vk.ImageView(unsafe.Pointer(view)), nil)
}

// ImportSwapchainImage wraps a runtime-owned VkImage with views the renderer can
// attach: Texture.View spans both eyes for multiview passes, Texture.LayerViews
// address one eye each. The views belong to the Texture; the image stays the runtime's.
func (b *backend) ImportSwapchainImage(native uint64, device *graphics.Device, format wgpu.TextureFormat, size graphics.Resolution, layers uint32) (*graphics.Texture, error) {
	tex, err := graphics.ImportImage(graphics.Vulkan, native, device, format, size, layers)
	if err != nil {
		return nil, err
	}
	vkFormat, ok := formats.ToNative(format)
	if !ok {
		return nil, &graphics.UnsupportedFormatError{Backend: graphics.Vulkan, Format: format}
	}

	handle := device.Handle
	descs := imageViews(tex.ArrayLayers)
	views := make([]uintptr, 0, len(descs))
	for _, d := range descs {
		v, err := b.createView(handle, native, vk.Format(vkFormat), d)
		if err != nil {
			for _, created := range views {
				b.destroyView(handle, created)
			}
			return nil, err
		}
		views = append(views, v)
	}

	tex.View = views[0]
	tex.LayerViews = views[1:]
	tex.OnRelease(func() {
		for _, v := range views {
			b.destroyView(handle, v)
		}
	})
	return tex, nil
}
