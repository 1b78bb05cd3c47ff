package vulkan

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/goki/vulkan"
)

func pair(p wgpu.TextureFormat, n vk.Format) graphics.FormatPair {
	return graphics.FormatPair{Portable: p, Native: int64(n)}
}

var formats = graphics.NewFormatTable(
	pair(wgpu.TextureFormatR8Unorm, vk.FormatR8Unorm),
	pair(wgpu.TextureFormatR8Snorm, vk.FormatR8Snorm),
	pair(wgpu.TextureFormatR8Uint, vk.FormatR8Uint),
	pair(wgpu.TextureFormatR8Sint, vk.FormatR8Sint),
	pair(wgpu.TextureFormatR16Uint, vk.FormatR16Uint),
	pair(wgpu.TextureFormatR16Sint, vk.FormatR16Sint),
	pair(wgpu.TextureFormatR16Float, vk.FormatR16Sfloat),
	pair(wgpu.TextureFormatRG8Unorm, vk.FormatR8g8Unorm),
	pair(wgpu.TextureFormatRG8Snorm, vk.FormatR8g8Snorm),
	pair(wgpu.TextureFormatRG8Uint, vk.FormatR8g8Uint),
	pair(wgpu.TextureFormatRG8Sint, vk.FormatR8g8Sint),
	pair(wgpu.TextureFormatR32Float, vk.FormatR32Sfloat),
	pair(wgpu.TextureFormatR32Uint, vk.FormatR32Uint),
	pair(wgpu.TextureFormatR32Sint, vk.FormatR32Sint),
	pair(wgpu.TextureFormatRG16Uint, vk.FormatR16g16Uint),
	pair(wgpu.TextureFormatRG16Sint, vk.FormatR16g16Sint),
	pair(wgpu.TextureFormatRG16Float, vk.FormatR16g16Sfloat),
	pair(wgpu.TextureFormatRGBA8Unorm, vk.FormatR8g8b8a8Unorm),
	pair(wgpu.TextureFormatRGBA8UnormSrgb, vk.FormatR8g8b8a8Srgb),
	pair(wgpu.TextureFormatRGBA8Snorm, vk.FormatR8g8b8a8Snorm),
	pair(wgpu.TextureFormatRGBA8Uint, vk.FormatR8g8b8a8Uint),
	pair(wgpu.TextureFormatRGBA8Sint, vk.FormatR8g8b8a8Sint),
	pair(wgpu.TextureFormatBGRA8Unorm, vk.FormatB8g8r8a8Unorm),
	pair(wgpu.TextureFormatBGRA8UnormSrgb, vk.FormatB8g8r8a8Srgb),
	pair(wgpu.TextureFormatRGB10A2Unorm, vk.FormatA2b10g10r10UnormPack32),
	pair(wgpu.TextureFormatRG11B10Ufloat, vk.FormatB10g11r11UfloatPack32),
	pair(wgpu.TextureFormatRG32Float, vk.FormatR32g32Sfloat),
	pair(wgpu.TextureFormatRG32Uint, vk.FormatR32g32Uint),
	pair(wgpu.TextureFormatRG32Sint, vk.FormatR32g32Sint),
	pair(wgpu.TextureFormatRGBA16Uint, vk.FormatR16g16b16a16Uint),
	pair(wgpu.TextureFormatRGBA16Sint, vk.FormatR16g16b16a16Sint),
	pair(wgpu.TextureFormatRGBA16Float, vk.FormatR16g16b16a16Sfloat),
	pair(wgpu.TextureFormatRGBA32Float, vk.FormatR32g32b32a32Sfloat),
	pair(wgpu.TextureFormatRGBA32Uint, vk.FormatR32g32b32a32Uint),
	pair(wgpu.TextureFormatRGBA32Sint, vk.FormatR32g32b32a32Sint),
	pair(wgpu.TextureFormatDepth16Unorm, vk.FormatD16Unorm),
	pair(wgpu.TextureFormatDepth24Plus, vk.FormatX8D24UnormPack32),
	pair(wgpu.TextureFormatDepth24PlusStencil8, vk.FormatD24UnormS8Uint),
	pair(wgpu.TextureFormatDepth32Float, vk.FormatD32Sfloat),
	pair(wgpu.TextureFormatDepth32FloatStencil8, vk.FormatD32SfloatS8Uint),
)
