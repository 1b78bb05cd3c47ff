// Package d3d12 implements the Direct3D 12 graphics backend through XR_KHR_D3D12_enable.
// Devices can only be opened on Windows; elsewhere InitGraphics reports
// graphics.ErrUnsupportedPlatform while the format tables stay usable.
package d3d12

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

func pair(p wgpu.TextureFormat, n dxgiFormat) graphics.FormatPair {
	return graphics.FormatPair{Portable: p, Native: int64(n)}
}

var formats = graphics.NewFormatTable(
	pair(wgpu.TextureFormatR8Unorm, dxgiFormatR8Unorm),
	pair(wgpu.TextureFormatR8Snorm, dxgiFormatR8Snorm),
	pair(wgpu.TextureFormatR8Uint, dxgiFormatR8Uint),
	pair(wgpu.TextureFormatR8Sint, dxgiFormatR8Sint),
	pair(wgpu.TextureFormatR16Uint, dxgiFormatR16Uint),
	pair(wgpu.TextureFormatR16Sint, dxgiFormatR16Sint),
	pair(wgpu.TextureFormatR16Float, dxgiFormatR16Float),
	pair(wgpu.TextureFormatRG8Unorm, dxgiFormatR8G8Unorm),
	pair(wgpu.TextureFormatRG8Snorm, dxgiFormatR8G8Snorm),
	pair(wgpu.TextureFormatRG8Uint, dxgiFormatR8G8Uint),
	pair(wgpu.TextureFormatRG8Sint, dxgiFormatR8G8Sint),
	pair(wgpu.TextureFormatR32Float, dxgiFormatR32Float),
	pair(wgpu.TextureFormatR32Uint, dxgiFormatR32Uint),
	pair(wgpu.TextureFormatR32Sint, dxgiFormatR32Sint),
	pair(wgpu.TextureFormatRG16Uint, dxgiFormatR16G16Uint),
	pair(wgpu.TextureFormatRG16Sint, dxgiFormatR16G16Sint),
	pair(wgpu.TextureFormatRG16Float, dxgiFormatR16G16Float),
	pair(wgpu.TextureFormatRGBA8Unorm, dxgiFormatR8G8B8A8Unorm),
	pair(wgpu.TextureFormatRGBA8UnormSrgb, dxgiFormatR8G8B8A8UnormSrgb),
	pair(wgpu.TextureFormatRGBA8Snorm, dxgiFormatR8G8B8A8Snorm),
	pair(wgpu.TextureFormatRGBA8Uint, dxgiFormatR8G8B8A8Uint),
	pair(wgpu.TextureFormatRGBA8Sint, dxgiFormatR8G8B8A8Sint),
	pair(wgpu.TextureFormatBGRA8Unorm, dxgiFormatB8G8R8A8Unorm),
	pair(wgpu.TextureFormatBGRA8UnormSrgb, dxgiFormatB8G8R8A8UnormSrgb),
	pair(wgpu.TextureFormatRGB10A2Unorm, dxgiFormatR10G10B10A2Unorm),
	pair(wgpu.TextureFormatRG11B10Ufloat, dxgiFormatR11G11B10Float),
	pair(wgpu.TextureFormatRG32Float, dxgiFormatR32G32Float),
	pair(wgpu.TextureFormatRG32Uint, dxgiFormatR32G32Uint),
	pair(wgpu.TextureFormatRG32Sint, dxgiFormatR32G32Sint),
	pair(wgpu.TextureFormatRGBA16Uint, dxgiFormatR16G16B16A16Uint),
	pair(wgpu.TextureFormatRGBA16Sint, dxgiFormatR16G16B16A16Sint),
	pair(wgpu.TextureFormatRGBA16Float, dxgiFormatR16G16B16A16Float),
	pair(wgpu.TextureFormatRGBA32Float, dxgiFormatR32G32B32A32Float),
	pair(wgpu.TextureFormatRGBA32Uint, dxgiFormatR32G32B32A32Uint),
	pair(wgpu.TextureFormatRGBA32Sint, dxgiFormatR32G32B32A32Sint),
	pair(wgpu.TextureFormatDepth16Unorm, dxgiFormatD16Unorm),
	pair(wgpu.TextureFormatDepth24PlusStencil8, dxgiFormatD24UnormS8Uint),
	pair(wgpu.TextureFormatDepth32Float, dxgiFormatD32Float),
	pair(wgpu.TextureFormatDepth32FloatStencil8, dxgiFormatD32FloatS8X24Uint),
)

// backend is the implementation of graphics.Backend for Direct3D 12.
type backend struct {
	logger *log.Logger
	debug  bool
}

var _ graphics.Backend = (*backend)(nil)

// New creates the D3D12 backend.
//
// Parameters:
//   - options: BackendBuilderOptions applied in order
//
// Returns:
//   - graphics.Backend: the D3D12 backend
func New(options ...BackendBuilderOption) graphics.Backend {
	b := &backend{logger: logger.For("d3d12")}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *backend) Kind() graphics.BackendKind { return graphics.D3D12 }

func (b *backend) RequiredExtensions() openxr.ExtensionSet {
	return openxr.NewExtensionSet(openxr.ExtKHRD3D12Enable)
}

func (b *backend) ToNative(f wgpu.TextureFormat) (int64, bool) { return formats.ToNative(f) }

func (b *backend) FromNative(n int64) (wgpu.TextureFormat, bool) { return formats.FromNative(n) }

func (b *backend) ImportSwapchainImage(native uint64, device *graphics.Device, format wgpu.TextureFormat, size graphics.Resolution, layers uint32) (*graphics.Texture, error) {
	return graphics.ImportImage(graphics.D3D12, native, device, format, size, layers)
}

// InitGraphics opens a D3D12 device on the adapter the runtime names, at or
// above the runtime's minimum feature level, plus a direct command queue.
func (b *backend) InitGraphics(app graphics.AppInfo, rt openxr.Runtime, instance openxr.Instance, system openxr.SystemID) (*graphics.Device, openxr.GraphicsBinding, error) {
	drt, ok := rt.(openxr.D3D12Runtime)
	if !ok {
		return nil, nil, graphics.ErrMissingRuntimeExtension
	}
	reqs, err := drt.GetD3D12GraphicsRequirements(instance, system)
	if err != nil {
		return nil, nil, fmt.Errorf("d3d12: graphics requirements: %w", err)
	}

	dev, level, err := openDevice(reqs.AdapterLUID, reqs.MinFeatureLevel, b.debug)
	if err != nil {
		var re *graphics.RequirementsError
		if errors.As(err, &re) {
			b.logger.Error("d3d12 adapter below runtime requirements",
				"required", featureLevelVersion(reqs.MinFeatureLevel), "available", re.Available)
		}
		return nil, nil, err
	}
	dev.APIVersion = featureLevelVersion(level)
	b.logger.Info("d3d12 device opened", "feature_level", dev.APIVersion, "adapter_luid", fmt.Sprintf("%#x", reqs.AdapterLUID))

	return dev, openxr.D3D12Binding{Device: dev.Handle, Queue: dev.Queue}, nil
}

// featureLevelVersion expresses a D3D_FEATURE_LEVEL as major.minor.0.
func featureLevelVersion(level uint32) openxr.Version {
	return openxr.MakeVersion(level>>12&0xf, level>>8&0xf, 0)
}

// candidateLevels lists the feature levels tried, highest first, that satisfy min.
func candidateLevels(min uint32) []uint32 {
	all := []uint32{featureLevel12_2, featureLevel12_1, featureLevel12_0, featureLevel11_1, featureLevel11_0}
	out := make([]uint32, 0, len(all))
	for _, l := range all {
		if l >= min {
			out = append(out, l)
		}
	}
	return out
}
