// Package graphicstest provides a graphics.Backend that opens no native device,
// for exercising session and frame code against xrtest.Runtime.
package graphicstest

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

// Native format values shared with xrtest's default swapchain formats (Vulkan numbering).
var formats = graphics.NewFormatTable(
	graphics.FormatPair{Portable: wgpu.TextureFormatRGBA8Unorm, Native: 37},
	graphics.FormatPair{Portable: wgpu.TextureFormatRGBA8UnormSrgb, Native: 43},
	graphics.FormatPair{Portable: wgpu.TextureFormatBGRA8Unorm, Native: 44},
	graphics.FormatPair{Portable: wgpu.TextureFormatBGRA8UnormSrgb, Native: 50},
)

// Backend is a fake backend of a configurable kind.
type Backend struct {
	BackendKind graphics.BackendKind
	// Available is the API version (or feature level) the fake device offers.
	Available openxr.Version
	// Released counts Device.Release calls.
	Released int
	// Inits counts InitGraphics calls.
	Inits int
	// Views counts the views currently alive across imported textures.
	Views int
	// FailImport makes ImportSwapchainImage fail after this many successful imports when positive.
	FailImport int

	imports int
}

var _ graphics.Backend = (*Backend)(nil)

// New creates a fake backend offering version 1.3 of its API.
func New(kind graphics.BackendKind) *Backend {
	return &Backend{BackendKind: kind, Available: openxr.MakeVersion(1, 3, 0)}
}

func (b *Backend) Kind() graphics.BackendKind { return b.BackendKind }

func (b *Backend) RequiredExtensions() openxr.ExtensionSet {
	switch b.BackendKind {
	case graphics.Vulkan:
		return openxr.NewExtensionSet(openxr.ExtKHRVulkanEnable)
	case graphics.D3D12:
		return openxr.NewExtensionSet(openxr.ExtKHRD3D12Enable)
	}
	return openxr.ExtensionSet{}
}

func (b *Backend) ToNative(f wgpu.TextureFormat) (int64, bool) { return formats.ToNative(f) }

func (b *Backend) FromNative(n int64) (wgpu.TextureFormat, bool) { return formats.FromNative(n) }

func (b *Backend) InitGraphics(app graphics.AppInfo, rt openxr.Runtime, instance openxr.Instance, system openxr.SystemID) (*graphics.Device, openxr.GraphicsBinding, error) {
	b.Inits++
	dev := graphics.NewDevice(b.BackendKind, func() { b.Released++ })
	dev.APIVersion = b.Available
	switch b.BackendKind {
	case graphics.Vulkan:
		vrt, ok := rt.(openxr.VulkanRuntime)
		if !ok {
			return nil, nil, graphics.ErrMissingRuntimeExtension
		}
		reqs, err := vrt.GetVulkanGraphicsRequirements(instance, system)
		if err != nil {
			return nil, nil, err
		}
		if err := graphics.CheckRequirements(b.BackendKind, reqs.MinAPIVersionSupported, reqs.MaxAPIVersionSupported, b.Available); err != nil {
			return nil, nil, err
		}
		dev.Instance, dev.Handle, dev.Queue = 0x1, 0x2, 0x3
		phys, err := vrt.GetVulkanGraphicsDevice(instance, system, dev.Instance)
		if err != nil {
			return nil, nil, err
		}
		dev.Adapter = phys
		return dev, openxr.VulkanBinding{Instance: dev.Instance, PhysicalDevice: dev.Adapter, Device: dev.Handle}, nil
	case graphics.D3D12:
		drt, ok := rt.(openxr.D3D12Runtime)
		if !ok {
			return nil, nil, graphics.ErrMissingRuntimeExtension
		}
		if _, err := drt.GetD3D12GraphicsRequirements(instance, system); err != nil {
			return nil, nil, err
		}
		dev.Handle, dev.Queue = 0x12, 0x13
		return dev, openxr.D3D12Binding{Device: dev.Handle, Queue: dev.Queue}, nil
	}
	return nil, nil, graphics.ErrNoAvailableBackend
}

func (b *Backend) ImportSwapchainImage(native uint64, device *graphics.Device, format wgpu.TextureFormat, size graphics.Resolution, layers uint32) (*graphics.Texture, error) {
	if b.FailImport > 0 && b.imports == b.FailImport {
		return nil, errors.New("graphicstest: import failed")
	}
	tex, err := graphics.ImportImage(b.BackendKind, native, device, format, size, layers)
	if err != nil {
		return nil, err
	}
	b.imports++
	tex.View = uintptr(native)<<8 | 0xff
	for l := uint32(0); l < tex.ArrayLayers; l++ {
		tex.LayerViews = append(tex.LayerViews, uintptr(native)<<8|uintptr(l))
	}
	created := 1 + len(tex.LayerViews)
	b.Views += created
	tex.OnRelease(func() { b.Views -= created })
	return tex, nil
}
