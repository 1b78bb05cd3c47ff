// Package vulkan implements the Vulkan graphics backend through XR_KHR_vulkan_enable.
package vulkan

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/goki/vulkan"
)

// preferredAPIVersion is the Vulkan version requested when the runtime allows it.
// 1.1 makes multiview core.
var preferredAPIVersion = openxr.MakeVersion(1, 1, 0)

// backend is the implementation of graphics.Backend for Vulkan.
type backend struct {
	logger          *log.Logger
	instanceExts    []string
	deviceExts      []string
	layers          []string
	enableMultiview bool

	createView  func(device uintptr, image uint64, format vk.Format, d viewDesc) (uintptr, error)
	destroyView func(device, view uintptr)
}

var _ graphics.Backend = (*backend)(nil)

// New creates the Vulkan backend.
//
// Parameters:
//   - options: BackendBuilderOptions applied in order
//
// Returns:
//   - graphics.Backend: the Vulkan backend
func New(options ...BackendBuilderOption) graphics.Backend {
	b := &backend{
		logger:          logger.For("vulkan"),
		enableMultiview: true,
		createView:      createImageView,
		destroyView:     destroyImageView,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *backend) Kind() graphics.BackendKind { return graphics.Vulkan }

func (b *backend) RequiredExtensions() openxr.ExtensionSet {
	return openxr.NewExtensionSet(openxr.ExtKHRVulkanEnable)
}

func (b *backend) ToNative(f wgpu.TextureFormat) (int64, bool) { return formats.ToNative(f) }

func (b *backend) FromNative(n int64) (wgpu.TextureFormat, bool) { return formats.FromNative(n) }

// pickAPIVersion chooses the instance API version inside the runtime's supported range.
func pickAPIVersion(reqs openxr.VulkanGraphicsRequirements) openxr.Version {
	v := preferredAPIVersion
	if reqs.MaxAPIVersionSupported != 0 && v > reqs.MaxAPIVersionSupported {
		v = openxr.MakeVersion(reqs.MaxAPIVersionSupported.Major(), reqs.MaxAPIVersionSupported.Minor(), 0)
	}
	if v < reqs.MinAPIVersionSupported {
		v = reqs.MinAPIVersionSupported
	}
	return v
}

// fromVkVersion unpacks a VK_MAKE_VERSION value.
func fromVkVersion(v uint32) openxr.Version {
	return openxr.MakeVersion(v>>22&0x7f, v>>12&0x3ff, v&0xfff)
}

// toVkVersion packs a version as VK_MAKE_VERSION.
func toVkVersion(v openxr.Version) uint32 {
	return v.Major()<<22 | v.Minor()<<12 | v.Patch()&0xfff
}

// mergeNames appends the names of extra missing from base, keeping order.
func mergeNames(base []string, extra ...string) []string {
	out := append([]string(nil), base...)
	for _, e := range extra {
		found := false
		for _, o := range out {
			if o == e {
				found = true
				break
			}
		}
		if !found && e != "" {
			out = append(out, e)
		}
	}
	return out
}
