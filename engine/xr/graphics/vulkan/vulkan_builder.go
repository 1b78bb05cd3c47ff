package vulkan

import "github.com/charmbracelet/log"

// BackendBuilderOption is a functional option applied to the Vulkan backend during construction via New.
type BackendBuilderOption func(*backend)

// WithLogger replaces the backend's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - BackendBuilderOption: a function that applies the logger option to a backend
func WithLogger(l *log.Logger) BackendBuilderOption {
	return func(b *backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithInstanceExtensions adds Vulkan instance extensions on top of those the runtime requires.
//
// Parameters:
//   - names: Vulkan extension names, e.g. "VK_EXT_debug_utils"
//
// Returns:
//   - BackendBuilderOption: a function that applies the instance extensions option to a backend
func WithInstanceExtensions(names ...string) BackendBuilderOption {
	return func(b *backend) {
		b.instanceExts = append(b.instanceExts, names...)
	}
}

// WithDeviceExtensions adds Vulkan device extensions on top of those the runtime requires.
//
// Parameters:
//   - names: Vulkan extension names
//
// Returns:
//   - BackendBuilderOption: a function that applies the device extensions option to a backend
func WithDeviceExtensions(names ...string) BackendBuilderOption {
	return func(b *backend) {
		b.deviceExts = append(b.deviceExts, names...)
	}
}

// WithValidationLayers enables Vulkan instance layers such as "VK_LAYER_KHRONOS_validation".
//
// Parameters:
//   - names: layer names
//
// Returns:
//   - BackendBuilderOption: a function that applies the validation layers option to a backend
func WithValidationLayers(names ...string) BackendBuilderOption {
	return func(b *backend) {
		b.layers = append(b.layers, names...)
	}
}

// WithMultiview toggles chaining the multiview feature into device creation. Enabled by default.
//
// Parameters:
//   - enable: false to skip the multiview feature
//
// Returns:
//   - BackendBuilderOption: a function that applies the multiview option to a backend
func WithMultiview(enable bool) BackendBuilderOption {
	return func(b *backend) {
		b.enableMultiview = enable
	}
}
