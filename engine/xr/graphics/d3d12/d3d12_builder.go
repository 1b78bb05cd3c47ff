package d3d12

import "github.com/charmbracelet/log"

// BackendBuilderOption is a functional option applied to the D3D12 backend during construction via New.
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

// WithDebugLayer enables the D3D12 debug layer before the device is created.
//
// Parameters:
//   - enable: true to enable the debug layer
//
// Returns:
//   - BackendBuilderOption: a function that applies the debug layer option to a backend
func WithDebugLayer(enable bool) BackendBuilderOption {
	return func(b *backend) {
		b.debug = enable
	}
}
