// Package loader binds openxr.Runtime to the system OpenXR loader (libopenxr_loader).
//
// The binding is compiled only with the "openxr" build tag and cgo enabled:
//
//	go build -tags openxr ./...
//
// Without it, Load reports ErrUnavailable and callers fall back to flat rendering.
package loader

import "errors"

// ErrUnavailable is returned by Load when the native binding is not compiled in
// or the OpenXR loader library cannot be found.
var ErrUnavailable = errors.New("loader: OpenXR runtime unavailable")

// Available reports whether the native binding is compiled into this binary.
func Available() bool { return nativeBinding }
