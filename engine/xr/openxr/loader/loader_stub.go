//go:build !openxr || !cgo

package loader

import "github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"

const nativeBinding = false

// Load always fails without the native binding.
//
// Returns:
//   - openxr.Runtime: always nil
//   - error: always ErrUnavailable
func Load() (openxr.Runtime, error) {
	return nil, ErrUnavailable
}
