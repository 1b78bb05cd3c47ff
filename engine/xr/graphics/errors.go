package graphics

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoAvailableBackend is returned when no candidate backend's required extensions are available.
	ErrNoAvailableBackend = errors.New("graphics: no available backend")
	// ErrUnsupportedTextureFormat is returned when a format has no native equivalent.
	ErrUnsupportedTextureFormat = errors.New("graphics: unsupported texture format")
	// ErrUnsupportedPlatform is returned by backends that cannot run on the current OS.
	ErrUnsupportedPlatform = errors.New("graphics: backend unsupported on this platform")
	// ErrMissingRuntimeExtension is returned when the runtime does not implement the backend's extension interface.
	ErrMissingRuntimeExtension = errors.New("graphics: runtime lacks the backend's graphics extension")
)

// BackendMismatchError reports an attempt to combine objects from two backends.
type BackendMismatchError struct {
	Expected BackendKind
	Actual   BackendKind
}

func (e *BackendMismatchError) Error() string {
	return fmt.Sprintf("graphics: backend mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// RequirementsError reports that the local graphics stack cannot satisfy the runtime.
// For D3D12 the versions carry feature levels (11.0 is 11.0.0).
type RequirementsError struct {
	Backend   BackendKind
	Min       openxr.Version
	Max       openxr.Version
	Available openxr.Version
}

func (e *RequirementsError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("graphics: %s requirements not met: runtime needs at least %s, device offers %s",
			e.Backend, e.Min, e.Available)
	}
	return fmt.Sprintf("graphics: %s requirements not met: runtime supports %s to %s, device offers %s",
		e.Backend, e.Min, e.Max, e.Available)
}

// UnsupportedFormatError names the format a caller insisted on.
type UnsupportedFormatError struct {
	Backend BackendKind
	Format  wgpu.TextureFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("graphics: %s has no native equivalent of %s", e.Backend, e.Format)
}

// Unwrap makes errors.Is(err, ErrUnsupportedTextureFormat) hold.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedTextureFormat }

// CheckBackend validates that an object created under actual may be combined with one created under expected.
//
// Parameters:
//   - expected: the backend of the owning object (usually the instance)
//   - actual: the backend of the object being combined with it
//
// Returns:
//   - error: a *BackendMismatchError if the kinds differ
func CheckBackend(expected, actual BackendKind) error {
	if expected != actual {
		return &BackendMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

// CheckRequirements validates an available version against a runtime's supported range.
// A zero max means the runtime imposes no upper bound.
//
// Parameters:
//   - kind: the backend, used in the error
//   - min: the lowest version the runtime supports
//   - max: the highest version the runtime supports, or zero
//   - available: the version the local stack offers
//
// Returns:
//   - error: a *RequirementsError when available lies outside the range
func CheckRequirements(kind BackendKind, min, max, available openxr.Version) error {
	// patch levels never gate compatibility
	a := available &^ 0xffffffff
	if a < min&^0xffffffff || (max != 0 && a > max&^0xffffffff) {
		return &RequirementsError{Backend: kind, Min: min, Max: max, Available: available}
	}
	return nil
}
