package session

import (
	"errors"
	"slices"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoAvailableViewConfiguration is returned when the system offers none of the acceptable view configurations.
	ErrNoAvailableViewConfiguration = errors.New("session: no available view configuration")
	// ErrNoAvailableFormat is returned when the runtime offers no swapchain format the backend can express.
	ErrNoAvailableFormat = errors.New("session: no available swapchain format")
	// ErrNoAvailableBlendMode is returned when the system reports no environment blend mode.
	ErrNoAvailableBlendMode = errors.New("session: no available blend mode")
)

// pickPreferred returns the first preferred value present in available, or the
// first available value when no preference matches.
func pickPreferred[T comparable](available, preferred []T) (T, bool) {
	var zero T
	for _, p := range preferred {
		if slices.Contains(available, p) {
			return p, true
		}
	}
	if len(available) == 0 {
		return zero, false
	}
	return available[0], true
}

// SelectViewConfiguration picks the first acceptable view configuration the system supports.
// Without a preference only primary stereo is acceptable.
//
// Parameters:
//   - available: configurations reported by the system
//   - acceptable: acceptable configurations in order of preference
//
// Returns:
//   - openxr.ViewConfigurationType: the selected configuration
//   - error: ErrNoAvailableViewConfiguration when none is available
func SelectViewConfiguration(available, acceptable []openxr.ViewConfigurationType) (openxr.ViewConfigurationType, error) {
	if len(acceptable) == 0 {
		acceptable = []openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryStereo}
	}
	for _, a := range acceptable {
		if slices.Contains(available, a) {
			return a, nil
		}
	}
	return 0, ErrNoAvailableViewConfiguration
}

// SelectResolution picks the per-eye swapchain size. A preferred resolution equal to the
// recommended size wins first, then the first preferred resolution that fits within the
// maximum size; otherwise the recommended size, clamped to the maximum, is used.
//
// Parameters:
//   - views: the view configuration views; the first view decides
//   - preferred: resolutions in order of preference
//
// Returns:
//   - graphics.Resolution: the selected resolution
//   - error: ErrNoAvailableViewConfiguration when views is empty
func SelectResolution(views []openxr.ViewConfigurationView, preferred []graphics.Resolution) (graphics.Resolution, error) {
	if len(views) == 0 {
		return graphics.Resolution{}, ErrNoAvailableViewConfiguration
	}
	v := views[0]
	recommended := graphics.Resolution{Width: v.RecommendedImageRectWidth, Height: v.RecommendedImageRectHeight}
	if v.MaxImageRectWidth > 0 && v.MaxImageRectHeight > 0 {
		recommended.Width = common.Clamp(recommended.Width, 1, v.MaxImageRectWidth)
		recommended.Height = common.Clamp(recommended.Height, 1, v.MaxImageRectHeight)
	}
	for _, p := range preferred {
		if p == recommended {
			return p, nil
		}
	}
	for _, p := range preferred {
		if p.Width > 0 && p.Height > 0 && p.Width <= v.MaxImageRectWidth && p.Height <= v.MaxImageRectHeight {
			return p, nil
		}
	}
	return recommended, nil
}

// SelectFormat picks the first preferred format the runtime offers, or the first offered format.
//
// Parameters:
//   - available: offered formats in the runtime's order, already converted to portable formats
//   - preferred: formats in order of preference
//
// Returns:
//   - wgpu.TextureFormat: the selected format
//   - error: ErrNoAvailableFormat when nothing is offered
func SelectFormat(available, preferred []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	f, ok := pickPreferred(available, preferred)
	if !ok {
		return wgpu.TextureFormatUndefined, ErrNoAvailableFormat
	}
	return f, nil
}

// SelectBlendMode picks the first preferred blend mode the system supports, or the first supported one.
//
// Parameters:
//   - available: blend modes reported by the system
//   - preferred: blend modes in order of preference
//
// Returns:
//   - openxr.EnvironmentBlendMode: the selected mode
//   - error: ErrNoAvailableBlendMode when nothing is reported
func SelectBlendMode(available, preferred []openxr.EnvironmentBlendMode) (openxr.EnvironmentBlendMode, error) {
	m, ok := pickPreferred(available, preferred)
	if !ok {
		return 0, ErrNoAvailableBlendMode
	}
	return m, nil
}

// PortableFormats converts native formats through a backend, dropping those without a portable equivalent.
//
// Parameters:
//   - b: the backend that owns the native format space
//   - native: native format values in the runtime's order
//
// Returns:
//   - []wgpu.TextureFormat: the convertible formats, order kept
func PortableFormats(b graphics.Backend, native []int64) []wgpu.TextureFormat {
	out := make([]wgpu.TextureFormat, 0, len(native))
	for _, n := range native {
		if f, ok := b.FromNative(n); ok && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
