package instance

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
)

// InstanceBuilderOption is a functional option applied to an instance during construction via New.
type InstanceBuilderOption func(*instance)

// WithLogger replaces the instance's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - InstanceBuilderOption: a function that applies the logger option to an instance
func WithLogger(l *log.Logger) InstanceBuilderOption {
	return func(i *instance) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithAppInfo names the application to the runtime.
//
// Parameters:
//   - app: application name and version
//
// Returns:
//   - InstanceBuilderOption: a function that applies the app info option to an instance
func WithAppInfo(app graphics.AppInfo) InstanceBuilderOption {
	return func(i *instance) {
		i.app = app
	}
}

// WithBackends sets the candidate graphics backends. Their order is the fallback
// order used when no preference is given.
//
// Parameters:
//   - backends: the candidate backends
//
// Returns:
//   - InstanceBuilderOption: a function that applies the backends option to an instance
func WithBackends(backends ...graphics.Backend) InstanceBuilderOption {
	return func(i *instance) {
		i.candidates = append(i.candidates, backends...)
	}
}

// WithPreferredBackends sets the backend preference order. The first preferred
// backend whose required extensions are available wins.
//
// Parameters:
//   - kinds: backends in order of preference
//
// Returns:
//   - InstanceBuilderOption: a function that applies the preference option to an instance
func WithPreferredBackends(kinds ...graphics.BackendKind) InstanceBuilderOption {
	return func(i *instance) {
		i.preferred = append(i.preferred, kinds...)
	}
}

// WithExtensions requests optional extensions by name. Unavailable ones are logged and skipped.
//
// Parameters:
//   - names: extension names, e.g. "XR_EXT_hand_tracking"
//
// Returns:
//   - InstanceBuilderOption: a function that applies the extensions option to an instance
func WithExtensions(names ...string) InstanceBuilderOption {
	return func(i *instance) {
		for _, n := range names {
			i.requested.Add(n)
		}
	}
}

// WithRequiredExtensions requests extensions without which creation fails with ErrUnavailableExtensions.
//
// Parameters:
//   - names: extension names
//
// Returns:
//   - InstanceBuilderOption: a function that applies the required extensions option to an instance
func WithRequiredExtensions(names ...string) InstanceBuilderOption {
	return func(i *instance) {
		for _, n := range names {
			i.required.Add(n)
		}
	}
}

// WithAPILayers enables OpenXR API layers such as "XR_APILAYER_LUNARG_core_validation".
//
// Parameters:
//   - names: layer names
//
// Returns:
//   - InstanceBuilderOption: a function that applies the API layers option to an instance
func WithAPILayers(names ...string) InstanceBuilderOption {
	return func(i *instance) {
		i.layers = append(i.layers, names...)
	}
}

// WithFormFactor changes the form factor the system is queried for. Defaults to head-mounted.
//
// Parameters:
//   - ff: the form factor
//
// Returns:
//   - InstanceBuilderOption: a function that applies the form factor option to an instance
func WithFormFactor(ff openxr.FormFactor) InstanceBuilderOption {
	return func(i *instance) {
		i.formFactor = ff
	}
}
