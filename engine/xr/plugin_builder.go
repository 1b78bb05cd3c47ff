package xr

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/config"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/charmbracelet/log"
)

// PluginBuilderOption is a functional option applied by NewPlugin.
type PluginBuilderOption func(*plugin)

// WithLogger sets the logger for the plugin and everything it creates. A nil logger is ignored.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithLogger(l *log.Logger) PluginBuilderOption {
	return func(p *plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConfig replaces the default configuration.
//
// Parameters:
//   - cfg: a validated configuration
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithConfig(cfg config.Config) PluginBuilderOption {
	return func(p *plugin) {
		p.cfg = cfg
	}
}

// WithConfigFile loads the configuration from a TOML file at Install. A missing
// file keeps the defaults.
//
// Parameters:
//   - path: the file path
//   - watch: reload the file when it changes
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithConfigFile(path string, watch bool) PluginBuilderOption {
	return func(p *plugin) {
		p.configPath = path
		p.watchConfig = watch
	}
}

// WithRuntime sets the OpenXR function table instead of the system loader.
//
// Parameters:
//   - rt: the runtime
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithRuntime(rt openxr.Runtime) PluginBuilderOption {
	return func(p *plugin) {
		p.runtime = rt
	}
}

// WithBackends sets the graphics backends the instance may bind to.
// Defaults to Vulkan and D3D12.
//
// Parameters:
//   - backends: the candidate backends
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithBackends(backends ...graphics.Backend) PluginBuilderOption {
	return func(p *plugin) {
		p.backends = backends
	}
}

// WithPreferredBackends orders backend selection. Overrides the config file.
//
// Parameters:
//   - kinds: backend kinds, most preferred first
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithPreferredBackends(kinds ...graphics.BackendKind) PluginBuilderOption {
	return func(p *plugin) {
		p.preferred = kinds
	}
}

// WithExtensions requests optional extensions in addition to the config file's.
//
// Parameters:
//   - names: extension names
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithExtensions(names ...string) PluginBuilderOption {
	return func(p *plugin) {
		p.extensions = append(p.extensions, names...)
	}
}

// WithRequiredExtensions requests extensions without which XR stays unavailable.
//
// Parameters:
//   - names: extension names
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithRequiredExtensions(names ...string) PluginBuilderOption {
	return func(p *plugin) {
		p.required = append(p.required, names...)
	}
}

// WithAutoCreate sets whether the first session is created without a CreateSession call.
// Defaults to true.
//
// Parameters:
//   - auto: create the first session on install
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithAutoCreate(auto bool) PluginBuilderOption {
	return func(p *plugin) {
		p.autoCreate = auto
	}
}

// WithRenderFunc sets the function drawing each headset frame.
//
// Parameters:
//   - fn: the render function
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithRenderFunc(fn RenderFunc) PluginBuilderOption {
	return func(p *plugin) {
		p.render = fn
	}
}

// WithFlatRenderFunc sets the function drawing each window frame while no session runs.
//
// Parameters:
//   - fn: the render function
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithFlatRenderFunc(fn FlatRenderFunc) PluginBuilderOption {
	return func(p *plugin) {
		p.flatRender = fn
	}
}

// WithFlatRendererOptions passes options to the window renderer.
//
// Parameters:
//   - options: renderer options
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithFlatRendererOptions(options ...renderer.RendererBuilderOption) PluginBuilderOption {
	return func(p *plugin) {
		p.flatOptions = append(p.flatOptions, options...)
	}
}

// WithCameraOptions configures the eye cameras, typically their clip planes.
//
// Parameters:
//   - options: camera options
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithCameraOptions(options ...camera.CameraBuilderOption) PluginBuilderOption {
	return func(p *plugin) {
		p.cameraOptions = append(p.cameraOptions, options...)
	}
}

// WithFlatView places the camera the window is drawn with while no session runs.
//
// Parameters:
//   - eye: the camera position
//   - target: the point looked at
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithFlatView(eye, target [3]float32) PluginBuilderOption {
	return func(p *plugin) {
		p.flatView = [2][3]float32{eye, target}
	}
}

// WithSessionOptions passes options to every session. They override the config file.
//
// Parameters:
//   - options: session options
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithSessionOptions(options ...session.SessionBuilderOption) PluginBuilderOption {
	return func(p *plugin) {
		p.sessionOptions = append(p.sessionOptions, options...)
	}
}

// WithTrackerWorkers sets the number of workers locating tracked spaces.
//
// Parameters:
//   - n: the worker count; values below 1 keep the default
//
// Returns:
//   - PluginBuilderOption: a function that applies the option to a plugin
func WithTrackerWorkers(n int) PluginBuilderOption {
	return func(p *plugin) {
		p.workers = n
	}
}
