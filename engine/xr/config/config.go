// Package config loads the XR preferences file. Every preference is optional;
// an unset list means the first value the runtime offers is used.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the root of the TOML file.
type Config struct {
	App AppConfig `toml:"app"`
	Log LogConfig `toml:"log"`
	XR  XRConfig  `toml:"xr"`
}

// AppConfig names the application to the runtime.
type AppConfig struct {
	Name    string `toml:"name"`
	Version uint32 `toml:"version"`
}

// LogConfig sets the root log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Resolution is a per-eye size preference.
type Resolution struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// XRConfig holds the negotiation preferences.
type XRConfig struct {
	Extensions         []string     `toml:"extensions"`
	RequiredExtensions []string     `toml:"required_extensions"`
	Backends           []string     `toml:"backends"`
	Formats            []string     `toml:"formats"`
	Resolutions        []Resolution `toml:"resolutions"`
	BlendModes         []string     `toml:"blend_modes"`
	ReferenceSpace     string       `toml:"reference_space"`
	Pipelined          bool         `toml:"pipelined"`
	ImageTimeout       Duration     `toml:"image_timeout"`
	HandTracking       *bool        `toml:"hand_tracking"`
}

// Duration is a time.Duration written as a string such as "10ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalid, b)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

var formatNames = map[string]wgpu.TextureFormat{
	"rgba8unorm":      wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": wgpu.TextureFormatRGBA8UnormSrgb,
	"bgra8unorm":      wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": wgpu.TextureFormatBGRA8UnormSrgb,
	"rgba16float":     wgpu.TextureFormatRGBA16Float,
	"rgb10a2unorm":    wgpu.TextureFormatRGB10A2Unorm,
}

var blendNames = map[string]openxr.EnvironmentBlendMode{
	"opaque":      openxr.BlendModeOpaque,
	"additive":    openxr.BlendModeAdditive,
	"alpha_blend": openxr.BlendModeAlphaBlend,
}

var spaceNames = map[string]openxr.ReferenceSpaceType{
	"local":       openxr.ReferenceSpaceLocal,
	"stage":       openxr.ReferenceSpaceStage,
	"local_floor": openxr.ReferenceSpaceLocalFloor,
	"unbounded":   openxr.ReferenceSpaceUnbounded,
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		App: AppConfig{Name: "oxy-xr app", Version: 1},
		Log: LogConfig{Level: "info"},
		XR:  XRConfig{ReferenceSpace: "stage"},
	}
}

// Load reads and validates a TOML file over the defaults.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the configuration
//   - error: the read, decode or validation failure
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the configuration
//   - error: the decode or validation failure
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every enumerated value.
func (c Config) Validate() error {
	var errs []error
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level))
		}
	}
	if _, err := c.Backends(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Formats(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BlendModes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ReferenceSpace(); err != nil {
		errs = append(errs, err)
	}
	for _, r := range c.XR.Resolutions {
		if r.Width == 0 || r.Height == 0 {
			errs = append(errs, fmt.Errorf("%w: resolution %dx%d", ErrInvalid, r.Width, r.Height))
		}
	}
	if c.XR.ImageTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: negative image timeout", ErrInvalid))
	}
	return errors.Join(errs...)
}

// Backends returns the preferred backends in order.
func (c Config) Backends() ([]graphics.BackendKind, error) {
	out := make([]graphics.BackendKind, 0, len(c.XR.Backends))
	for _, name := range c.XR.Backends {
		k, err := graphics.ParseBackendKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		out = append(out, k)
	}
	return out, nil
}

// Formats returns the preferred swapchain formats in order.
func (c Config) Formats() ([]wgpu.TextureFormat, error) {
	return lookup(c.XR.Formats, formatNames, "format")
}

// BlendModes returns the preferred blend modes in order.
func (c Config) BlendModes() ([]openxr.EnvironmentBlendMode, error) {
	return lookup(c.XR.BlendModes, blendNames, "blend mode")
}

// ReferenceSpace returns the wanted reference space type, STAGE when unset.
func (c Config) ReferenceSpace() (openxr.ReferenceSpaceType, error) {
	if c.XR.ReferenceSpace == "" {
		return openxr.ReferenceSpaceStage, nil
	}
	k, ok := spaceNames[c.XR.ReferenceSpace]
	if !ok {
		return 0, fmt.Errorf("%w: reference space %q", ErrInvalid, c.XR.ReferenceSpace)
	}
	return k, nil
}

// Resolutions returns the preferred per-eye resolutions in order.
func (c Config) Resolutions() []graphics.Resolution {
	out := make([]graphics.Resolution, len(c.XR.Resolutions))
	for i, r := range c.XR.Resolutions {
		out[i] = graphics.Resolution{Width: r.Width, Height: r.Height}
	}
	return out
}

// ImageTimeout returns the swapchain image wait bound, openxr.InfiniteDuration when unset.
func (c Config) ImageTimeout() openxr.Duration {
	if c.XR.ImageTimeout <= 0 {
		return openxr.InfiniteDuration
	}
	return openxr.Duration(time.Duration(c.XR.ImageTimeout).Nanoseconds())
}

// HandTracking reports whether hand trackers should be created, true when unset.
func (c Config) HandTracking() bool {
	return c.XR.HandTracking == nil || *c.XR.HandTracking
}

func lookup[T any](names []string, table map[string]T, what string) ([]T, error) {
	out := make([]T, 0, len(names))
	for _, n := range names {
		v, ok := table[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalid, what, n)
		}
		out = append(out, v)
	}
	return out, nil
}
