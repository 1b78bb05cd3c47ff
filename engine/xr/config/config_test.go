package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

const sample = `
[app]
name = "demo"
version = 3

[log]
level = "debug"

[xr]
extensions = ["XR_EXT_hand_tracking"]
backends = ["d3d12", "vulkan"]
formats = ["rgba8unorm-srgb"]
resolutions = [{ width = 2000, height = 2000 }]
blend_modes = ["alpha_blend", "opaque"]
reference_space = "local_floor"
pipelined = true
image_timeout = "25ms"
hand_tracking = false
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.App.Name != "demo" || c.App.Version != 3 {
		t.Errorf("app = %+v", c.App)
	}
	backends, _ := c.Backends()
	if !slices.Equal(backends, []graphics.BackendKind{graphics.D3D12, graphics.Vulkan}) {
		t.Errorf("backends = %v", backends)
	}
	formats, _ := c.Formats()
	if !slices.Equal(formats, []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb}) {
		t.Errorf("formats = %v", formats)
	}
	modes, _ := c.BlendModes()
	if !slices.Equal(modes, []openxr.EnvironmentBlendMode{openxr.BlendModeAlphaBlend, openxr.BlendModeOpaque}) {
		t.Errorf("blend modes = %v", modes)
	}
	if ref, _ := c.ReferenceSpace(); ref != openxr.ReferenceSpaceLocalFloor {
		t.Errorf("reference space = %s", ref)
	}
	if got := c.Resolutions(); len(got) != 1 || got[0] != (graphics.Resolution{Width: 2000, Height: 2000}) {
		t.Errorf("resolutions = %v", got)
	}
	if c.ImageTimeout() != openxr.Duration(25*time.Millisecond) {
		t.Errorf("image timeout = %d", c.ImageTimeout())
	}
	if !c.XR.Pipelined || c.HandTracking() {
		t.Errorf("pipelined = %v hand tracking = %v", c.XR.Pipelined, c.HandTracking())
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ref, _ := c.ReferenceSpace(); ref != openxr.ReferenceSpaceStage {
		t.Errorf("default reference space = %s", ref)
	}
	if c.ImageTimeout() != openxr.InfiniteDuration || !c.HandTracking() {
		t.Error("unset values not defaulted")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"backend", "[xr]\nbackends = [\"metal\"]"},
		{"format", "[xr]\nformats = [\"rgb565\"]"},
		{"blend mode", "[xr]\nblend_modes = [\"multiply\"]"},
		{"reference space", "[xr]\nreference_space = \"ceiling\""},
		{"resolution", "[xr]\nresolutions = [{ width = 0, height = 10 }]"},
		{"log level", "[log]\nlevel = \"loud\""},
		{"duration", "[xr]\nimage_timeout = \"soon\""},
		{"unknown key", "[xr]\nfoo = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("invalid document accepted")
			}
		})
	}

	_, err := Parse([]byte("[xr]\nbackends = [\"metal\"]"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xr.toml")
	if err := os.WriteFile(path, []byte("[app]\nname = \"one\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	if err := Watch(ctx, path, logger.Discard(), func(c Config) { got <- c }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := os.WriteFile(path, []byte("[app]\nname = \"two\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A write may surface as truncate then fill; wait for the final content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.App.Name == "two" {
				return
			}
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}
}
