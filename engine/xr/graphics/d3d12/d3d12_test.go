package d3d12

import (
	"errors"
	"runtime"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestFormatRoundTrip(t *testing.T) {
	b := New()
	for _, f := range formats.Portable() {
		n, ok := b.ToNative(f)
		if !ok {
			t.Fatalf("ToNative(%v) not ok for a listed format", f)
		}
		back, ok := b.FromNative(n)
		if !ok || back != f {
			t.Errorf("FromNative(ToNative(%v)) = %v, %v", f, back, ok)
		}
	}
}

func TestFormatUnmappedIsConsistent(t *testing.T) {
	b := New()
	// Depth24Plus has no exact DXGI equivalent
	if _, ok := b.ToNative(wgpu.TextureFormatDepth24Plus); ok {
		t.Error("Depth24Plus mapped to a native format")
	}
	if _, ok := b.FromNative(int64(dxgiFormatR9G9B9E5SharedExp)); ok {
		t.Error("shared-exponent format mapped to a portable format")
	}
	if _, ok := b.FromNative(int64(dxgiFormatUnknown)); ok {
		t.Error("DXGI_FORMAT_UNKNOWN mapped to a portable format")
	}
}

func TestKnownValues(t *testing.T) {
	b := New()
	if n, ok := b.ToNative(wgpu.TextureFormatRGBA8UnormSrgb); !ok || n != 29 {
		t.Errorf("RGBA8UnormSrgb -> %d, %v; want 29", n, ok)
	}
	if n, ok := b.ToNative(wgpu.TextureFormatBGRA8UnormSrgb); !ok || n != 91 {
		t.Errorf("BGRA8UnormSrgb -> %d, %v; want 91", n, ok)
	}
}

func TestFeatureLevelVersion(t *testing.T) {
	if got := featureLevelVersion(featureLevel12_1); got != openxr.MakeVersion(12, 1, 0) {
		t.Errorf("featureLevelVersion(12_1) = %s", got)
	}
	if got := featureLevelVersion(featureLevel11_0); got != openxr.MakeVersion(11, 0, 0) {
		t.Errorf("featureLevelVersion(11_0) = %s", got)
	}
}

func TestCandidateLevelsHonourMinimum(t *testing.T) {
	got := candidateLevels(featureLevel12_0)
	want := []uint32{featureLevel12_2, featureLevel12_1, featureLevel12_0}
	if !slices.Equal(got, want) {
		t.Errorf("candidateLevels = %#x, want %#x", got, want)
	}
}

func TestInitGraphicsOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("opens a real device on windows")
	}
	_, _, err := New().InitGraphics(graphics.AppInfo{Name: "t"}, xrtest.New(), 1, 1)
	if !errors.Is(err, graphics.ErrUnsupportedPlatform) {
		t.Fatalf("err = %v, want ErrUnsupportedPlatform", err)
	}
}

func TestInitGraphicsNeedsD3D12Runtime(t *testing.T) {
	_, _, err := New().InitGraphics(graphics.AppInfo{Name: "t"}, xrtest.CoreOnly{Runtime: xrtest.New()}, 1, 1)
	if !errors.Is(err, graphics.ErrMissingRuntimeExtension) {
		t.Fatalf("err = %v, want ErrMissingRuntimeExtension", err)
	}
}
