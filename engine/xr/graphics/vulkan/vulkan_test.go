package vulkan

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/goki/vulkan"
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

func TestFormatKnownValues(t *testing.T) {
	b := New()
	if n, ok := b.ToNative(wgpu.TextureFormatRGBA8UnormSrgb); !ok || n != int64(vk.FormatR8g8b8a8Srgb) {
		t.Errorf("RGBA8UnormSrgb -> %d, %v", n, ok)
	}
	if n, ok := b.ToNative(wgpu.TextureFormatBGRA8UnormSrgb); !ok || n != xrtest.VkFormatB8G8R8A8Srgb {
		t.Errorf("BGRA8UnormSrgb -> %d, %v", n, ok)
	}
	if _, ok := b.FromNative(int64(vk.FormatR64Sfloat)); ok {
		t.Error("64-bit float format has no portable equivalent")
	}
	if _, ok := b.ToNative(wgpu.TextureFormatUndefined); ok {
		t.Error("undefined format mapped to a native value")
	}
}

func TestRequiredExtensions(t *testing.T) {
	req := New().RequiredExtensions()
	if !req.Has(openxr.ExtKHRVulkanEnable) || req.Len() != 1 {
		t.Errorf("RequiredExtensions = %v", req.Names())
	}
}

func TestPickAPIVersion(t *testing.T) {
	v := openxr.MakeVersion
	cases := []struct {
		name string
		reqs openxr.VulkanGraphicsRequirements
		want openxr.Version
	}{
		{"preferred inside range", openxr.VulkanGraphicsRequirements{MinAPIVersionSupported: v(1, 0, 0), MaxAPIVersionSupported: v(1, 3, 0)}, v(1, 1, 0)},
		{"capped by max", openxr.VulkanGraphicsRequirements{MinAPIVersionSupported: v(1, 0, 0), MaxAPIVersionSupported: v(1, 0, 9)}, v(1, 0, 0)},
		{"raised to min", openxr.VulkanGraphicsRequirements{MinAPIVersionSupported: v(1, 2, 0), MaxAPIVersionSupported: v(1, 3, 0)}, v(1, 2, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pickAPIVersion(tc.reqs); got != tc.want {
				t.Errorf("pickAPIVersion = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestVkVersionPacking(t *testing.T) {
	v := openxr.MakeVersion(1, 3, 250)
	packed := toVkVersion(v)
	if packed != uint32(vk.MakeVersion(1, 3, 250)) {
		t.Errorf("toVkVersion = %#x", packed)
	}
	if back := fromVkVersion(packed); back != v {
		t.Errorf("fromVkVersion = %s, want %s", back, v)
	}
}

func TestMergeNamesKeepsOrderAndDedupes(t *testing.T) {
	got := mergeNames([]string{"a", "b"}, "b", "c", "")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("mergeNames = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mergeNames = %v, want %v", got, want)
		}
	}
}

func TestImportRejectsD3D12Device(t *testing.T) {
	dev := graphics.NewDevice(graphics.D3D12, nil)
	_, err := New().ImportSwapchainImage(1, dev, wgpu.TextureFormatRGBA8UnormSrgb, graphics.Resolution{Width: 2, Height: 2}, 2)
	var mismatch *graphics.BackendMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want mismatch", err)
	}
}

func TestInitGraphicsNeedsVulkanRuntime(t *testing.T) {
	rt := xrtest.CoreOnly{Runtime: xrtest.New()}
	_, _, err := New().InitGraphics(graphics.AppInfo{Name: "t"}, rt, 1, 1)
	if !errors.Is(err, graphics.ErrMissingRuntimeExtension) {
		t.Fatalf("err = %v, want ErrMissingRuntimeExtension", err)
	}
}

// fakeViews hands out increasing view handles and records destroyed ones.
type fakeViews struct {
	next      uintptr
	created   []viewDesc
	destroyed []uintptr
	failAt    int
}

func (f *fakeViews) install(b *backend) {
	f.next = 0x1000
	b.createView = func(device uintptr, image uint64, format vk.Format, d viewDesc) (uintptr, error) {
		if f.failAt > 0 && len(f.created) == f.failAt {
			return 0, errors.New("out of device memory")
		}
		f.created = append(f.created, d)
		f.next++
		return f.next, nil
	}
	b.destroyView = func(device, view uintptr) {
		f.destroyed = append(f.destroyed, view)
	}
}

func TestImageViewsCoverArrayAndEachLayer(t *testing.T) {
	got := imageViews(2)
	want := []viewDesc{
		{viewType: vk.ImageViewType2dArray, baseLayer: 0, layerCount: 2},
		{viewType: vk.ImageViewType2d, baseLayer: 0, layerCount: 1},
		{viewType: vk.ImageViewType2d, baseLayer: 1, layerCount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("imageViews(2) = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("view %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImportCreatesViewsOwnedByTexture(t *testing.T) {
	// Given a Vulkan backend whose view creation is recorded
	b := New().(*backend)
	views := &fakeViews{}
	views.install(b)
	dev := graphics.NewDevice(graphics.Vulkan, nil)

	// When a two-layer swapchain image is imported
	tex, err := b.ImportSwapchainImage(7, dev, wgpu.TextureFormatRGBA8UnormSrgb, graphics.Resolution{Width: 4, Height: 4}, 2)
	if err != nil {
		t.Fatalf("ImportSwapchainImage: %v", err)
	}

	// Then the texture carries an array view and one view per eye
	if tex.Native != 7 || tex.View == 0 || len(tex.LayerViews) != 2 {
		t.Fatalf("texture = %+v", tex)
	}
	if right, ok := tex.LayerView(1); !ok || right == tex.View {
		t.Errorf("LayerView(1) = %#x, %v", right, ok)
	}
	if _, ok := tex.LayerView(2); ok {
		t.Error("LayerView(2) exists on a two-layer image")
	}

	// And releasing the texture destroys exactly those views, once
	tex.Release()
	tex.Release()
	if len(views.destroyed) != 3 {
		t.Fatalf("destroyed %d views, want 3", len(views.destroyed))
	}
	if tex.View != 0 || tex.LayerViews != nil {
		t.Errorf("texture still references views after release: %+v", tex)
	}
}

func TestImportDestroysPartialViewsOnFailure(t *testing.T) {
	// Given a backend that fails on the third view
	b := New().(*backend)
	views := &fakeViews{failAt: 2}
	views.install(b)
	dev := graphics.NewDevice(graphics.Vulkan, nil)

	// When an image is imported
	_, err := b.ImportSwapchainImage(7, dev, wgpu.TextureFormatRGBA8UnormSrgb, graphics.Resolution{Width: 4, Height: 4}, 2)

	// Then the error surfaces and the two views already created are destroyed
	if err == nil {
		t.Fatal("import succeeded although view creation failed")
	}
	if len(views.destroyed) != 2 {
		t.Errorf("destroyed %d views, want 2", len(views.destroyed))
	}
}
