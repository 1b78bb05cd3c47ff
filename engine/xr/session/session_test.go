package session

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/instance"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
	"github.com/cogentcore/webgpu/wgpu"
)

func newTestInstance(t *testing.T, rt *xrtest.Runtime) instance.Instance {
	t.Helper()
	inst, err := instance.New(rt,
		instance.WithLogger(logger.Discard()),
		instance.WithBackends(graphicstest.New(graphics.Vulkan)),
		instance.WithExtensions(openxr.ExtEXTHandTracking.Name()),
	)
	if err != nil {
		t.Fatalf("instance.New: %v", err)
	}
	return inst
}

func newTestSession(t *testing.T, rt *xrtest.Runtime, options ...SessionBuilderOption) (Session, instance.Instance) {
	t.Helper()
	inst := newTestInstance(t, rt)
	dev, binding, err := inst.InitGraphics()
	if err != nil {
		t.Fatalf("InitGraphics: %v", err)
	}
	s, err := Create(inst, dev, binding, append([]SessionBuilderOption{WithLogger(logger.Discard())}, options...)...)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return s, inst
}

func TestSelectResolution(t *testing.T) {
	views := []openxr.ViewConfigurationView{{
		RecommendedImageRectWidth: 1440, RecommendedImageRectHeight: 1600,
		MaxImageRectWidth: 2880, MaxImageRectHeight: 3200,
	}}
	recommended := graphics.Resolution{Width: 1440, Height: 1600}

	tests := []struct {
		name      string
		preferred []graphics.Resolution
		want      graphics.Resolution
	}{
		{"no preference", nil, recommended},
		{"recommended wins over earlier fit", []graphics.Resolution{{Width: 1000, Height: 1000}, recommended}, recommended},
		{"first fitting preference", []graphics.Resolution{{Width: 4000, Height: 4000}, {Width: 2000, Height: 2200}}, graphics.Resolution{Width: 2000, Height: 2200}},
		{"nothing fits", []graphics.Resolution{{Width: 4000, Height: 100}}, recommended},
		{"zero ignored", []graphics.Resolution{{}}, recommended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectResolution(views, tt.preferred)
			if err != nil {
				t.Fatalf("SelectResolution: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	oversized := []openxr.ViewConfigurationView{{
		RecommendedImageRectWidth: 4096, RecommendedImageRectHeight: 1600,
		MaxImageRectWidth: 2880, MaxImageRectHeight: 3200,
	}}
	if got, _ := SelectResolution(oversized, nil); got != (graphics.Resolution{Width: 2880, Height: 1600}) {
		t.Errorf("recommended beyond max = %s, want clamped to 2880x1600", got)
	}

	if _, err := SelectResolution(nil, nil); !errors.Is(err, ErrNoAvailableViewConfiguration) {
		t.Errorf("empty views err = %v", err)
	}
}

func TestSelectViewConfiguration(t *testing.T) {
	stereoAndMono := []openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryMono, openxr.ViewConfigurationPrimaryStereo}

	got, err := SelectViewConfiguration(stereoAndMono, nil)
	if err != nil || got != openxr.ViewConfigurationPrimaryStereo {
		t.Errorf("default = %s, %v; want stereo", got, err)
	}
	got, err = SelectViewConfiguration(stereoAndMono, []openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryMono})
	if err != nil || got != openxr.ViewConfigurationPrimaryMono {
		t.Errorf("mono preference = %s, %v", got, err)
	}
	if _, err := SelectViewConfiguration([]openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryMono}, nil); !errors.Is(err, ErrNoAvailableViewConfiguration) {
		t.Errorf("mono-only system err = %v", err)
	}
}

func TestSelectFormat(t *testing.T) {
	backend := graphicstest.New(graphics.Vulkan)
	available := PortableFormats(backend, []int64{xrtest.VkFormatB8G8R8A8Srgb, 9999, xrtest.VkFormatR8G8B8A8Srgb})
	if len(available) != 2 {
		t.Fatalf("portable formats = %v, want the unknown native value dropped", available)
	}

	tests := []struct {
		name      string
		preferred []wgpu.TextureFormat
		want      wgpu.TextureFormat
	}{
		{"runtime order", nil, wgpu.TextureFormatBGRA8UnormSrgb},
		{"preference honored", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb}, wgpu.TextureFormatRGBA8UnormSrgb},
		{"missing preference", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatBGRA8UnormSrgb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFormat(available, tt.preferred)
			if err != nil || got != tt.want {
				t.Errorf("got %v, %v; want %v", got, err, tt.want)
			}
		})
	}

	if _, err := SelectFormat(nil, nil); !errors.Is(err, ErrNoAvailableFormat) {
		t.Errorf("empty err = %v", err)
	}
	if _, err := SelectBlendMode(nil, nil); !errors.Is(err, ErrNoAvailableBlendMode) {
		t.Errorf("empty blend modes err = %v", err)
	}
}

func TestCreateNegotiatesStereoSwapchain(t *testing.T) {
	// Given the default fake HMD
	rt := xrtest.New()

	// When a session is created without preferences
	s, _ := newTestSession(t, rt)

	// Then the swapchain is one two-layer texture array per image at the recommended size
	info := rt.SwapchainCreateInfo
	if info.ArraySize != 2 || info.Width != 1440 || info.Height != 1600 {
		t.Errorf("swapchain %dx%d x%d, want 1440x1600 x2", info.Width, info.Height, info.ArraySize)
	}
	if info.Format != xrtest.VkFormatB8G8R8A8Srgb {
		t.Errorf("native format = %d, want runtime's first", info.Format)
	}
	textures := s.Swapchain().Textures()
	if len(textures) != rt.SwapchainImageCount {
		t.Fatalf("imported %d textures, want %d", len(textures), rt.SwapchainImageCount)
	}
	for _, tex := range textures {
		if tex.Backend != graphics.Vulkan || tex.ArrayLayers != 2 || tex.Format != wgpu.TextureFormatBGRA8UnormSrgb {
			t.Errorf("texture %+v", tex)
		}
	}
	if s.ReferenceSpaceType() != openxr.ReferenceSpaceStage {
		t.Errorf("reference space = %s, want STAGE", s.ReferenceSpaceType())
	}
	if s.ViewSpace().IsNull() {
		t.Error("view space not created")
	}
	if !s.Hands().Enabled() {
		t.Error("hand tracking not enabled although the extension is")
	}
	if s.BlendMode() != openxr.BlendModeOpaque {
		t.Errorf("blend mode = %s", s.BlendMode())
	}
}

func TestCreateStageFallsBackToLocal(t *testing.T) {
	rt := xrtest.New()
	rt.ReferenceSpaces = []openxr.ReferenceSpaceType{openxr.ReferenceSpaceView, openxr.ReferenceSpaceLocal}

	s, _ := newTestSession(t, rt)

	if s.ReferenceSpaceType() != openxr.ReferenceSpaceLocal {
		t.Errorf("reference space = %s, want LOCAL", s.ReferenceSpaceType())
	}
}

func TestCreateRejectsForeignDevice(t *testing.T) {
	// Given a Vulkan instance
	rt := xrtest.New()
	inst := newTestInstance(t, rt)

	// When a D3D12 device is handed to session creation
	dev := graphics.NewDevice(graphics.D3D12, nil)
	_, err := Create(inst, dev, openxr.D3D12Binding{}, WithLogger(logger.Discard()))

	// Then a backend mismatch is reported and no session is created
	var mismatch *graphics.BackendMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want BackendMismatchError", err)
	}
	if rt.Count("CreateSession") != 0 {
		t.Error("session created with a foreign device")
	}
}

func TestCreateWithoutFormatDestroysSession(t *testing.T) {
	rt := xrtest.New()
	rt.SwapchainFormats = []int64{9999}
	inst := newTestInstance(t, rt)
	dev, binding, err := inst.InitGraphics()
	if err != nil {
		t.Fatal(err)
	}

	_, err = Create(inst, dev, binding, WithLogger(logger.Discard()))

	if !errors.Is(err, ErrNoAvailableFormat) {
		t.Fatalf("err = %v, want ErrNoAvailableFormat", err)
	}
	if rt.Count("DestroySession") != 1 {
		t.Error("half-built session not destroyed")
	}
}

func TestSwapchainImageOrdering(t *testing.T) {
	rt := xrtest.New()
	s, _ := newTestSession(t, rt)
	sc := s.Swapchain()

	if err := sc.Wait(openxr.InfiniteDuration); !errors.Is(err, ErrNoImageAcquired) {
		t.Errorf("wait before acquire err = %v", err)
	}
	idx, err := sc.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Acquire(); !errors.Is(err, ErrImageAlreadyAcquired) {
		t.Errorf("second acquire err = %v", err)
	}
	if err := sc.Release(); !errors.Is(err, ErrImageNotWaited) {
		t.Errorf("release before wait err = %v", err)
	}

	rt.FailOnce("WaitSwapchainImage", openxr.TimeoutExpired)
	if err := sc.Wait(1000); !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("timed out wait err = %v", err)
	}
	if got, ok := sc.Acquired(); !ok || got != idx {
		t.Errorf("image lost after timeout: %d %v", got, ok)
	}
	if err := sc.Wait(openxr.InfiniteDuration); err != nil {
		t.Fatal(err)
	}
	if err := sc.Release(); err != nil {
		t.Fatal(err)
	}
	if _, ok := sc.Acquired(); ok {
		t.Error("image still acquired after release")
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	rt := xrtest.New()
	s, _ := newTestSession(t, rt)

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}

	if rt.LiveSpaces() != 0 {
		t.Errorf("%d spaces leaked", rt.LiveSpaces())
	}
	for method, want := range map[string]int{"DestroySession": 1, "DestroySwapchain": 1, "DestroyHandTracker": 2} {
		if got := rt.Count(method); got != want {
			t.Errorf("%s called %d times, want %d", method, got, want)
		}
	}
	if err := s.Begin(); !errors.Is(err, ErrSessionDestroyed) {
		t.Errorf("Begin after destroy err = %v", err)
	}
}

func newViewCountingSession(t *testing.T, rt *xrtest.Runtime, backend *graphicstest.Backend) (Session, error) {
	t.Helper()
	inst, err := instance.New(rt,
		instance.WithLogger(logger.Discard()),
		instance.WithBackends(backend),
	)
	if err != nil {
		t.Fatalf("instance.New: %v", err)
	}
	dev, binding, err := inst.InitGraphics()
	if err != nil {
		t.Fatalf("InitGraphics: %v", err)
	}
	return Create(inst, dev, binding, WithLogger(logger.Discard()))
}

func TestSwapchainViewsLiveUntilDestroy(t *testing.T) {
	// Given a session whose backend counts live image views
	rt := xrtest.New()
	backend := graphicstest.New(graphics.Vulkan)
	s, err := newViewCountingSession(t, rt, backend)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Then every image has an array view and one view per eye
	want := rt.SwapchainImageCount * 3
	if backend.Views != want {
		t.Fatalf("%d views alive, want %d", backend.Views, want)
	}
	for _, tex := range s.Swapchain().Textures() {
		if tex.View == 0 || len(tex.LayerViews) != 2 {
			t.Errorf("texture without views: %+v", tex)
		}
	}

	// When the session is destroyed
	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Then no view outlives the swapchain
	if backend.Views != 0 {
		t.Errorf("%d views leaked", backend.Views)
	}
}

func TestImportFailureReleasesEarlierViews(t *testing.T) {
	// Given a backend that fails importing the second image
	rt := xrtest.New()
	backend := graphicstest.New(graphics.Vulkan)
	backend.FailImport = 1

	// When a session is created
	_, err := newViewCountingSession(t, rt, backend)

	// Then creation fails and the first image's views are gone with the swapchain
	if err == nil {
		t.Fatal("Create succeeded although an import failed")
	}
	if backend.Views != 0 {
		t.Errorf("%d views leaked", backend.Views)
	}
	if rt.Count("DestroySwapchain") != 1 {
		t.Errorf("DestroySwapchain called %d times, want 1", rt.Count("DestroySwapchain"))
	}
}
