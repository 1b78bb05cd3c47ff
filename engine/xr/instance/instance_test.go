package instance

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
)

func newTestInstance(t *testing.T, rt *xrtest.Runtime, options ...InstanceBuilderOption) Instance {
	t.Helper()
	opts := append([]InstanceBuilderOption{
		WithLogger(logger.Discard()),
		WithBackends(graphicstest.New(graphics.Vulkan), graphicstest.New(graphics.D3D12)),
	}, options...)
	inst, err := New(rt, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return inst
}

func TestNewSelectsFirstUsableBackend(t *testing.T) {
	// Given a runtime exposing only the D3D12 binding
	rt := xrtest.New()
	rt.Extensions = []openxr.ExtensionProperties{{Name: openxr.ExtKHRD3D12Enable.Name()}}

	// When the preference lists Vulkan first
	inst := newTestInstance(t, rt, WithPreferredBackends(graphics.Vulkan, graphics.D3D12))

	// Then D3D12 is chosen and its extension enabled
	if inst.Backend().Kind() != graphics.D3D12 {
		t.Fatalf("backend = %s, want d3d12", inst.Backend().Kind())
	}
	if !slices.Contains(rt.InstanceCreateInfo.Extensions, openxr.ExtKHRD3D12Enable.Name()) {
		t.Errorf("enabled extensions %v lack the D3D12 binding", rt.InstanceCreateInfo.Extensions)
	}
}

func TestNewNoBackend(t *testing.T) {
	rt := xrtest.New()
	rt.Extensions = []openxr.ExtensionProperties{{Name: openxr.ExtEXTHandTracking.Name()}}

	_, err := New(rt, WithLogger(logger.Discard()), WithBackends(graphicstest.New(graphics.Vulkan)))
	if !errors.Is(err, graphics.ErrNoAvailableBackend) {
		t.Fatalf("err = %v, want ErrNoAvailableBackend", err)
	}
	if rt.Count("CreateInstance") != 0 {
		t.Error("instance created although negotiation failed")
	}
}

func TestNewSkipsUnavailableOptionalExtensions(t *testing.T) {
	rt := xrtest.New()
	inst := newTestInstance(t, rt, WithExtensions("XR_FB_passthrough", openxr.ExtEXTHandTracking.Name()))

	names := rt.InstanceCreateInfo.Extensions
	if slices.Contains(names, "XR_FB_passthrough") {
		t.Error("unavailable extension passed to CreateInstance")
	}
	if !inst.Extensions().Has(openxr.ExtEXTHandTracking) {
		t.Error("hand tracking not enabled")
	}
}

func TestNewRequiredExtensionMissing(t *testing.T) {
	rt := xrtest.New()
	_, err := New(rt,
		WithLogger(logger.Discard()),
		WithBackends(graphicstest.New(graphics.Vulkan)),
		WithRequiredExtensions("XR_FB_passthrough"),
	)
	if !errors.Is(err, ErrUnavailableExtensions) {
		t.Fatalf("err = %v, want ErrUnavailableExtensions", err)
	}
}

func TestNewNoSystemDestroysInstance(t *testing.T) {
	rt := xrtest.New()
	rt.NoSystem = true

	_, err := New(rt, WithLogger(logger.Discard()), WithBackends(graphicstest.New(graphics.Vulkan)))

	var res openxr.Result
	if !errors.As(err, &res) || res != openxr.ErrorFormFactorUnavailable {
		t.Fatalf("err = %v, want XR_ERROR_FORM_FACTOR_UNAVAILABLE", err)
	}
	if rt.Count("DestroyInstance") != 1 {
		t.Error("instance leaked after system lookup failed")
	}
}

func TestInitGraphics(t *testing.T) {
	rt := xrtest.New()
	inst := newTestInstance(t, rt, WithPreferredBackends(graphics.Vulkan))

	dev, binding, err := inst.InitGraphics()
	if err != nil {
		t.Fatalf("InitGraphics: %v", err)
	}
	defer dev.Release()
	if binding.GraphicsAPI() != openxr.GraphicsAPIVulkan {
		t.Errorf("binding api = %s", binding.GraphicsAPI())
	}
	if dev.Adapter != xrtest.FakeVkPhysicalDevice {
		t.Errorf("adapter = %#x, want the runtime's physical device", dev.Adapter)
	}
}

func TestInitGraphicsRequirementsFailure(t *testing.T) {
	rt := xrtest.New()
	rt.VulkanRequirements.MinAPIVersionSupported = openxr.MakeVersion(1, 4, 0)
	rt.VulkanRequirements.MaxAPIVersionSupported = openxr.MakeVersion(1, 4, 0)
	inst := newTestInstance(t, rt, WithPreferredBackends(graphics.Vulkan))

	_, _, err := inst.InitGraphics()
	var req *graphics.RequirementsError
	if !errors.As(err, &req) {
		t.Fatalf("err = %v, want *graphics.RequirementsError", err)
	}
	if req.Min != openxr.MakeVersion(1, 4, 0) {
		t.Errorf("Min = %s", req.Min)
	}
}

func TestCheckBackend(t *testing.T) {
	inst := newTestInstance(t, xrtest.New(), WithPreferredBackends(graphics.Vulkan))

	if err := inst.CheckBackend(graphics.Vulkan); err != nil {
		t.Errorf("same backend rejected: %v", err)
	}
	var mm *graphics.BackendMismatchError
	if err := inst.CheckBackend(graphics.D3D12); !errors.As(err, &mm) {
		t.Fatalf("err = %v, want *BackendMismatchError", err)
	}
	if mm.Expected != graphics.Vulkan || mm.Actual != graphics.D3D12 {
		t.Errorf("mismatch = %+v", mm)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	rt := xrtest.New()
	inst := newTestInstance(t, rt)

	if err := inst.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := inst.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if rt.Count("DestroyInstance") != 1 {
		t.Errorf("DestroyInstance called %d times", rt.Count("DestroyInstance"))
	}
	if inst.Valid() {
		t.Error("destroyed instance reports valid")
	}
	if _, _, err := inst.InitGraphics(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("InitGraphics after destroy: %v", err)
	}
}

func TestMarkLost(t *testing.T) {
	inst := newTestInstance(t, xrtest.New())
	inst.MarkLost()
	if inst.Valid() {
		t.Error("lost instance reports valid")
	}
}

func TestAppInfoForwarded(t *testing.T) {
	rt := xrtest.New()
	newTestInstance(t, rt, WithAppInfo(graphics.AppInfo{Name: "demo", Version: 7}))

	app := rt.InstanceCreateInfo.ApplicationInfo
	if app.ApplicationName != "demo" || app.ApplicationVersion != 7 || app.EngineName != EngineName {
		t.Errorf("application info = %+v", app)
	}
}
