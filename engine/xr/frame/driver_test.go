package frame

import (
	"errors"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/instance"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
)

func newRunningSession(t *testing.T, rt *xrtest.Runtime) session.Session {
	t.Helper()
	inst, err := instance.New(rt, instance.WithLogger(logger.Discard()), instance.WithBackends(graphicstest.New(graphics.Vulkan)))
	if err != nil {
		t.Fatalf("instance.New: %v", err)
	}
	dev, binding, err := inst.InitGraphics()
	if err != nil {
		t.Fatalf("InitGraphics: %v", err)
	}
	s, err := session.Create(inst, dev, binding, session.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("session.Create: %v", err)
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return s
}

func newTestDriver(t *testing.T, rt *xrtest.Runtime, options ...DriverBuilderOption) Driver {
	t.Helper()
	s := newRunningSession(t, rt)
	return NewDriver(s, append([]DriverBuilderOption{WithLogger(logger.Discard())}, options...)...)
}

func TestRunFollowsFrameOrder(t *testing.T) {
	// Given a running session
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	rt.ResetCalls()

	// When one frame is waited and run
	fs, err := d.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	var rendered *Frame
	if err := d.Run(func(f *Frame) error { rendered = f; return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Then every native call happens once, in order
	want := []string{"WaitFrame", "BeginFrame", "AcquireSwapchainImage", "WaitSwapchainImage", "LocateViews", "ReleaseSwapchainImage", "EndFrame"}
	if got := rt.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v\nwant    %v", got, want)
	}

	// And the render callback saw the acquired texture and both eyes
	if rendered == nil || rendered.Texture == nil || len(rendered.Views) != 2 {
		t.Fatalf("rendered frame = %+v", rendered)
	}
	if rendered.Number != 1 {
		t.Errorf("frame number = %d, want 1", rendered.Number)
	}

	// And a stereo projection layer was submitted at the predicted time
	end := rt.LastFrameEnd
	if end.DisplayTime != fs.PredictedDisplayTime {
		t.Errorf("display time = %d, want %d", end.DisplayTime, fs.PredictedDisplayTime)
	}
	if len(end.Layers) != 1 {
		t.Fatalf("submitted %d layers, want 1", len(end.Layers))
	}
	proj, ok := end.Layers[0].(*openxr.CompositionLayerProjection)
	if !ok || len(proj.Views) != 2 {
		t.Fatalf("layer = %#v", end.Layers[0])
	}
	for i, v := range proj.Views {
		if v.SubImage.ImageArrayIndex != uint32(i) || v.SubImage.ImageRect.Extent.Width != 1440 {
			t.Errorf("view %d sub image = %+v", i, v.SubImage)
		}
	}
	if got := d.Stats(); got.Frames != 1 || got.Rendered != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestOutOfOrderCallsNeverReachRuntime(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	rt.ResetCalls()

	tests := []struct {
		name string
		call func() error
	}{
		{"begin before wait", d.Begin},
		{"release before acquire", d.Release},
		{"end before begin", func() error { return d.End(nil) }},
		{"acquire before begin", func() error { _, err := d.Acquire(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, ErrOutOfOrder) {
				t.Fatalf("err = %v, want ErrOutOfOrder", err)
			}
			var fe *Error
			if !errors.As(err, &fe) || fe.Fatal {
				t.Errorf("err %v is not a non-fatal *Error", err)
			}
		})
	}
	if len(rt.Calls()) != 0 {
		t.Errorf("runtime saw %v", rt.Calls())
	}

	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Wait(); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("second wait err = %v", err)
	}
	if rt.Count("WaitFrame") != 1 {
		t.Errorf("WaitFrame called %d times", rt.Count("WaitFrame"))
	}
}

func TestEndDropsLayersOfAnotherBackend(t *testing.T) {
	// Given a Vulkan session and a provider contributing a D3D12 quad
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	d.Providers().Register("hud", LayerProviderFunc(func(*Frame) []Layer {
		return []Layer{{
			Backend: graphics.D3D12,
			Layer:   &openxr.CompositionLayerQuad{SubImage: openxr.SwapchainSubImage{Swapchain: 0xdead}},
		}}
	}))

	// When the frame runs with both layers
	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	err := d.Run(nil)

	// Then the foreign layer is dropped and the frame still ends
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Count("EndFrame") != 1 {
		t.Fatal("frame not ended")
	}
	if n := len(rt.LastFrameEnd.Layers); n != 1 {
		t.Fatalf("submitted %d layers, want 1", n)
	}
	if _, ok := rt.LastFrameEnd.Layers[0].(*openxr.CompositionLayerProjection); !ok {
		t.Error("surviving layer is not the projection")
	}
	if got := d.Stats().DroppedLayers; got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
}

func TestRenderFailureStillEndsFrame(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	boom := errors.New("boom")

	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	err := d.Run(func(*Frame) error { return boom })

	var fe *Error
	if !errors.As(err, &fe) || fe.Stage != StageRender || fe.Fatal || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want non-fatal render error", err)
	}
	if rt.Count("ReleaseSwapchainImage") != 1 || rt.Count("EndFrame") != 1 {
		t.Errorf("image released %d times, frame ended %d times", rt.Count("ReleaseSwapchainImage"), rt.Count("EndFrame"))
	}
	if len(rt.LastFrameEnd.Layers) != 0 {
		t.Error("failed frame submitted layers")
	}
	if d.Stats().Failed != 1 {
		t.Errorf("stats = %+v", d.Stats())
	}

	// The next frame runs normally.
	if _, err := d.Wait(); err != nil {
		t.Fatalf("next Wait: %v", err)
	}
	if err := d.Run(nil); err != nil {
		t.Fatalf("next Run: %v", err)
	}
}

func TestImageTimeoutEndsFrame(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt, WithImageTimeout(1_000_000))
	rt.FailOnce("WaitSwapchainImage", openxr.TimeoutExpired)

	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	err := d.Run(nil)

	if !errors.Is(err, session.ErrWaitTimeout) {
		t.Fatalf("err = %v, want ErrWaitTimeout", err)
	}
	if _, acquired := d.Session().Swapchain().Acquired(); acquired {
		t.Error("image still acquired")
	}
	if rt.Count("EndFrame") != 1 || len(rt.LastFrameEnd.Layers) != 0 {
		t.Error("frame not ended without layers")
	}
}

func TestShouldRenderFalseSkipsImage(t *testing.T) {
	rt := xrtest.New()
	rt.ShouldRender = false
	d := newTestDriver(t, rt)

	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	called := false
	if err := d.Run(func(*Frame) error { called = true; return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if called || rt.Count("AcquireSwapchainImage") != 0 {
		t.Error("image acquired although the runtime asked not to render")
	}
	if rt.Count("EndFrame") != 1 || len(rt.LastFrameEnd.Layers) != 0 {
		t.Error("frame not ended empty")
	}
	if d.Stats().Skipped != 1 {
		t.Errorf("stats = %+v", d.Stats())
	}
}

func TestFatalEndFrame(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	rt.FailOnce("EndFrame", openxr.ErrorSessionLost)

	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	err := d.Run(nil)

	if !IsFatal(err) {
		t.Fatalf("err = %v, want fatal", err)
	}
	if d.Waited() {
		t.Error("driver still inside the failed frame")
	}
}

func TestLocateViewsRetainsInvalidComponents(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	first := slices.Clone(rt.LocatedViews)
	runFrame := func() []openxr.View {
		t.Helper()
		var views []openxr.View
		if _, err := d.Wait(); err != nil {
			t.Fatal(err)
		}
		if err := d.Run(func(f *Frame) error { views = f.Views; return nil }); err != nil {
			t.Fatal(err)
		}
		return views
	}
	runFrame()

	// Given the runtime loses position tracking and reports garbage positions
	moved := slices.Clone(first)
	for i := range moved {
		moved[i].Pose.Position = openxr.Vector3f{X: 100}
		moved[i].Pose.Orientation = openxr.Quaternionf{Y: 1}
	}
	rt.SetViews(openxr.SpaceLocationOrientationValid, moved...)

	// When the next frame locates views
	views := runFrame()

	// Then positions are kept and orientations updated
	for i, v := range views {
		if v.Pose.Position != first[i].Pose.Position {
			t.Errorf("view %d position = %+v, want retained %+v", i, v.Pose.Position, first[i].Pose.Position)
		}
		if v.Pose.Orientation != moved[i].Pose.Orientation {
			t.Errorf("view %d orientation not updated", i)
		}
	}
}

func TestPipelinedTime(t *testing.T) {
	rt := xrtest.New()
	timing := space.NewTiming(true)
	d := newTestDriver(t, rt, WithTiming(timing))

	fs, err := d.Wait()
	if err != nil {
		t.Fatal(err)
	}

	want := fs.PredictedDisplayTime + openxr.Time(fs.PredictedDisplayPeriod)
	if d.PipelinedTime() != want {
		t.Errorf("PipelinedTime = %d, want %d", d.PipelinedTime(), want)
	}
	if timing.Time() != want {
		t.Errorf("pipelined query time = %d, want %d", timing.Time(), want)
	}
}

func TestProvidersRegistry(t *testing.T) {
	p := NewProviders()
	layer := func(b graphics.BackendKind) LayerProvider {
		return LayerProviderFunc(func(*Frame) []Layer { return []Layer{{Backend: b}} })
	}
	p.Register("a", layer(graphics.Vulkan))
	p.Register("b", layer(graphics.D3D12))
	p.Register("a", layer(graphics.D3D12))

	if got := p.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("names = %v", got)
	}
	if got := p.Layers(&Frame{}); len(got) != 2 || got[0].Backend != graphics.D3D12 {
		t.Errorf("layers = %+v", got)
	}
	if !p.Unregister("a") || p.Unregister("a") {
		t.Error("unregister")
	}
}

func TestDiscardLetsRestartedSessionWaitAgain(t *testing.T) {
	// Given a waited frame whose session ends before it is begun
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	if _, err := d.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := d.Session().End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	// When the frame is discarded twice
	d.Discard()
	d.Discard()

	// Then the driver is idle and counts one skipped frame
	if d.Waited() {
		t.Error("driver still holds the waited frame")
	}
	if got := d.Stats().Skipped; got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}

	// And a restarted session waits again
	if err := d.Session().Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := d.Wait(); err != nil {
		t.Errorf("Wait after restart: %v", err)
	}
}

func TestDiscardIgnoresBegunFrame(t *testing.T) {
	rt := xrtest.New()
	d := newTestDriver(t, rt)
	if _, err := d.Wait(); err != nil {
		t.Fatal(err)
	}
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	d.Discard()

	if _, err := d.Wait(); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Wait on a begun frame = %v, want ErrOutOfOrder", err)
	}
}
