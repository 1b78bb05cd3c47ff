package xr

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/config"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/frame"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/graphicstest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/loader"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
)

func newTestPlugin(t *testing.T, rt *xrtest.Runtime, options ...PluginBuilderOption) (*plugin, engine.Engine, *graphicstest.Backend) {
	t.Helper()
	backend := graphicstest.New(graphics.Vulkan)
	e := engine.NewEngine(engine.WithLogger(logger.Discard()))
	base := []PluginBuilderOption{WithLogger(logger.Discard()), WithRuntime(rt), WithBackends(backend)}
	p := NewPlugin(append(base, options...)...).(*plugin)
	if err := e.AddPlugin(p); err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}
	return p, e, backend
}

func contextFor(e engine.Engine, s engine.Schedule) *engine.Context {
	return &engine.Context{Ctx: e.Context(), Schedule: s, Resources: e.Resources(s), Engine: e}
}

// pass runs the plugin's systems once in schedule order, honoring their conditions.
func pass(t *testing.T, p *plugin, e engine.Engine) {
	t.Helper()
	main := contextFor(e, engine.ScheduleMain)
	if p.hasInstance() {
		if err := p.poll(main); err != nil {
			t.Logf("poll: %v", err)
		}
	}
	if p.sessionRequested() {
		if err := p.createSession(main); err != nil {
			t.Fatalf("createSession: %v", err)
		}
	}
	if p.canWait() {
		if err := p.waitFrame(main); err != nil {
			t.Logf("waitFrame: %v", err)
		}
	}
	if p.frames.Pending() {
		if err := p.renderFrame(contextFor(e, engine.ScheduleRender)); err != nil {
			t.Errorf("renderFrame: %v", err)
		}
	}
}

// startSession creates the session and lets the runtime make it run.
func startSession(t *testing.T, rt *xrtest.Runtime, p *plugin, e engine.Engine) {
	t.Helper()
	pass(t, p, e)
	if !p.SessionCreated() {
		t.Fatal("no session after the first pass")
	}
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateSynchronized, openxr.SessionStateFocused)
}

func TestInstallWithoutRuntimeRendersFlat(t *testing.T) {
	if loader.Available() {
		t.Skip("native loader compiled in")
	}
	e := engine.NewEngine(engine.WithLogger(logger.Discard()))
	p := NewPlugin(WithLogger(logger.Discard()))

	if err := e.AddPlugin(p); err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	if p.InstanceCreated() || p.Status() != session.StatusUnavailable {
		t.Errorf("status = %s, want unavailable", p.Status())
	}
	if got := e.Systems(engine.ScheduleMain); len(got) != 0 {
		t.Errorf("main systems = %v, want none", got)
	}
	if p.Subscribe(1) != nil {
		t.Error("subscription without an instance")
	}
	if p.Track(space.Space{}, space.NewTransformTarget(space.IdentityTransform), false) != -1 {
		t.Error("Track without an instance returned a handle")
	}
}

func TestInstallInstanceFailureRendersFlat(t *testing.T) {
	// Given a runtime offering no graphics extension
	rt := xrtest.New()
	rt.Extensions = nil

	// When the plugin is installed
	p, e, _ := newTestPlugin(t, rt)

	// Then install succeeds without XR
	if p.InstanceCreated() || p.Instance() != nil {
		t.Error("instance created without a backend extension")
	}
	if got := e.Systems(engine.ScheduleRender); len(got) != 0 {
		t.Errorf("render systems = %v, want none", got)
	}
}

func TestSessionLifecycleDrivesFrames(t *testing.T) {
	// Given a plugin with a render function and a head-following target
	rt := xrtest.New()
	var rendered []*frame.Frame
	var eyeCounts []int
	p, e, _ := newTestPlugin(t, rt, WithRenderFunc(func(f *frame.Frame, eyes []camera.Camera) error {
		rendered = append(rendered, f)
		eyeCounts = append(eyeCounts, len(eyes))
		return nil
	}))
	head := space.NewTransformTarget(space.IdentityTransform)
	p.TrackView(head)
	events := p.Subscribe(16)

	if got := e.Systems(engine.ScheduleMain); !slices.Equal(got, []string{SystemPoll, SystemCreateSession, SystemWaitFrame}) {
		t.Fatalf("main systems = %v", got)
	}
	if got := e.Systems(engine.ScheduleRender); !slices.Equal(got, []string{SystemRenderFrame}) {
		t.Fatalf("render systems = %v", got)
	}

	// When the session is created and made ready by the runtime
	startSession(t, rt, p, e)
	s := p.Session()
	for _, sched := range []engine.Schedule{engine.ScheduleMain, engine.ScheduleRender} {
		if got, ok := handoff.Get[session.Session](e.Resources(sched)); !ok || got != s {
			t.Errorf("%s store has no session", sched)
		}
	}
	rt.SetSpaceLocation(s.ViewSpace().Handle, openxr.SpaceLocation{
		Flags: openxr.SpaceLocationOrientationValid | openxr.SpaceLocationPositionValid,
		Pose:  openxr.Posef{Orientation: openxr.IdentityQuaternion, Position: openxr.Vector3f{Y: 1.7}},
	})
	for range 3 {
		pass(t, p, e)
	}

	// Then three frames were rendered with both eyes and submitted
	if !p.SessionRunning() || !p.ShouldRender() {
		t.Fatalf("status = %s", p.Status())
	}
	if len(rendered) != 3 {
		t.Fatalf("rendered %d frames, want 3", len(rendered))
	}
	for i, f := range rendered {
		if f.Texture == nil || len(f.Views) != 2 || eyeCounts[i] != 2 {
			t.Errorf("frame %d: texture %v, %d views, %d eyes", i, f.Texture, len(f.Views), eyeCounts[i])
		}
	}
	if rt.Count("EndFrame") != 3 {
		t.Errorf("EndFrame called %d times, want 3", rt.Count("EndFrame"))
	}
	if eyes := p.Eyes(); len(eyes) != 2 || !eyes[0].IsEye() {
		t.Errorf("eyes = %v", eyes)
	}

	// And the head target follows the view space
	if got := head.Transform().Translation.Y; got != 1.7 {
		t.Errorf("head height = %v, want 1.7", got)
	}

	// And subscribers saw the session reach running
	var last session.Status
	for len(events) > 0 {
		last = (<-events).To
	}
	if last != session.StatusRunning {
		t.Errorf("last published status = %s, want running", last)
	}
}

func TestFrameLossTearsSessionDown(t *testing.T) {
	// Given a running session
	rt := xrtest.New()
	p, e, backend := newTestPlugin(t, rt)
	startSession(t, rt, p, e)
	pass(t, p, e)
	if !p.SessionRunning() {
		t.Fatalf("status = %s, want running", p.Status())
	}

	// When the runtime reports the session lost from a frame call
	rt.Fail("WaitFrame", openxr.ErrorSessionLost)
	pass(t, p, e)
	pass(t, p, e)

	// Then the session is destroyed and its resources withdrawn, the instance survives
	if p.SessionCreated() {
		t.Error("session still attached after loss")
	}
	if p.Status() != session.StatusAvailable {
		t.Errorf("status = %s, want available", p.Status())
	}
	if handoff.Has[session.Session](e.Resources(engine.ScheduleMain)) {
		t.Error("session still published after loss")
	}
	if rt.Count("DestroySession") != 1 {
		t.Errorf("DestroySession called %d times", rt.Count("DestroySession"))
	}
	if backend.Released != 1 {
		t.Errorf("device released %d times, want 1", backend.Released)
	}

	// And no new session is created without a request
	pass(t, p, e)
	if p.SessionCreated() {
		t.Error("session recreated without a request")
	}
}

func TestInstanceLossDropsXR(t *testing.T) {
	rt := xrtest.New()
	p, e, _ := newTestPlugin(t, rt)
	startSession(t, rt, p, e)
	pass(t, p, e)

	rt.Fail("WaitFrame", openxr.ErrorInstanceLost)
	pass(t, p, e)
	pass(t, p, e)

	if p.InstanceCreated() || p.Instance() != nil {
		t.Error("lost instance kept")
	}
	if rt.Count("DestroyInstance") != 1 {
		t.Errorf("DestroyInstance called %d times, want 1", rt.Count("DestroyInstance"))
	}
}

func TestRenderErrorSkipsOnlyThatFrame(t *testing.T) {
	rt := xrtest.New()
	fail := true
	p, e, _ := newTestPlugin(t, rt, WithRenderFunc(func(*frame.Frame, []camera.Camera) error {
		if fail {
			fail = false
			return errors.New("draw failed")
		}
		return nil
	}))
	startSession(t, rt, p, e)
	pass(t, p, e)
	pass(t, p, e)

	stats := p.currentDriver().Stats()
	if stats.Failed != 1 || stats.Rendered != 1 {
		t.Errorf("stats = %+v, want one failed and one rendered frame", stats)
	}
	if !p.SessionRunning() {
		t.Error("a render error ended the session")
	}
}

func TestCreateSessionOnRequest(t *testing.T) {
	rt := xrtest.New()
	p, e, _ := newTestPlugin(t, rt, WithAutoCreate(false))

	pass(t, p, e)
	if p.SessionCreated() {
		t.Fatal("session created without a request")
	}

	p.CreateSession()
	pass(t, p, e)
	if !p.SessionCreated() {
		t.Fatal("session not created after CreateSession")
	}
}

func TestConfigAppliesToNextSession(t *testing.T) {
	// Given a config asking for a smaller image, pipelined poses and the LOCAL space
	cfg := config.Default()
	cfg.XR.Resolutions = []config.Resolution{{Width: 1024, Height: 1024}}
	cfg.XR.Pipelined = true
	cfg.XR.ReferenceSpace = "local"
	rt := xrtest.New()
	p, e, _ := newTestPlugin(t, rt, WithConfig(cfg))

	// When the session is created
	pass(t, p, e)

	// Then it was negotiated with those preferences
	s := p.Session()
	if s == nil {
		t.Fatal("no session")
	}
	if got := s.Resolution(); got.Width != 1024 || got.Height != 1024 {
		t.Errorf("resolution = %s, want 1024x1024", got)
	}
	if s.ReferenceSpaceType() != openxr.ReferenceSpaceLocal {
		t.Errorf("reference space = %v, want local", s.ReferenceSpaceType())
	}
	if !p.timing.Pipelined() {
		t.Error("pipelined timing not applied")
	}

	// And a reload switches the timing at once but keeps the session
	next := cfg
	next.XR.Pipelined = false
	p.applyConfig(next)
	if p.timing.Pipelined() {
		t.Error("reloaded pipelined flag not applied")
	}
	if p.Session() != s {
		t.Error("reload replaced the session")
	}
}

func TestCreatorFailureLeavesNoSession(t *testing.T) {
	rt := xrtest.New()
	p, e, backend := newTestPlugin(t, rt)
	p.RegisterCreator(handoff.NewResource("broken", func(session.Session) (int, error) {
		return 0, errors.New("no memory")
	}, nil))

	err := p.createSession(contextFor(e, engine.ScheduleMain))

	if err == nil {
		t.Fatal("createSession succeeded with a failing creator")
	}
	if p.SessionCreated() || handoff.Has[session.Session](e.Resources(engine.ScheduleMain)) {
		t.Error("session published after a failed commit")
	}
	if rt.Count("DestroySession") != 1 || backend.Released != 1 {
		t.Errorf("DestroySession %d, device released %d", rt.Count("DestroySession"), backend.Released)
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	rt := xrtest.New()
	p, e, backend := newTestPlugin(t, rt)
	startSession(t, rt, p, e)
	pass(t, p, e)

	p.shutdown()

	if rt.Count("DestroySession") != 1 || rt.Count("DestroyInstance") != 1 {
		t.Errorf("DestroySession %d, DestroyInstance %d", rt.Count("DestroySession"), rt.Count("DestroyInstance"))
	}
	if backend.Released != 1 {
		t.Errorf("device released %d times, want 1", backend.Released)
	}
	if rt.LiveSpaces() != 0 {
		t.Errorf("%d spaces leaked", rt.LiveSpaces())
	}
}

func TestFlatCameraFollowsWindowSize(t *testing.T) {
	// Given a plugin with a placed flat camera and custom clip planes
	p := NewPlugin(
		WithLogger(logger.Discard()),
		WithFlatView([3]float32{0, 0, 5}, [3]float32{0, 0, 0}),
		WithCameraOptions(camera.WithClipPlanes(0.1, 50)),
	).(*plugin)
	cam := p.FlatCamera()

	// Then it is a look-at camera sharing the eye cameras' clip planes
	if cam.IsEye() {
		t.Fatal("flat camera in eye mode")
	}
	if cam.Near() != 0.1 || cam.Far() != 50 {
		t.Errorf("clip planes = %v..%v, want 0.1..50", cam.Near(), cam.Far())
	}
	if view := cam.ViewMatrix(); view[14] != -5 {
		t.Errorf("view z translation = %v, want -5", view[14])
	}

	// When the window is resized, and when it is minimized
	p.resizeFlat(1600, 800)
	p.resizeFlat(0, 0)

	// Then the aspect follows the last real size
	if got := cam.Aspect(); got != 2 {
		t.Errorf("aspect = %v, want 2", got)
	}
	frustum := cam.Frustum()
	if !frustum.ContainsPoint([3]float32{0, 0, 0}) {
		t.Error("look-at target outside the flat frustum")
	}
}

func TestStoppingDropsWaitedFrameAndResumes(t *testing.T) {
	// Given a running session with a waited frame still in the mailbox
	rt := xrtest.New()
	p, e, _ := newTestPlugin(t, rt)
	startSession(t, rt, p, e)
	pass(t, p, e)
	main := contextFor(e, engine.ScheduleMain)
	if err := p.waitFrame(main); err != nil {
		t.Fatalf("waitFrame: %v", err)
	}
	if !p.frames.Pending() {
		t.Fatal("no frame handed to the render context")
	}
	d := p.currentDriver()

	// When the runtime stops the session
	rt.PushState(openxr.SessionStateStopping)
	if err := p.poll(main); err != nil {
		t.Fatalf("poll: %v", err)
	}

	// Then the session ended and the waited frame was dropped
	if rt.Count("EndSession") != 1 {
		t.Errorf("EndSession called %d times, want 1", rt.Count("EndSession"))
	}
	if p.frames.Pending() || p.inFlight.Load() || d.Waited() {
		t.Error("waited frame survived the end of the session")
	}

	// And the next episode waits and renders again
	ended := rt.Count("EndFrame")
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateSynchronized)
	pass(t, p, e)
	if got := rt.Count("EndFrame"); got != ended+1 {
		t.Errorf("EndFrame called %d times after restart, want %d", got, ended+1)
	}
}

func TestEndSessionWaitsForRunningFrame(t *testing.T) {
	// Given a running session and a frame holding the render lock
	rt := xrtest.New()
	p, e, _ := newTestPlugin(t, rt)
	startSession(t, rt, p, e)
	pass(t, p, e)
	p.frameMu.Lock()

	// When STOPPING is polled on another goroutine
	rt.PushState(openxr.SessionStateStopping)
	done := make(chan error, 1)
	go func() { done <- p.poll(contextFor(e, engine.ScheduleMain)) }()

	// Then xrEndSession waits for the frame to finish
	time.Sleep(20 * time.Millisecond)
	if got := rt.Count("EndSession"); got != 0 {
		t.Errorf("EndSession ran during a frame (%d calls)", got)
	}
	p.frameMu.Unlock()
	if err := <-done; err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got := rt.Count("EndSession"); got != 1 {
		t.Errorf("EndSession called %d times, want 1", got)
	}
}
