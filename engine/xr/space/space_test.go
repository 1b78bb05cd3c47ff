package space

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
)

const allValid = openxr.SpaceLocationOrientationValid | openxr.SpaceLocationPositionValid |
	openxr.SpaceLocationOrientationTracked | openxr.SpaceLocationPositionTracked

func newSession(t *testing.T, rt *xrtest.Runtime) openxr.Session {
	t.Helper()
	inst, err := rt.CreateInstance(&openxr.InstanceCreateInfo{})
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	s, err := rt.CreateSession(inst, &openxr.SessionCreateInfo{SystemID: 1, Binding: openxr.VulkanBinding{}})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s
}

func TestApplyDoesNotClobberInvalidComponents(t *testing.T) {
	start := Transform{
		Translation: openxr.Vector3f{X: 1, Y: 2, Z: 3},
		Rotation:    openxr.Quaternionf{X: 0, Y: 0.7071, Z: 0, W: 0.7071},
		Scale:       openxr.Vector3f{X: 1, Y: 1, Z: 1},
	}
	pose := openxr.Posef{Orientation: openxr.IdentityQuaternion, Position: openxr.Vector3f{X: 9, Y: 9, Z: 9}}

	tests := []struct {
		name  string
		flags openxr.SpaceLocationFlags
		want  Transform
		wrote bool
	}{
		{"nothing valid", 0, start, false},
		{"tracked only", openxr.SpaceLocationPositionTracked | openxr.SpaceLocationOrientationTracked, start, false},
		{"position only", openxr.SpaceLocationPositionValid, Transform{Translation: pose.Position, Rotation: start.Rotation, Scale: start.Scale}, true},
		{"orientation only", openxr.SpaceLocationOrientationValid, Transform{Translation: start.Translation, Rotation: pose.Orientation, Scale: start.Scale}, true},
		{"both", allValid, Transform{Translation: pose.Position, Rotation: pose.Orientation, Scale: start.Scale}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := start
			wrote := Apply(FromSpaceLocation(openxr.SpaceLocation{Flags: tt.flags, Pose: pose}), &tr)
			if tr != tt.want {
				t.Errorf("transform = %+v, want %+v", tr, tt.want)
			}
			if wrote != tt.wrote {
				t.Errorf("wrote = %v, want %v", wrote, tt.wrote)
			}
		})
	}
}

func TestRetain(t *testing.T) {
	prev := openxr.Posef{Orientation: openxr.Quaternionf{W: 1}, Position: openxr.Vector3f{X: 1}}
	next := openxr.Posef{Orientation: openxr.Quaternionf{Y: 1}, Position: openxr.Vector3f{X: 2}}

	got := Retain(prev, next, openxr.SpaceLocationOrientationValid)
	if got.Position != prev.Position || got.Orientation != next.Orientation {
		t.Errorf("Retain = %+v", got)
	}
}

func TestLocationFlagsRoundTrip(t *testing.T) {
	for f := openxr.SpaceLocationFlags(0); f <= allValid; f++ {
		if got := FromSpaceLocation(openxr.SpaceLocation{Flags: f}).Flags(); got != f {
			t.Errorf("Flags(%#x) = %#x", f, got)
		}
	}
}

func TestDestroyHonoursOwnership(t *testing.T) {
	rt := xrtest.New()
	s := newSession(t, rt)
	h, err := rt.CreateReferenceSpace(s, &openxr.ReferenceSpaceCreateInfo{ReferenceSpaceType: openxr.ReferenceSpaceLocal, PoseInReferenceSpace: openxr.IdentityPose})
	if err != nil {
		t.Fatalf("CreateReferenceSpace: %v", err)
	}

	if err := Borrow(h).Destroy(rt); err != nil {
		t.Fatalf("borrowed Destroy: %v", err)
	}
	if rt.LiveSpaces() != 1 {
		t.Fatal("borrowed space was destroyed")
	}
	if err := Own(h).Destroy(rt); err != nil {
		t.Fatalf("owned Destroy: %v", err)
	}
	if rt.LiveSpaces() != 0 {
		t.Error("owned space survived Destroy")
	}
	if err := (Space{}).Destroy(rt); err != nil {
		t.Errorf("null Destroy: %v", err)
	}
}

func TestCreateReferenceFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		supported []openxr.ReferenceSpaceType
		want      openxr.ReferenceSpaceType
		got       openxr.ReferenceSpaceType
		err       error
	}{
		{"stage supported", []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocal, openxr.ReferenceSpaceStage}, openxr.ReferenceSpaceStage, openxr.ReferenceSpaceStage, nil},
		{"stage falls back to local", []openxr.ReferenceSpaceType{openxr.ReferenceSpaceView, openxr.ReferenceSpaceLocal}, openxr.ReferenceSpaceStage, openxr.ReferenceSpaceLocal, nil},
		{"local floor falls back to stage", []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocal, openxr.ReferenceSpaceStage}, openxr.ReferenceSpaceLocalFloor, openxr.ReferenceSpaceStage, nil},
		{"view has no fallback", []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocal}, openxr.ReferenceSpaceView, 0, ErrNoReferenceSpace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := xrtest.New()
			rt.ReferenceSpaces = tt.supported
			s := newSession(t, rt)

			sp, kind, err := CreateReference(rt, s, tt.want, openxr.IdentityPose, logger.Discard())
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if kind != tt.got {
				t.Errorf("kind = %s, want %s", kind, tt.got)
			}
			if err == nil && sp.Ownership != Owned {
				t.Error("reference space is not owned")
			}
		})
	}
}

func TestTiming(t *testing.T) {
	fs := openxr.FrameState{PredictedDisplayTime: 1000, PredictedDisplayPeriod: 10}
	tm := NewTiming(false)

	if got := tm.Publish(fs); got != 1000 {
		t.Errorf("predicted time = %d", got)
	}

	// the mode switches only at the next frame boundary
	tm.SetPipelined(true)
	if tm.Time() != 1000 || tm.Pipelined() {
		t.Error("pipelined flag applied mid-frame")
	}
	if got := tm.Publish(fs); got != 1010 {
		t.Errorf("pipelined time = %d, want 1010", got)
	}
	if tm.Frame() != 2 {
		t.Errorf("Frame = %d", tm.Frame())
	}
}

func TestTrackerUpdatesAllTargetsAtOneTime(t *testing.T) {
	// Given three tracked spaces, one without a valid position
	rt := xrtest.New()
	start := IdentityTransform
	start.Translation = openxr.Vector3f{Z: -5}
	targets := []*TransformTarget{NewTransformTarget(start), NewTransformTarget(start), NewTransformTarget(start)}
	tr := NewTracker(rt, WithLogger(logger.Discard()), WithWorkers(2))
	for i, target := range targets {
		h := openxr.Space(0x900 + i)
		flags := allValid
		if i == 2 {
			flags = openxr.SpaceLocationOrientationValid
		}
		rt.SetSpaceLocation(h, openxr.SpaceLocation{Flags: flags, Pose: openxr.Posef{Orientation: openxr.IdentityQuaternion, Position: openxr.Vector3f{X: float32(i + 1)}}})
		tr.Track(Borrow(h), target, false)
	}

	// When the tracker updates
	if err := tr.Update(Borrow(0x1), 5000); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Then valid targets moved and the invalid position kept its value
	for i, target := range targets[:2] {
		if got := target.Transform().Translation.X; got != float32(i+1) {
			t.Errorf("target %d x = %v", i, got)
		}
	}
	if got := targets[2].Transform().Translation; got != start.Translation {
		t.Errorf("invalid position overwritten: %+v", got)
	}
	if rt.LastLocateTime != 5000 {
		t.Errorf("located at %d", rt.LastLocateTime)
	}
	if rt.Count("LocateSpace") != 3 {
		t.Errorf("LocateSpace called %d times", rt.Count("LocateSpace"))
	}
}

func TestTrackerFailureKeepsTransform(t *testing.T) {
	rt := xrtest.New()
	target := NewTransformTarget(IdentityTransform)
	tr := NewTracker(rt, WithLogger(logger.Discard()))
	id := tr.Track(Borrow(0x42), target, true)

	if err := tr.Update(Borrow(0x1), 0); !errors.Is(err, openxr.ErrorTimeInvalid) {
		t.Fatalf("err = %v, want XR_ERROR_TIME_INVALID", err)
	}
	if target.Transform() != IdentityTransform {
		t.Error("failed location modified the target")
	}

	tr.Untrack(id)
	if tr.Len() != 0 {
		t.Error("Untrack left the binding")
	}
	if _, ok := tr.Last(id); ok {
		t.Error("Last reports an untracked binding")
	}
}

func TestTransformTargetConcurrent(t *testing.T) {
	target := NewTransformTarget(IdentityTransform)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target.UpdateTransform(func(t *Transform) { t.Translation.X++ })
		}()
	}
	wg.Wait()
	if target.Transform().Translation.X != 16 {
		t.Errorf("x = %v", target.Transform().Translation.X)
	}
}

func TestHandsClearWhenInactive(t *testing.T) {
	rt := xrtest.New()
	s := newSession(t, rt)
	var active openxr.HandJointLocations
	active.IsActive = true
	for i := range active.Joints {
		active.Joints[i] = openxr.HandJointLocation{Flags: allValid, Pose: openxr.IdentityPose, Radius: 0.01}
	}
	rt.SetHandJoints(openxr.HandLeft, active)

	h, err := NewHands(rt, s, true)
	if err != nil {
		t.Fatalf("NewHands: %v", err)
	}
	if err := h.Locate(Borrow(1), 100); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	left := h.Hand(openxr.HandLeft)
	if !left.Active || !left.Joint(openxr.HandJointIndexTip).PositionValid || left.Joint(openxr.HandJointWrist).Radius != 0.01 {
		t.Errorf("left hand = %+v", left.Joint(openxr.HandJointIndexTip))
	}

	// the left hand leaves the view: flags must clear, not freeze
	rt.SetHandJoints(openxr.HandLeft, openxr.HandJointLocations{})
	if err := h.Locate(Borrow(1), 200); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	left = h.Hand(openxr.HandLeft)
	if left.Active || left.Joint(openxr.HandJointIndexTip).Flags() != 0 {
		t.Errorf("inactive hand kept data: %+v", left)
	}

	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if rt.Count("DestroyHandTracker") != 2 {
		t.Errorf("DestroyHandTracker called %d times", rt.Count("DestroyHandTracker"))
	}
}

func TestHandsWithoutExtension(t *testing.T) {
	rt := xrtest.New()
	s := newSession(t, rt)
	h, err := NewHands(xrtest.CoreOnly{Runtime: rt}, s, true)
	if err != nil {
		t.Fatalf("NewHands: %v", err)
	}
	if h.Enabled() {
		t.Error("hands enabled without the extension interface")
	}
	if err := h.Locate(Borrow(1), 100); err != nil || h.Hand(openxr.HandRight).Active {
		t.Errorf("Locate = %v, active = %v", err, h.Hand(openxr.HandRight).Active)
	}
}

func TestRecenter(t *testing.T) {
	r := NewRecenter(7, openxr.ReferenceSpaceStage)

	if r.Notify(openxr.EventReferenceSpaceChangePending{Session: 7, ReferenceSpaceType: openxr.ReferenceSpaceLocal}) {
		t.Error("accepted a change of another space type")
	}
	ev := openxr.EventReferenceSpaceChangePending{Session: 7, ReferenceSpaceType: openxr.ReferenceSpaceStage, ChangeTime: 500, PoseValid: true}
	if !r.Notify(ev) {
		t.Fatal("rejected a matching change")
	}
	if _, ok := r.Take(400); ok {
		t.Error("change handed out before its change time")
	}
	got, ok := r.Take(500)
	if !ok || got.ChangeTime != 500 {
		t.Fatalf("Take = %+v, %v", got, ok)
	}
	if _, ok := r.Take(600); ok {
		t.Error("change handed out twice")
	}
}
