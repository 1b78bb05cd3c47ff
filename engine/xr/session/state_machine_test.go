package session

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr/xrtest"
)

func newTestMachine(t *testing.T, rt *xrtest.Runtime) (*StateMachine, Session) {
	t.Helper()
	s, inst := newTestSession(t, rt)
	m := NewStateMachine(inst, logger.Discard())
	m.Attach(s)
	return m, s
}

func TestTransition(t *testing.T) {
	tests := []struct {
		state openxr.SessionState
		want  Status
	}{
		{openxr.SessionStateIdle, StatusIdle},
		{openxr.SessionStateReady, StatusReady},
		{openxr.SessionStateSynchronized, StatusRunning},
		{openxr.SessionStateVisible, StatusRunning},
		{openxr.SessionStateFocused, StatusRunning},
		{openxr.SessionStateStopping, StatusStopping},
		{openxr.SessionStateExiting, StatusExiting},
		{openxr.SessionStateLossPending, StatusExiting},
		{openxr.SessionStateUnknown, StatusReady},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := Transition(StatusReady, tt.state); got != tt.want {
				t.Errorf("Transition(ready, %s) = %s, want %s", tt.state, got, tt.want)
			}
		})
	}

	got := Replay(StatusAvailable,
		openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateSynchronized,
		openxr.SessionStateFocused, openxr.SessionStateStopping, openxr.SessionStateIdle)
	if got != StatusIdle {
		t.Errorf("Replay = %s, want idle", got)
	}
}

func TestPollBeginsOnReady(t *testing.T) {
	// Given an attached session the runtime reports ready
	rt := xrtest.New()
	m, s := newTestMachine(t, rt)
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady)

	// When the queue is drained
	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// Then the session is begun and the status is ready
	if !s.Running() || !rt.Running() {
		t.Error("session not begun on READY")
	}
	if m.Status() != StatusReady {
		t.Errorf("status = %s, want ready", m.Status())
	}
	if !m.SessionRunning() || !m.SessionCreated() || !m.InstanceCreated() {
		t.Error("run conditions do not reflect a running session")
	}
}

func TestStoppingTwiceEndsOnce(t *testing.T) {
	// Given a running session
	rt := xrtest.New()
	m, _ := newTestMachine(t, rt)
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateSynchronized)
	if err := m.Poll(); err != nil {
		t.Fatal(err)
	}

	// When STOPPING arrives twice before the next READY
	rt.PushState(openxr.SessionStateStopping, openxr.SessionStateStopping)
	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// Then the session is ended exactly once
	if got := rt.Count("EndSession"); got != 1 {
		t.Errorf("EndSession called %d times, want 1", got)
	}
	if m.SessionRunning() {
		t.Error("session still running after STOPPING")
	}

	// And a later episode ends again
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateStopping)
	if err := m.Poll(); err != nil {
		t.Fatal(err)
	}
	if got := rt.Count("EndSession"); got != 2 {
		t.Errorf("EndSession called %d times after second episode, want 2", got)
	}
}

func TestExitingTearsDown(t *testing.T) {
	rt := xrtest.New()
	m, s := newTestMachine(t, rt)
	events := m.Subscribe(16)

	var tornDown []openxr.SessionState
	m.OnTeardown(func(got Session, reason openxr.SessionState) {
		if got != s {
			t.Error("teardown hook received another session")
		}
		tornDown = append(tornDown, reason)
	})

	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateStopping, openxr.SessionStateIdle, openxr.SessionStateExiting)
	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(tornDown) != 1 || tornDown[0] != openxr.SessionStateExiting {
		t.Errorf("teardown reasons = %v", tornDown)
	}
	if m.Session() != nil || m.SessionCreated() {
		t.Error("session still attached after EXITING")
	}
	if m.Status() != StatusAvailable {
		t.Errorf("status = %s, want available", m.Status())
	}
	if rt.Count("DestroySession") != 1 {
		t.Error("session not destroyed")
	}

	var seen []Status
	for len(events) > 0 {
		seen = append(seen, (<-events).To)
	}
	want := []Status{StatusIdle, StatusReady, StatusStopping, StatusIdle, StatusExiting, StatusAvailable}
	if len(seen) != len(want) {
		t.Fatalf("published %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestLossPendingMarksInstanceLost(t *testing.T) {
	rt := xrtest.New()
	m, _ := newTestMachine(t, rt)
	rt.PushState(openxr.SessionStateLossPending)

	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if m.Instance().Valid() {
		t.Error("instance still valid after LOSS_PENDING")
	}
	if m.Status() != StatusUnavailable || m.InstanceCreated() {
		t.Errorf("status = %s, want unavailable", m.Status())
	}
	if rt.Count("DestroySession") != 1 {
		t.Error("session not destroyed on loss")
	}
}

func TestInstanceLossEvent(t *testing.T) {
	rt := xrtest.New()
	m, _ := newTestMachine(t, rt)
	rt.Push(openxr.EventInstanceLossPending{LossTime: 5})

	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if m.Status() != StatusUnavailable || m.Session() != nil {
		t.Errorf("status = %s session = %v", m.Status(), m.Session())
	}
	// A lost machine stops polling.
	rt.PushState(openxr.SessionStateReady)
	calls := rt.Count("PollEvent")
	if err := m.Poll(); err != nil {
		t.Fatal(err)
	}
	if rt.Count("PollEvent") != calls {
		t.Error("lost machine kept polling")
	}
}

func TestPollLossResult(t *testing.T) {
	rt := xrtest.New()
	m, _ := newTestMachine(t, rt)
	rt.FailOnce("PollEvent", openxr.ErrorInstanceLost)

	err := m.Poll()

	if !errors.Is(err, openxr.ErrorInstanceLost) {
		t.Fatalf("err = %v, want ErrorInstanceLost", err)
	}
	if m.Status() != StatusUnavailable {
		t.Errorf("status = %s, want unavailable", m.Status())
	}
}

func TestPollIgnoresForeignAndNoiseEvents(t *testing.T) {
	// Given events for another session and housekeeping events
	rt := xrtest.New()
	m, s := newTestMachine(t, rt)
	var changes []openxr.EventReferenceSpaceChangePending
	m.OnReferenceSpaceChange(func(ev openxr.EventReferenceSpaceChangePending) { changes = append(changes, ev) })
	rt.Push(
		openxr.EventSessionStateChanged{Session: s.Handle() + 99, State: openxr.SessionStateReady},
		openxr.EventEventsLost{LostEventCount: 3},
		openxr.EventInteractionProfileChanged{Session: s.Handle()},
		openxr.EventReferenceSpaceChangePending{Session: s.Handle(), ReferenceSpaceType: openxr.ReferenceSpaceStage, ChangeTime: 10},
		openxr.EventUnknown{StructureType: 12345},
	)

	// When the queue is drained
	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// Then nothing changes the status and the space change is forwarded
	if m.Status() != StatusAvailable {
		t.Errorf("status = %s, want available", m.Status())
	}
	if rt.Count("BeginSession") != 0 {
		t.Error("foreign READY began the session")
	}
	if len(changes) != 1 || changes[0].ChangeTime != 10 {
		t.Errorf("space changes = %v", changes)
	}
}

func TestBeginFailureIsReported(t *testing.T) {
	rt := xrtest.New()
	m, _ := newTestMachine(t, rt)
	rt.FailOnce("BeginSession", openxr.ErrorSessionNotReady)
	rt.PushState(openxr.SessionStateReady)

	if err := m.Poll(); !errors.Is(err, openxr.ErrorSessionNotReady) {
		t.Fatalf("err = %v, want ErrorSessionNotReady", err)
	}
	if m.SessionRunning() {
		t.Error("session running after failed begin")
	}
}

func TestAbandonAfterFrameLoss(t *testing.T) {
	tests := []struct {
		name         string
		instanceLost bool
		want         Status
		valid        bool
	}{
		{"session lost", false, StatusAvailable, true},
		{"instance lost", true, StatusUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a running session
			rt := xrtest.New()
			m, _ := newTestMachine(t, rt)
			rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady)
			if err := m.Poll(); err != nil {
				t.Fatalf("Poll: %v", err)
			}
			var reasons []openxr.SessionState
			m.OnTeardown(func(_ Session, reason openxr.SessionState) { reasons = append(reasons, reason) })

			// When a frame call reported the loss
			m.Abandon(tt.instanceLost)

			// Then the session is gone without any runtime event
			if m.Session() != nil {
				t.Error("session still attached")
			}
			if m.Status() != tt.want {
				t.Errorf("status = %s, want %s", m.Status(), tt.want)
			}
			if m.Instance().Valid() != tt.valid {
				t.Errorf("instance valid = %v, want %v", m.Instance().Valid(), tt.valid)
			}
			if len(reasons) != 1 || reasons[0] != openxr.SessionStateLossPending {
				t.Errorf("teardown reasons = %v", reasons)
			}
			if rt.Count("DestroySession") != 1 {
				t.Error("session not destroyed")
			}
		})
	}
}

func TestBeforeEndHookWrapsEndSession(t *testing.T) {
	// Given a running session with a pre-end hook recording the runtime's end count
	rt := xrtest.New()
	m, s := newTestMachine(t, rt)
	var seen []int
	m.OnBeforeEnd(func(got Session) func() {
		if got != s {
			t.Error("hook received another session")
		}
		seen = append(seen, rt.Count("EndSession"))
		return func() { seen = append(seen, rt.Count("EndSession")) }
	})
	rt.PushState(openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateSynchronized)
	if err := m.Poll(); err != nil {
		t.Fatal(err)
	}

	// When the runtime stops the session twice
	rt.PushState(openxr.SessionStateStopping, openxr.SessionStateStopping)
	if err := m.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// Then the hook ran once before xrEndSession and its release once after
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Errorf("end counts seen by the hook = %v, want [0 1]", seen)
	}
}

func TestEndPendingFollowsEpisode(t *testing.T) {
	tests := []struct {
		name   string
		states []openxr.SessionState
		want   bool
	}{
		{"attached", nil, false},
		{"ready", []openxr.SessionState{openxr.SessionStateIdle, openxr.SessionStateReady}, true},
		{"focused", []openxr.SessionState{openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateFocused}, true},
		{"stopping", []openxr.SessionState{openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateStopping}, false},
		{"ready again", []openxr.SessionState{openxr.SessionStateIdle, openxr.SessionStateReady, openxr.SessionStateStopping, openxr.SessionStateIdle, openxr.SessionStateReady}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a fresh machine fed the states
			rt := xrtest.New()
			m, _ := newTestMachine(t, rt)
			rt.PushState(tt.states...)

			// When the queue is drained while another goroutine reads EndPending
			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 100; i++ {
					m.EndPending()
				}
			}()
			if err := m.Poll(); err != nil {
				t.Fatalf("Poll: %v", err)
			}
			<-done

			// Then EndPending reflects whether an end is still owed
			if got := m.EndPending(); got != tt.want {
				t.Errorf("EndPending = %v, want %v", got, tt.want)
			}
		})
	}
}
