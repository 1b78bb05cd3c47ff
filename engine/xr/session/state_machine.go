package session

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/instance"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// StateChanged is published to subscribers on every status transition.
type StateChanged struct {
	Instance uuid.UUID
	// Session is the nil UUID when no session is attached.
	Session uuid.UUID
	From    Status
	To      Status
	// State is the runtime state that caused the transition, SessionStateUnknown
	// for transitions caused by local teardown.
	State openxr.SessionState
	Time  openxr.Time
}

// TeardownFunc runs before a session is destroyed because the runtime reported
// EXITING or LOSS_PENDING, or the instance is being lost.
type TeardownFunc func(s Session, reason openxr.SessionState)

// EndHook runs right before xrEndSession on a STOPPING session. The function it
// returns, if any, runs once the session has been ended.
type EndHook func(s Session) (after func())

// StateMachine drains the runtime event queue and drives the session lifecycle from it.
// Status only changes in response to polled events. Poll must be called from one goroutine;
// the accessors and run conditions are safe from any goroutine.
type StateMachine struct {
	inst   instance.Instance
	logger *log.Logger

	mu      sync.RWMutex
	status  Status
	session Session
	state   openxr.SessionState

	// needsEnd is set by a successful Begin and cleared by the first End of a stopping episode.
	// Guarded by mu.
	needsEnd bool

	hookMu      sync.Mutex
	subscribers []chan StateChanged
	teardown    []TeardownFunc
	beforeEnd   []EndHook
	spaceChange []func(openxr.EventReferenceSpaceChangePending)
}

// NewStateMachine creates a state machine for an instance.
//
// Parameters:
//   - inst: the instance whose event queue is drained
//   - l: the logger; nil uses the engine's component logger
//
// Returns:
//   - *StateMachine: the machine, StatusAvailable if the instance is valid
func NewStateMachine(inst instance.Instance, l *log.Logger) *StateMachine {
	if l == nil {
		l = logger.For("xr.session")
	}
	m := &StateMachine{inst: inst, logger: l.With("instance", inst.ID())}
	if inst.Valid() {
		m.status = StatusAvailable
	}
	return m
}

// Attach hands a freshly created session to the machine. The status does not
// change until the runtime reports the session's first state.
func (m *StateMachine) Attach(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	m.state = openxr.SessionStateUnknown
	m.needsEnd = false
}

// Session returns the attached session, nil when none is attached.
func (m *StateMachine) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Status returns the current status.
func (m *StateMachine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// State returns the last session state reported by the runtime.
func (m *StateMachine) State() openxr.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Instance returns the instance the machine polls.
func (m *StateMachine) Instance() instance.Instance { return m.inst }

// Subscribe returns a channel receiving every status transition. Events are
// dropped for a subscriber whose buffer is full.
//
// Parameters:
//   - buffer: the channel capacity, at least 1
//
// Returns:
//   - <-chan StateChanged: the subscription
func (m *StateMachine) Subscribe(buffer int) <-chan StateChanged {
	ch := make(chan StateChanged, max(buffer, 1))
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// OnTeardown registers a function run before the session is destroyed.
func (m *StateMachine) OnTeardown(fn TeardownFunc) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.teardown = append(m.teardown, fn)
}

// OnBeforeEnd registers a function run before a stopping session is ended.
func (m *StateMachine) OnBeforeEnd(fn EndHook) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.beforeEnd = append(m.beforeEnd, fn)
}

// EndPending reports whether the attached session was begun and not ended yet.
func (m *StateMachine) EndPending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.needsEnd
}

// OnReferenceSpaceChange registers a function receiving reference space change events.
func (m *StateMachine) OnReferenceSpaceChange(fn func(openxr.EventReferenceSpaceChangePending)) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.spaceChange = append(m.spaceChange, fn)
}

// Poll drains the event queue, handling every event in order.
//
// Returns:
//   - error: the failure to poll, to begin or to end the session
func (m *StateMachine) Poll() error {
	if m.Status() == StatusUnavailable {
		return nil
	}
	rt := m.inst.Runtime()
	for {
		ev, ok, err := rt.PollEvent(m.inst.Handle())
		if err != nil {
			if openxr.IsLoss(err) {
				m.lose(0)
			}
			return fmt.Errorf("session: poll event: %w", err)
		}
		if !ok {
			return nil
		}
		if err := m.handle(ev); err != nil {
			return err
		}
	}
}

func (m *StateMachine) handle(ev openxr.Event) error {
	switch e := ev.(type) {
	case openxr.EventSessionStateChanged:
		return m.onState(e)
	case openxr.EventInstanceLossPending:
		m.logger.Warn("instance loss pending", "loss_time", e.LossTime)
		m.lose(e.LossTime)
	case openxr.EventEventsLost:
		m.logger.Warn("runtime event queue overflowed", "lost", e.LostEventCount)
	case openxr.EventReferenceSpaceChangePending:
		m.logger.Info("reference space change pending", "type", e.ReferenceSpaceType, "change_time", e.ChangeTime)
		m.hookMu.Lock()
		hooks := append([]func(openxr.EventReferenceSpaceChangePending){}, m.spaceChange...)
		m.hookMu.Unlock()
		for _, fn := range hooks {
			fn(e)
		}
	case openxr.EventInteractionProfileChanged:
		m.logger.Debug("interaction profile changed")
	default:
		m.logger.Debug("unhandled event", "event", openxr.EventName(ev))
	}
	return nil
}

func (m *StateMachine) onState(e openxr.EventSessionStateChanged) error {
	s := m.Session()
	if s == nil || e.Session != s.Handle() {
		m.logger.Debug("state change for unknown session ignored", "state", e.State)
		return nil
	}

	m.mu.Lock()
	from := m.status
	to := Transition(from, e.State)
	m.status, m.state = to, e.State
	m.mu.Unlock()
	m.logger.Info("session state changed", "session", s.ID(), "state", e.State, "from", from, "to", to)
	m.publish(StateChanged{Instance: m.inst.ID(), Session: s.ID(), From: from, To: to, State: e.State, Time: e.Time})

	switch e.State {
	case openxr.SessionStateReady:
		if err := s.Begin(); err != nil {
			return err
		}
		m.mu.Lock()
		m.needsEnd = true
		m.mu.Unlock()
	case openxr.SessionStateStopping:
		m.mu.Lock()
		pending := m.needsEnd
		m.needsEnd = false
		m.mu.Unlock()
		if !pending {
			m.logger.Debug("session already ended in this stopping episode")
			return nil
		}
		return m.end(s)
	case openxr.SessionStateExiting:
		m.destroy(s, e.State, e.Time, StatusAvailable)
	case openxr.SessionStateLossPending:
		m.inst.MarkLost()
		m.destroy(s, e.State, e.Time, StatusUnavailable)
	}
	return nil
}

// end runs the pre-end hooks around xrEndSession.
func (m *StateMachine) end(s Session) error {
	m.hookMu.Lock()
	hooks := append([]EndHook{}, m.beforeEnd...)
	m.hookMu.Unlock()
	for _, fn := range hooks {
		if after := fn(s); after != nil {
			defer after()
		}
	}
	return s.End()
}

// Abandon tears the attached session down after a frame call reported it lost,
// without waiting for the runtime's events. A lost instance additionally leaves
// the machine unavailable.
//
// Parameters:
//   - instanceLost: true when the instance itself was lost
func (m *StateMachine) Abandon(instanceLost bool) {
	if instanceLost {
		m.lose(0)
		return
	}
	if s := m.Session(); s != nil {
		m.destroy(s, openxr.SessionStateLossPending, 0, StatusAvailable)
	}
}

// lose tears everything down after the instance was lost.
func (m *StateMachine) lose(t openxr.Time) {
	m.inst.MarkLost()
	if s := m.Session(); s != nil {
		m.destroy(s, openxr.SessionStateLossPending, t, StatusUnavailable)
		return
	}
	m.mu.Lock()
	from := m.status
	m.status = StatusUnavailable
	m.mu.Unlock()
	if from != StatusUnavailable {
		m.publish(StateChanged{Instance: m.inst.ID(), From: from, To: StatusUnavailable, Time: t})
	}
}

// destroy runs the teardown hooks, destroys the session and detaches it.
func (m *StateMachine) destroy(s Session, reason openxr.SessionState, t openxr.Time, next Status) {
	m.hookMu.Lock()
	hooks := append([]TeardownFunc{}, m.teardown...)
	m.hookMu.Unlock()
	for _, fn := range hooks {
		fn(s, reason)
	}
	if err := s.Destroy(); err != nil {
		m.logger.Warn("session teardown", "session", s.ID(), "err", err)
	}

	m.mu.Lock()
	from := m.status
	m.session = nil
	m.needsEnd = false
	m.status = next
	m.mu.Unlock()
	m.logger.Info("session torn down", "session", s.ID(), "reason", reason, "status", next)
	m.publish(StateChanged{Instance: m.inst.ID(), From: from, To: next, Time: t})
}

func (m *StateMachine) publish(ev StateChanged) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
			m.logger.Warn("state subscriber full, event dropped", "to", ev.To)
		}
	}
}
