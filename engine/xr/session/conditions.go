package session

// Condition gates a system: the system runs only when it returns true.
type Condition func() bool

// And is true when every condition is true.
func And(conds ...Condition) Condition {
	return func() bool {
		for _, c := range conds {
			if !c() {
				return false
			}
		}
		return true
	}
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return func() bool { return !c() }
}

// InstanceCreated is true while the instance is usable.
func (m *StateMachine) InstanceCreated() bool {
	return m.Status() != StatusUnavailable && m.inst.Valid()
}

// SessionCreated is true while a session is attached.
func (m *StateMachine) SessionCreated() bool {
	return m.Session() != nil
}

// SessionReady is true while the runtime reports the session ready to begin.
func (m *StateMachine) SessionReady() bool {
	return m.Status() == StatusReady
}

// SessionRunning is true between a successful Begin and the End of the next stopping episode.
func (m *StateMachine) SessionRunning() bool {
	s := m.Session()
	return s != nil && s.Running()
}

// InStatus returns a condition true while the status is one of statuses.
func (m *StateMachine) InStatus(statuses ...Status) Condition {
	return func() bool {
		cur := m.Status()
		for _, s := range statuses {
			if cur == s {
				return true
			}
		}
		return false
	}
}
