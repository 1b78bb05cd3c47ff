package openxr

// Event is one record drained from the runtime event queue by PollEvent.
type Event interface {
	eventType() string
}

// EventSessionStateChanged is XrEventDataSessionStateChanged.
type EventSessionStateChanged struct {
	Session Session
	State   SessionState
	Time    Time
}

// EventInstanceLossPending is XrEventDataInstanceLossPending.
type EventInstanceLossPending struct {
	LossTime Time
}

// EventEventsLost is XrEventDataEventsLost.
type EventEventsLost struct {
	LostEventCount uint32
}

// EventReferenceSpaceChangePending is XrEventDataReferenceSpaceChangePending.
type EventReferenceSpaceChangePending struct {
	Session             Session
	ReferenceSpaceType  ReferenceSpaceType
	ChangeTime          Time
	PoseValid           bool
	PoseInPreviousSpace Posef
}

// EventInteractionProfileChanged is XrEventDataInteractionProfileChanged.
type EventInteractionProfileChanged struct {
	Session Session
}

// EventUnknown wraps any record type the engine does not decode.
type EventUnknown struct {
	StructureType int32
}

func (EventSessionStateChanged) eventType() string         { return "session_state_changed" }
func (EventInstanceLossPending) eventType() string         { return "instance_loss_pending" }
func (EventEventsLost) eventType() string                  { return "events_lost" }
func (EventReferenceSpaceChangePending) eventType() string { return "reference_space_change_pending" }
func (EventInteractionProfileChanged) eventType() string   { return "interaction_profile_changed" }
func (EventUnknown) eventType() string                     { return "unknown" }

// EventName returns a stable short name for an event, used in logs.
func EventName(e Event) string {
	if e == nil {
		return "none"
	}
	return e.eventType()
}
