package space

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Recenter follows XrEventDataReferenceSpaceChangePending for one reference space.
// The runtime moves the space's origin at ChangeTime; until then the change is
// pending, afterwards Take hands it out once so content anchored to the old
// origin can be moved by PoseInPreviousSpace.
type Recenter struct {
	mu      sync.Mutex
	session openxr.Session
	kind    openxr.ReferenceSpaceType
	pending *openxr.EventReferenceSpaceChangePending
}

// NewRecenter watches changes of kind in session.
func NewRecenter(session openxr.Session, kind openxr.ReferenceSpaceType) *Recenter {
	return &Recenter{session: session, kind: kind}
}

// Notify records a change event. Events for other sessions or space types are ignored.
//
// Returns:
//   - bool: true if the event concerns the watched space
func (r *Recenter) Notify(ev openxr.EventReferenceSpaceChangePending) bool {
	if ev.Session != r.session || ev.ReferenceSpaceType != r.kind {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &ev
	return true
}

// Take returns the recorded change once its change time has been reached.
//
// Parameters:
//   - now: the current frame's display time
//
// Returns:
//   - openxr.EventReferenceSpaceChangePending: the change
//   - bool: false when nothing is due
func (r *Recenter) Take(now openxr.Time) (openxr.EventReferenceSpaceChangePending, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil || now < r.pending.ChangeTime {
		return openxr.EventReferenceSpaceChangePending{}, false
	}
	ev := *r.pending
	r.pending = nil
	return ev, true
}
