package space

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Joint is one located hand joint.
type Joint struct {
	Location
	Radius float32
}

// HandJoints is the per-frame state of one hand. When the hand is not tracked
// Active is false and every joint carries cleared flags, never stale ones.
type HandJoints struct {
	Active bool
	Joints [openxr.HandJointCount]Joint
}

// Joint returns the location of a named joint.
func (h HandJoints) Joint(j openxr.HandJoint) Joint {
	if j < 0 || int(j) >= openxr.HandJointCount {
		return Joint{}
	}
	return h.Joints[j]
}

// Hands locates both hands through XR_EXT_hand_tracking.
// A Hands created without the extension reports inactive hands every frame.
type Hands struct {
	rt       openxr.HandTrackingRuntime
	trackers [2]openxr.HandTracker
	state    [2]HandJoints
}

var hands = [2]openxr.HandEXT{openxr.HandLeft, openxr.HandRight}

// NewHands creates one hand tracker per hand.
//
// Parameters:
//   - rt: the runtime; hand tracking is disabled if it lacks the extension interface
//   - session: the session the trackers belong to
//   - enabled: whether XR_EXT_hand_tracking was enabled on the instance and supported by the system
//
// Returns:
//   - *Hands: the hand source, never nil
//   - error: the native failure creating a tracker
func NewHands(rt openxr.Runtime, session openxr.Session, enabled bool) (*Hands, error) {
	h := &Hands{}
	htr, ok := rt.(openxr.HandTrackingRuntime)
	if !enabled || !ok {
		return h, nil
	}
	for i, hand := range hands {
		t, err := htr.CreateHandTracker(session, hand)
		if err != nil {
			for _, created := range h.trackers[:i] {
				_ = htr.DestroyHandTracker(created)
			}
			return &Hands{}, err
		}
		h.trackers[i] = t
	}
	h.rt = htr
	return h, nil
}

// Enabled reports whether hand trackers exist.
func (h *Hands) Enabled() bool { return h.rt != nil }

// Locate refreshes both hands at the given time. A failed or inactive hand is cleared.
//
// Parameters:
//   - base: the reference space
//   - time: the frame's query time
//
// Returns:
//   - error: the joined native failures
func (h *Hands) Locate(base Space, time openxr.Time) error {
	if h.rt == nil {
		h.state = [2]HandJoints{}
		return nil
	}
	var errs []error
	for i, t := range h.trackers {
		locs, err := h.rt.LocateHandJoints(t, base.Handle, time)
		if err != nil {
			h.state[i] = HandJoints{}
			errs = append(errs, err)
			continue
		}
		h.state[i] = fromJointLocations(locs)
	}
	return errors.Join(errs...)
}

// Hand returns the last located state of a hand.
func (h *Hands) Hand(hand openxr.HandEXT) HandJoints {
	switch hand {
	case openxr.HandLeft:
		return h.state[0]
	case openxr.HandRight:
		return h.state[1]
	}
	return HandJoints{}
}

// Destroy destroys both trackers.
func (h *Hands) Destroy() error {
	if h.rt == nil {
		return nil
	}
	var errs []error
	for _, t := range h.trackers {
		if err := h.rt.DestroyHandTracker(t); err != nil {
			errs = append(errs, err)
		}
	}
	h.rt = nil
	h.state = [2]HandJoints{}
	return errors.Join(errs...)
}

func fromJointLocations(locs openxr.HandJointLocations) HandJoints {
	if !locs.IsActive {
		return HandJoints{}
	}
	out := HandJoints{Active: true}
	for i, j := range locs.Joints {
		out.Joints[i] = Joint{
			Location: FromSpaceLocation(openxr.SpaceLocation{Flags: j.Flags, Pose: j.Pose}),
			Radius:   j.Radius,
		}
	}
	return out
}
