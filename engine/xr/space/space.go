// Package space resolves tracked poses against a reference space and writes them
// into engine transforms without clobbering last-known-good data.
//
// A Space carries an explicit Ownership. Only owned spaces are destroyed; spaces
// borrowed from another subsystem (for example action spaces owned by an input
// layer) are left to their owner.
package space

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
)

// Ownership tells whether a Space handle may be destroyed by its holder.
type Ownership int

const (
	// Owned spaces are destroyed by Destroy.
	Owned Ownership = iota
	// Borrowed spaces are never destroyed by Destroy.
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// ErrNoReferenceSpace is returned when neither the requested reference space nor any fallback is supported.
var ErrNoReferenceSpace = errors.New("space: no supported reference space")

// Space is an ownership-tagged XrSpace handle.
type Space struct {
	Handle    openxr.Space
	Ownership Ownership
}

// Own wraps a handle the caller is responsible for destroying.
func Own(h openxr.Space) Space { return Space{Handle: h, Ownership: Owned} }

// Borrow wraps a handle owned elsewhere.
func Borrow(h openxr.Space) Space { return Space{Handle: h, Ownership: Borrowed} }

// IsNull reports whether the space wraps no handle.
func (s Space) IsNull() bool { return s.Handle == 0 }

// Destroy destroys the native space if it is owned. Borrowed and null spaces are left alone.
//
// Parameters:
//   - rt: the runtime that created the space
//
// Returns:
//   - error: the native failure, if any
func (s Space) Destroy(rt openxr.Runtime) error {
	if s.Ownership != Owned || s.IsNull() {
		return nil
	}
	return rt.DestroySpace(s.Handle)
}

// fallbacks lists, per reference space type, what to try when the runtime does not support it.
var fallbacks = map[openxr.ReferenceSpaceType][]openxr.ReferenceSpaceType{
	openxr.ReferenceSpaceLocalFloor: {openxr.ReferenceSpaceStage, openxr.ReferenceSpaceLocal},
	openxr.ReferenceSpaceStage:      {openxr.ReferenceSpaceLocal},
	openxr.ReferenceSpaceUnbounded:  {openxr.ReferenceSpaceStage, openxr.ReferenceSpaceLocal},
}

// CreateReference creates an owned reference space of the requested type, falling
// back to the closest supported type when the runtime lacks it.
//
// Parameters:
//   - rt: the runtime
//   - session: the session the space belongs to
//   - want: the requested reference space type
//   - pose: the pose of the new space's origin within the reference space
//   - logger: receives a warning when a fallback is used; may be nil
//
// Returns:
//   - Space: the owned space
//   - openxr.ReferenceSpaceType: the type actually created
//   - error: ErrNoReferenceSpace, or the native failure
func CreateReference(rt openxr.Runtime, session openxr.Session, want openxr.ReferenceSpaceType, pose openxr.Posef, logger *log.Logger) (Space, openxr.ReferenceSpaceType, error) {
	supported, err := rt.EnumerateReferenceSpaces(session)
	if err != nil {
		return Space{}, 0, fmt.Errorf("space: enumerate reference spaces: %w", err)
	}
	kind := want
	if !slices.Contains(supported, want) {
		kind = 0
		for _, f := range fallbacks[want] {
			if slices.Contains(supported, f) {
				kind = f
				break
			}
		}
		if kind == 0 {
			return Space{}, 0, fmt.Errorf("%w: %s", ErrNoReferenceSpace, want)
		}
		if logger != nil {
			logger.Warn("reference space unsupported, falling back", "requested", want, "using", kind)
		}
	}
	h, err := rt.CreateReferenceSpace(session, &openxr.ReferenceSpaceCreateInfo{ReferenceSpaceType: kind, PoseInReferenceSpace: pose})
	if err != nil {
		return Space{}, 0, fmt.Errorf("space: create %s: %w", kind, err)
	}
	return Own(h), kind, nil
}
