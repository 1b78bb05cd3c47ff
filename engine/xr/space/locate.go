package space

import "github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"

// Location is a located pose with independent validity and tracking bits.
// Tracked bits are a confidence hint; only the valid bits decide whether a
// component may be used.
type Location struct {
	Pose               openxr.Posef
	PositionValid      bool
	PositionTracked    bool
	OrientationValid   bool
	OrientationTracked bool
	Velocity           *openxr.SpaceVelocity
}

// FromSpaceLocation unpacks the flag word of a native location.
func FromSpaceLocation(l openxr.SpaceLocation) Location {
	return Location{
		Pose:               l.Pose,
		PositionValid:      l.Flags.Has(openxr.SpaceLocationPositionValid),
		PositionTracked:    l.Flags.Has(openxr.SpaceLocationPositionTracked),
		OrientationValid:   l.Flags.Has(openxr.SpaceLocationOrientationValid),
		OrientationTracked: l.Flags.Has(openxr.SpaceLocationOrientationTracked),
		Velocity:           l.Velocity,
	}
}

// Flags packs the validity and tracking bits back into the native flag word.
func (l Location) Flags() openxr.SpaceLocationFlags {
	var f openxr.SpaceLocationFlags
	if l.OrientationValid {
		f |= openxr.SpaceLocationOrientationValid
	}
	if l.PositionValid {
		f |= openxr.SpaceLocationPositionValid
	}
	if l.OrientationTracked {
		f |= openxr.SpaceLocationOrientationTracked
	}
	if l.PositionTracked {
		f |= openxr.SpaceLocationPositionTracked
	}
	return f
}

// Locate resolves space relative to base at the given time.
//
// Parameters:
//   - rt: the runtime
//   - space: the space to locate
//   - base: the space the result is expressed in
//   - time: the display time to predict for
//   - withVelocity: also request linear and angular velocity
//
// Returns:
//   - Location: the located pose and its flags
//   - error: the native failure, if any
func Locate(rt openxr.Runtime, space, base Space, time openxr.Time, withVelocity bool) (Location, error) {
	l, err := rt.LocateSpace(space.Handle, base.Handle, time, withVelocity)
	if err != nil {
		return Location{}, err
	}
	return FromSpaceLocation(l), nil
}

// Transform is the engine-side placement of a tracked object.
type Transform struct {
	Translation openxr.Vector3f
	Rotation    openxr.Quaternionf
	Scale       openxr.Vector3f
}

// IdentityTransform is a transform at the origin with unit scale.
var IdentityTransform = Transform{Rotation: openxr.IdentityQuaternion, Scale: openxr.Vector3f{X: 1, Y: 1, Z: 1}}

// Apply writes the valid components of loc into t. A component whose valid bit
// is clear leaves the corresponding field of t untouched; tracked bits are ignored.
//
// Parameters:
//   - loc: the located pose
//   - t: the transform to update
//
// Returns:
//   - bool: true if any component was written
func Apply(loc Location, t *Transform) bool {
	wrote := false
	if loc.PositionValid {
		t.Translation = loc.Pose.Position
		wrote = true
	}
	if loc.OrientationValid {
		t.Rotation = loc.Pose.Orientation
		wrote = true
	}
	return wrote
}

// Retain merges a freshly located pose into the previous one: each component
// whose valid bit is clear keeps its previous value.
//
// Parameters:
//   - prev: the last known pose
//   - next: the new pose
//   - flags: validity bits of next
//
// Returns:
//   - openxr.Posef: the merged pose
func Retain(prev, next openxr.Posef, flags openxr.SpaceLocationFlags) openxr.Posef {
	out := prev
	if flags.Has(openxr.SpaceLocationPositionValid) {
		out.Position = next.Position
	}
	if flags.Has(openxr.SpaceLocationOrientationValid) {
		out.Orientation = next.Orientation
	}
	return out
}
