package game_object

import "github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"

// GameObjectBuilderOption is a functional option applied by NewGameObject.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the object's identifier instead of the next generated one.
//
// Parameters:
//   - id: the unique identifier
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithName sets the object's name.
//
// Parameters:
//   - name: the name used in logs
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the name
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to render the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithPosition sets the initial translation.
//
// Parameters:
//   - x, y, z: translation in meters
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Translation = openxr.Vector3f{X: x, Y: y, Z: z}
	}
}

// WithRotation sets the initial orientation.
//
// Parameters:
//   - q: unit quaternion
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation
func WithRotation(q openxr.Quaternionf) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Rotation = q
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Scale = openxr.Vector3f{X: sx, Y: sy, Z: sz}
	}
}
