package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
)

func TestGameObjectIsATrackingTarget(t *testing.T) {
	// Given an object with a custom scale
	obj := NewGameObject(WithName("controller"), WithScale(2, 2, 2))

	// When a location with only the position valid is applied through the target interface
	var target space.Target = obj
	loc := space.Location{
		Pose:          openxr.Posef{Orientation: openxr.Quaternionf{Y: 1}, Position: openxr.Vector3f{X: 1, Y: 1.2, Z: -0.5}},
		PositionValid: true,
	}
	target.UpdateTransform(func(tr *space.Transform) { space.Apply(loc, tr) })

	// Then the position moved, the orientation and scale were kept
	if x, y, z := obj.Position(); x != 1 || y != 1.2 || z != -0.5 {
		t.Errorf("position = (%v, %v, %v)", x, y, z)
	}
	if obj.Rotation() != openxr.IdentityQuaternion {
		t.Errorf("rotation changed to %+v without a valid orientation", obj.Rotation())
	}
	if sx, _, _ := obj.Scale(); sx != 2 {
		t.Errorf("scale = %v", sx)
	}
	if obj.Updates() != 1 {
		t.Errorf("updates = %d, want 1", obj.Updates())
	}
}

func TestModelMatrix(t *testing.T) {
	obj := NewGameObject(WithPosition(1, 2, 3), WithScale(2, 3, 4))
	m := obj.ModelMatrix()

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("scale diagonal = %v %v %v", m[0], m[5], m[10])
	}
	if m[12] != 1 || m[13] != 2 || m[14] != 3 || m[15] != 1 {
		t.Errorf("translation column = %v", m[12:])
	}
}

func TestIDs(t *testing.T) {
	a, b := NewGameObject(), NewGameObject()
	if a.ID() == b.ID() {
		t.Error("generated IDs collide")
	}
	if NewGameObject(WithID(42)).ID() != 42 {
		t.Error("WithID ignored")
	}
	if !a.Enabled() || NewGameObject(WithEnabled(false)).Enabled() {
		t.Error("enabled state not applied")
	}
}
