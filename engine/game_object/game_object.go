// Package game_object holds the engine's entities. An entity's placement is a
// space.Transform, so a tracked XR space can write located poses straight into it.
package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
)

// nextID hands out object IDs when none is given.
var nextID atomic.Uint64

type gameObject struct {
	id      uint64
	name    string
	enabled atomic.Bool

	mu        sync.RWMutex
	transform space.Transform
	updates   uint64
}

// GameObject defines the interface for an entity placed by a transform.
// It implements space.Target; the XR tracker writes into it from worker goroutines,
// so every accessor is safe for concurrent use.
type GameObject interface {
	space.Target

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's name.
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the object.
	SetEnabled(enabled bool)

	// Transform returns a copy of the current transform.
	Transform() space.Transform

	// SetTransform replaces the transform.
	SetTransform(t space.Transform)

	// Position returns the translation.
	Position() (x, y, z float32)

	// SetPosition sets the translation.
	SetPosition(x, y, z float32)

	// Rotation returns the orientation.
	Rotation() openxr.Quaternionf

	// SetRotation sets the orientation.
	SetRotation(q openxr.Quaternionf)

	// Scale returns the scale factors.
	Scale() (sx, sy, sz float32)

	// SetScale sets the scale factors.
	SetScale(sx, sy, sz float32)

	// ModelMatrix returns translation * rotation * scale (column-major).
	ModelMatrix() [16]float32

	// Updates counts the transform writes made through UpdateTransform.
	Updates() uint64
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:        nextID.Add(1),
		transform: space.IdentityTransform,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) UpdateTransform(fn func(t *space.Transform)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.transform)
	g.updates++
}

func (g *gameObject) Updates() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.updates
}

func (g *gameObject) Transform() space.Transform {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform
}

func (g *gameObject) SetTransform(t space.Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform = t
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.transform.Translation
	return p.X, p.Y, p.Z
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Translation = openxr.Vector3f{X: x, Y: y, Z: z}
}

func (g *gameObject) Rotation() openxr.Quaternionf {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform.Rotation
}

func (g *gameObject) SetRotation(q openxr.Quaternionf) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Rotation = q
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := g.transform.Scale
	return s.X, s.Y, s.Z
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Scale = openxr.Vector3f{X: sx, Y: sy, Z: sz}
}

func (g *gameObject) ModelMatrix() [16]float32 {
	t := g.Transform()
	var m [16]float32
	common.PoseMatrix(m[:],
		[3]float32{t.Translation.X, t.Translation.Y, t.Translation.Z},
		[4]float32{t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W},
		[3]float32{t.Scale.X, t.Scale.Y, t.Scale.Z},
	)
	return m
}
