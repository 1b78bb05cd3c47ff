package handoff

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
)

// Creator produces a per-session resource and decides which contexts see it.
// Create runs for every creator before any Publish call, so a creator never
// publishes a resource while a sibling failed to create its own.
type Creator interface {
	// Name identifies the creator in logs.
	Name() string

	// Create builds the resource for a new session.
	Create(s session.Session) error

	// PublishMain places the resource into the main context.
	PublishMain(main *Store)

	// PublishRender places the resource into the render context.
	PublishRender(render *Store)

	// Remove takes the resource out of both contexts and releases it.
	// It is also called for a created but never published resource.
	Remove(main, render *Store)
}

// Resource is a Creator for one value of T that both contexts share.
type Resource[T any] struct {
	name    string
	create  func(session.Session) (T, error)
	release func(T)

	value T
	live  bool
}

var _ Creator = &Resource[int]{}

// NewResource creates a Resource.
//
// Parameters:
//   - name: the creator name
//   - create: builds the value for a session
//   - release: frees the value on removal; may be nil
//
// Returns:
//   - *Resource[T]: the creator
func NewResource[T any](name string, create func(session.Session) (T, error), release func(T)) *Resource[T] {
	return &Resource[T]{name: name, create: create, release: release}
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) Create(s session.Session) error {
	v, err := r.create(s)
	if err != nil {
		return err
	}
	r.value, r.live = v, true
	return nil
}

func (r *Resource[T]) PublishMain(main *Store) {
	if r.live {
		Insert(main, r.value)
	}
}

func (r *Resource[T]) PublishRender(render *Store) {
	if r.live {
		Insert(render, r.value)
	}
}

func (r *Resource[T]) Remove(main, render *Store) {
	Remove[T](main)
	Remove[T](render)
	if r.live && r.release != nil {
		r.release(r.value)
	}
	var zero T
	r.value, r.live = zero, false
}

// Value returns the live value.
//
// Returns:
//   - T: the value
//   - bool: false between Remove and the next Create
func (r *Resource[T]) Value() (T, bool) { return r.value, r.live }
