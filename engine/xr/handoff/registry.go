package handoff

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/charmbracelet/log"
)

// Registry runs the registered creators for every session as a two-phase commit:
// create everything, then publish everything. When a creator fails, the ones
// created before it are removed in reverse order and nothing is published.
type Registry struct {
	logger *log.Logger

	mu       sync.Mutex
	creators []Creator
	live     []Creator
}

// NewRegistry creates an empty registry.
//
// Parameters:
//   - l: the logger; nil uses the engine's component logger
//
// Returns:
//   - *Registry: the registry
func NewRegistry(l *log.Logger) *Registry {
	if l == nil {
		l = logger.For("xr.handoff")
	}
	return &Registry{logger: l}
}

// Register appends a creator. Creators registered while a session is live take
// effect with the next session.
func (r *Registry) Register(c Creator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators = append(r.creators, c)
}

// Names returns the creator names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.creators))
	for i, c := range r.creators {
		out[i] = c.Name()
	}
	return out
}

// Live reports whether a committed set of resources is published.
func (r *Registry) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live) > 0
}

// Commit creates every resource for a session and publishes them into both stores.
//
// Parameters:
//   - s: the new session
//   - main: the main-context store
//   - render: the render-context store
//
// Returns:
//   - error: the first creation failure, after the created resources were removed
func (r *Registry) Commit(s session.Session, main, render *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.live) > 0 {
		return fmt.Errorf("handoff: commit while %d resources are live", len(r.live))
	}

	created := make([]Creator, 0, len(r.creators))
	for _, c := range r.creators {
		if err := c.Create(s); err != nil {
			r.logger.Error("resource creation failed, rolling back", "creator", c.Name(), "err", err)
			for _, done := range slices.Backward(created) {
				done.Remove(main, render)
			}
			return fmt.Errorf("handoff: create %s: %w", c.Name(), err)
		}
		created = append(created, c)
	}

	for _, c := range created {
		c.PublishMain(main)
		c.PublishRender(render)
	}
	r.live = created
	r.logger.Debug("resources published", "count", len(created), "main", main.Name(), "render", render.Name())
	return nil
}

// Teardown removes the published resources in reverse creation order.
func (r *Registry) Teardown(main, render *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range slices.Backward(r.live) {
		c.Remove(main, render)
	}
	if len(r.live) > 0 {
		r.logger.Debug("resources removed", "count", len(r.live))
	}
	r.live = nil
}
