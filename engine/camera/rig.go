package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Rig holds one eye camera per located view.
type Rig struct {
	mu      sync.Mutex
	options []CameraBuilderOption
	eyes    []Camera
}

// NewRig creates an empty rig. Every eye camera it creates gets options.
func NewRig(options ...CameraBuilderOption) *Rig {
	return &Rig{options: options}
}

// Update points one camera at each view, creating cameras as views appear.
// Cameras beyond len(views) are dropped.
//
// Parameters:
//   - views: the views located for the current frame, in view order
//
// Returns:
//   - []Camera: the eye cameras, one per view
func (r *Rig) Update(views []openxr.View) []Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.eyes) < len(views) {
		r.eyes = append(r.eyes, NewCamera(r.options...))
	}
	r.eyes = r.eyes[:len(views)]
	for i, v := range views {
		r.eyes[i].SetView(v)
	}
	return append([]Camera(nil), r.eyes...)
}

// Eyes returns the cameras of the last Update.
func (r *Rig) Eyes() []Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Camera(nil), r.eyes...)
}
