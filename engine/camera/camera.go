// Package camera turns poses into view and projection matrices. An eye camera
// follows a located headset view, with the asymmetric field of view the runtime
// reports for that eye; a flat camera is a conventional look-at perspective camera
// for the desktop window.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

type cameraImpl struct {
	mu sync.Mutex

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	position [3]float32
	target   [3]float32

	// eye is set once SetView was called; the camera then follows pose and eyeFov.
	eye    bool
	pose   openxr.Posef
	eyeFov openxr.Fovf

	viewMatrix              [16]float32
	projectionMatrix        [16]float32
	viewProjectionMatrix    [16]float32
	inverseProjectionMatrix [16]float32
}

// Camera defines the interface for the camera system.
type Camera interface {
	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance. Values <= Near mean an infinite far plane.
	Far() float32

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// Fov returns the vertical field of view of the flat projection in radians.
	Fov() float32

	// SetFov sets the vertical field of view of the flat projection.
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height) of the flat projection.
	Aspect() float32

	// SetAspect sets the aspect ratio of the flat projection.
	SetAspect(aspect float32)

	// LookAt places a flat camera at position looking towards target.
	// The camera leaves eye mode.
	//
	// Parameters:
	//   - position: camera position in world space
	//   - target: point the camera looks at
	LookAt(position, target [3]float32)

	// SetView makes the camera follow a located eye: the view matrix is the
	// inverse of the eye pose and the projection uses the eye's four angles.
	//
	// Parameters:
	//   - v: the located view
	SetView(v openxr.View)

	// IsEye reports whether the camera follows an eye view.
	IsEye() bool

	// Pose returns the eye pose last set by SetView.
	Pose() openxr.Posef

	// EyeFov returns the eye field of view last set by SetView.
	EyeFov() openxr.Fovf

	// ViewMatrix returns the world-to-view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the view-to-clip matrix (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	ViewProjectionMatrix() [16]float32

	// InverseProjectionMatrix returns the inverse of ProjectionMatrix.
	InverseProjectionMatrix() [16]float32

	// Frustum returns the world-space culling planes.
	Frustum() common.Frustum

	// Uniform returns the GPU uniform for this camera.
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a flat camera at (0, 0, 3) looking at the origin.
// Call SetView to turn it into an eye camera.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:       [3]float32{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0), // radians
		aspect:   1.0,
		near:     0.05,
		far:      100.0,
		position: [3]float32{0, 0, 3},
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(position, target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = false
	c.position = position
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetView(v openxr.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = true
	c.pose = v.Pose
	c.eyeFov = v.Fov
	c.position = [3]float32{v.Pose.Position.X, v.Pose.Position.Y, v.Pose.Position.Z}
	c.updateMatrices()
}

func (c *cameraImpl) IsEye() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Pose() openxr.Posef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) EyeFov() openxr.Fovf {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eyeFov
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix[:])
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{ViewProj: c.viewProjectionMatrix, CameraPosition: c.position}
}

// updateMatrices recalculates the view, projection, view-projection, and inverse projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.eye {
		p, q := c.pose.Position, c.pose.Orientation
		common.InversePoseMatrix(c.viewMatrix[:], [3]float32{p.X, p.Y, p.Z}, [4]float32{q.X, q.Y, q.Z, q.W})
		common.ProjectionFov(c.projectionMatrix[:],
			c.eyeFov.AngleLeft, c.eyeFov.AngleRight, c.eyeFov.AngleUp, c.eyeFov.AngleDown,
			c.near, c.far,
		)
	} else {
		common.LookAt(c.viewMatrix[:],
			c.position[0], c.position[1], c.position[2],
			c.target[0], c.target[1], c.target[2],
			c.up[0], c.up[1], c.up[2],
		)
		common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	}

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Invert4(c.inverseProjectionMatrix[:], c.projectionMatrix[:])
}
