package common

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Lerp interpolates linearly between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// QuatToMatrix writes the rotation of the unit quaternion (x, y, z, w) into a
// column-major 4x4 matrix.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z, w: quaternion components
func QuatToMatrix(out []float32, x, y, z, w float32) {
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = 1 - 2*(yy+zz)
	out[1] = 2 * (xy + wz)
	out[2] = 2 * (xz - wy)
	out[3] = 0

	out[4] = 2 * (xy - wz)
	out[5] = 1 - 2*(xx+zz)
	out[6] = 2 * (yz + wx)
	out[7] = 0

	out[8] = 2 * (xz + wy)
	out[9] = 2 * (yz - wx)
	out[10] = 1 - 2*(xx+yy)
	out[11] = 0

	out[12], out[13], out[14], out[15] = 0, 0, 0, 1
}

// PoseMatrix builds translation * rotation * scale from a position, a unit
// quaternion and a scale.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - p: position
//   - q: quaternion as x, y, z, w
//   - s: scale
func PoseMatrix(out []float32, p [3]float32, q [4]float32, s [3]float32) {
	QuatToMatrix(out, q[0], q[1], q[2], q[3])
	for col := range 3 {
		for row := range 3 {
			out[col*4+row] *= s[col]
		}
	}
	out[12], out[13], out[14] = p[0], p[1], p[2]
}

// InversePoseMatrix builds the matrix mapping the pose's parent space into the
// pose's local space. For an eye pose this is the view matrix.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - p: position
//   - q: unit quaternion as x, y, z, w
func InversePoseMatrix(out []float32, p [3]float32, q [4]float32) {
	var r [16]float32
	QuatToMatrix(r[:], q[0], q[1], q[2], q[3])

	// The inverse of a rotation is its transpose.
	for col := range 3 {
		for row := range 3 {
			out[col*4+row] = r[row*4+col]
		}
	}
	out[3], out[7], out[11] = 0, 0, 0
	out[12] = -(out[0]*p[0] + out[4]*p[1] + out[8]*p[2])
	out[13] = -(out[1]*p[0] + out[5]*p[1] + out[9]*p[2])
	out[14] = -(out[2]*p[0] + out[6]*p[1] + out[10]*p[2])
	out[15] = 1
}

// ProjectionFov creates an asymmetric perspective projection from the four
// half-angles a headset reports per eye. Left and down angles are negative.
// Clip space depth is [0, 1] as in WebGPU; a far plane at or before near
// produces an infinite far plane.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right, up, down: view frustum angles in radians
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance
func ProjectionFov(out []float32, left, right, up, down, near, far float32) {
	tanL := float32(math.Tan(float64(left)))
	tanR := float32(math.Tan(float64(right)))
	tanU := float32(math.Tan(float64(up)))
	tanD := float32(math.Tan(float64(down)))
	w := tanR - tanL
	h := tanU - tanD

	for i := range 16 {
		out[i] = 0
	}
	out[0] = 2 / w
	out[5] = 2 / h
	out[8] = (tanR + tanL) / w
	out[9] = (tanU + tanD) / h
	out[11] = -1
	if far <= near {
		out[10] = -1
		out[14] = -near
		return
	}
	out[10] = far / (near - far)
	out[14] = (near * far) / (near - far)
}
