package common

import "math"

// Plane is the set of points p with Normal·p + Distance = 0. Points where the
// sum is positive are on the inner side.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// SignedDistance returns the distance of p from the plane, positive inside.
func (pl Plane) SignedDistance(p [3]float32) float32 {
	return pl.Normal[0]*p[0] + pl.Normal[1]*p[1] + pl.Normal[2]*p[2] + pl.Distance
}

// Frustum holds six inward-facing culling planes, indexed by the Frustum* constants.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustumFromMatrix derives world-space culling planes from a column-major
// view-projection matrix with a zero-to-one depth range, as built by Perspective
// and ProjectionFov. Each side plane is w ± x (or y); near is z alone, far is w - z.
// An infinite far projection yields a far plane that never culls.
//
// Parameters:
//   - viewProj: the view-projection matrix (16 elements)
//
// Returns:
//   - Frustum: the planes with unit-length normals
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	row := func(r int) [4]float32 {
		return [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	x, y, z, w := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeOf(w, x, 1)
	f.Planes[FrustumRight] = planeOf(w, x, -1)
	f.Planes[FrustumBottom] = planeOf(w, y, 1)
	f.Planes[FrustumTop] = planeOf(w, y, -1)
	f.Planes[FrustumNear] = planeOf([4]float32{}, z, 1)
	f.Planes[FrustumFar] = planeOf(w, z, -1)
	return f
}

// planeOf builds the plane base + sign*r and normalizes it.
func planeOf(base, r [4]float32, sign float32) Plane {
	pl := Plane{
		Normal:   [3]float32{base[0] + sign*r[0], base[1] + sign*r[1], base[2] + sign*r[2]},
		Distance: base[3] + sign*r[3],
	}
	n := pl.Normal
	if l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))); l > 0 {
		pl.Normal = [3]float32{n[0] / l, n[1] / l, n[2] / l}
		pl.Distance /= l
	}
	return pl
}

// ContainsPoint reports whether p is inside all six planes.
//
// Parameters:
//   - p: the world-space point
//
// Returns:
//   - bool: true if p is inside the frustum
func (f *Frustum) ContainsPoint(p [3]float32) bool {
	for _, pl := range f.Planes {
		if pl.SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsSphere reports whether a sphere touches the inside of the frustum.
//
// Parameters:
//   - center: the world-space center
//   - radius: the sphere radius
//
// Returns:
//   - bool: false only when the sphere lies fully outside one plane
func (f *Frustum) ContainsSphere(center [3]float32, radius float32) bool {
	for _, pl := range f.Planes {
		if pl.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}
