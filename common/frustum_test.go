package common

import (
	"math"
	"testing"
)

func TestFrustumZeroToOneDepth(t *testing.T) {
	// Given a camera at the origin looking down -Z with near 0.1 and far 100
	var proj [16]float32
	Perspective(proj[:], math.Pi/2, 1, 0.1, 100)
	f := ExtractFrustumFromMatrix(proj[:])

	tests := []struct {
		name   string
		point  [3]float32
		inside bool
	}{
		{"straight ahead", [3]float32{0, 0, -5}, true},
		{"just past near", [3]float32{0, 0, -0.11}, true},
		{"between eye and near plane", [3]float32{0, 0, -0.09}, false},
		{"behind", [3]float32{0, 0, 5}, false},
		{"beyond far", [3]float32{0, 0, -101}, false},
		{"left of the 90 degree cone", [3]float32{-3, 0, -2}, false},
		{"above the cone", [3]float32{0, 3, -2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsPoint(tt.point); got != tt.inside {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.inside)
			}
		})
	}

	// The near plane sits 0.1 in front of the eye.
	if d := f.Planes[FrustumNear].SignedDistance([3]float32{0, 0, -0.1}); !near(d, 0) {
		t.Errorf("near plane distance at z=-0.1 = %v, want 0", d)
	}
}

func TestFrustumInfiniteFarNeverCulls(t *testing.T) {
	half := float32(math.Pi / 4)
	var proj [16]float32
	ProjectionFov(proj[:], -half, half, half, -half, 0.1, 0)
	f := ExtractFrustumFromMatrix(proj[:])

	if !f.ContainsPoint([3]float32{0, 0, -1e6}) {
		t.Error("distant point culled by an infinite far plane")
	}
}

func TestFrustumContainsSphere(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], math.Pi/2, 1, 0.1, 100)
	f := ExtractFrustumFromMatrix(proj[:])

	// A sphere centered just left of the cone still reaches inside it.
	center := [3]float32{-2.5, 0, -2}
	if f.ContainsPoint(center) {
		t.Fatal("center unexpectedly inside")
	}
	if !f.ContainsSphere(center, 1) {
		t.Error("sphere overlapping the left plane culled")
	}
	if f.ContainsSphere(center, 0.1) {
		t.Error("small sphere outside the left plane kept")
	}
}
