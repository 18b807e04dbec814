package geo

import (
	"math"

	"github.com/dustline/arena/pkg/core"
)

// AABB is an axis-aligned static obstacle. Min <= Max on every axis.
type AABB struct {
	Min core.Vector3 `json:"min"`
	Max core.Vector3 `json:"max"`
}

// NewAABB builds a box from two opposite corners in any order.
func NewAABB(a, b core.Vector3) AABB {
	return AABB{
		Min: core.Vector3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: core.Vector3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// BoxOnFloor builds a box centred on (x, z) resting on floorY.
func BoxOnFloor(x, z, width, depth, height, floorY float64) AABB {
	return NewAABB(
		core.Vector3{X: x - width/2, Y: floorY, Z: z - depth/2},
		core.Vector3{X: x + width/2, Y: floorY + height, Z: z + depth/2},
	)
}

// Empty reports whether the box has no volume. Empty boxes never collide and
// never block a ray.
func (b AABB) Empty() bool {
	return !(b.Max.X > b.Min.X && b.Max.Y > b.Min.Y && b.Max.Z > b.Min.Z)
}

// OverlapsBand reports whether the box's Y range intersects [bottom, top].
func (b AABB) OverlapsBand(bottom, top float64) bool {
	return top > b.Min.Y && bottom < b.Max.Y
}

// ClosestXZ returns the point of the box footprint nearest to (x, z).
func (b AABB) ClosestXZ(x, z float64) (float64, float64) {
	return clamp(x, b.Min.X, b.Max.X), clamp(z, b.Min.Z, b.Max.Z)
}

// CylinderOverlaps reports whether an upright cylinder standing at base
// intersects the box in 3D.
func (b AABB) CylinderOverlaps(base core.Vector3, radius, height float64) bool {
	if b.Empty() || radius <= 0 || height <= 0 {
		return false
	}
	if !b.OverlapsBand(base.Y, base.Y+height) {
		return false
	}
	cx, cz := b.ClosestXZ(base.X, base.Z)
	dx := base.X - cx
	dz := base.Z - cz
	return dx*dx+dz*dz < radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
