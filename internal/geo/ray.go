package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon guards the slab test against division by a near-zero
// direction component.
const parallelEpsilon = 1e-12

// RayAABB returns the distance along dir at which a ray from origin enters
// box. dir should be unit length for the result to be in metres. A ray that
// starts inside the box hits at 0.
func RayAABB(origin, dir mgl64.Vec3, box AABB) (float64, bool) {
	if box.Empty() || dir.Len() < parallelEpsilon {
		return 0, false
	}

	lo := box.Min.Vec()
	hi := box.Max.Vec()
	tMin := 0.0
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := origin[axis]
		d := dir[axis]
		if math.Abs(d) < parallelEpsilon {
			if o < lo[axis] || o > hi[axis] {
				return 0, false
			}
			continue
		}
		invD := 1.0 / d
		t1 := (lo[axis] - o) * invD
		t2 := (hi[axis] - o) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}

// RaySphere returns the nearest non-negative distance along dir at which a
// ray from origin meets the sphere. A ray starting inside the sphere reports
// its exit distance.
func RaySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	a := dir.Dot(dir)
	if a < parallelEpsilon || radius <= 0 {
		return 0, false
	}

	oc := origin.Sub(center)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}
