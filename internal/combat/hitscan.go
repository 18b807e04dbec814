package combat

import (
	"math"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// Hit volumes of a remote player, relative to its feet.
const (
	BodyCenterHeight = 1.04
	BodyRadius       = 0.62
	HeadRadius       = 0.36

	// HeadshotEpsilon lets a head hit win over a body hit at nearly the same
	// distance.
	HeadshotEpsilon = 0.06
)

// Target is a remote player as seen by the local hit-scan.
type Target struct {
	ID        string
	Name      string
	Position  core.Vector3
	Character core.CharacterKind
}

// Hit is the nearest target struck by one ray.
type Hit struct {
	TargetID string
	Distance float64
	Headshot bool
}

// HitScan traces one ray against static obstacles and remote players and
// returns the nearest player hit. An obstacle strictly closer than that
// player blocks the shot. A zero direction never hits.
func HitScan(origin, dir mgl64.Vec3, obstacles []geo.AABB, targets []Target) (Hit, bool) {
	if dir.Len() < 1e-12 {
		return Hit{}, false
	}
	dir = dir.Normalize()

	wall := math.Inf(1)
	for _, box := range obstacles {
		if t, ok := geo.RayAABB(origin, dir, box); ok && t < wall {
			wall = t
		}
	}

	var best Hit
	found := false
	for _, tg := range targets {
		feet := tg.Position.Vec()
		body := feet.Add(mgl64.Vec3{0, BodyCenterHeight, 0})
		head := feet.Add(mgl64.Vec3{0, tg.Character.HeadHeight(), 0})

		bodyT, bodyOK := geo.RaySphere(origin, dir, body, BodyRadius)
		headT, headOK := geo.RaySphere(origin, dir, head, HeadRadius)
		if !bodyOK && !headOK {
			continue
		}

		dist := math.Inf(1)
		if bodyOK {
			dist = bodyT
		}
		if headOK && headT < dist {
			dist = headT
		}
		if wall < dist {
			continue
		}
		if found && dist >= best.Distance {
			continue
		}

		best = Hit{
			TargetID: tg.ID,
			Distance: dist,
			Headshot: headOK && headT <= dist+HeadshotEpsilon,
		}
		found = true
	}

	return best, found
}
