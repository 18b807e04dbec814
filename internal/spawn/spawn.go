// Package spawn chooses spawn points that every peer can derive
// independently from the match code, player name and wave.
package spawn

import (
	"strconv"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/internal/util"
	"github.com/dustline/arena/pkg/core"
)

const (
	// FootprintRadius is the spawn safety cylinder radius. It is wider than
	// the collision radius so players do not appear touching a wall.
	FootprintRadius = 0.65
	// StandingHeight matches the kinematic standing height.
	StandingHeight = 1.8
)

// Seed is the string hashed to pick a spawn point.
func Seed(matchCode, playerName string, wave int) string {
	return matchCode + ":" + playerName + ":" + strconv.Itoa(wave)
}

// PickSpawnPoint deterministically chooses a point from points. The bool is
// false only when points is empty.
func PickSpawnPoint(matchCode, playerName string, points []core.Vector3, wave int) (core.Vector3, bool) {
	if len(points) == 0 {
		return core.Vector3{}, false
	}
	i := util.Bucket(util.RollingHash(Seed(matchCode, playerName, wave)), len(points))
	return points[i], true
}

// IsSpawnSafe reports whether a standing player footprint at point overlaps
// no obstacle.
func IsSpawnSafe(point core.Vector3, obstacles []geo.AABB) bool {
	for _, box := range obstacles {
		if box.CylinderOverlaps(point, FootprintRadius, StandingHeight) {
			return false
		}
	}
	return true
}

// ResolveSpawnPoint returns the picked point when it is safe, else the first
// safe point in list order, else the picked point anyway.
func ResolveSpawnPoint(matchCode, playerName string, points []core.Vector3, wave int, obstacles []geo.AABB) (core.Vector3, bool) {
	preferred, ok := PickSpawnPoint(matchCode, playerName, points, wave)
	if !ok {
		return preferred, false
	}
	if IsSpawnSafe(preferred, obstacles) {
		return preferred, true
	}
	for _, p := range points {
		if IsSpawnSafe(p, obstacles) {
			return p, true
		}
	}
	return preferred, true
}
