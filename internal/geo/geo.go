package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dustline/arena/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// GEO POINTS
// Arena positions are stored as XYZ points with the ground plane in XY and
// height in Z, so a stored point reads like a map: X east, Y (world Z) along
// the arena's depth, Z up.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromVector converts an arena position to a storage point.
func PointFromVector(v core.Vector3) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X, Y: v.Z},
		Z:    v.Y,
		Type: geom.DimXYZ,
	})
}

// VectorFromPoint is the inverse of PointFromVector. Empty points map to the origin.
func VectorFromPoint(p geom.Point) core.Vector3 {
	c, ok := p.Coordinates()
	if !ok {
		return core.Vector3{}
	}
	return core.Vector3{X: c.XY.X, Y: c.Z, Z: c.XY.Y}
}

// ParseVector parses "x,y,z" (or "x,z" on the floor) into a Vector3.
func ParseVector(coords string) (core.Vector3, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Vector3{}, ErrInvalidCoordinates
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.Vector3{}, ErrInvalidCoordinates
		}
		vals[i] = f
	}
	if len(vals) == 2 {
		return core.Vector3{X: vals[0], Z: vals[1]}, nil
	}
	return core.Vector3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}
