// Package arena defines the static maps a match is played on: walkable
// bounds, box obstacles and spawn points.
package arena

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/internal/kinematics"
	"github.com/dustline/arena/internal/spawn"
	"github.com/dustline/arena/pkg/core"
	"github.com/spf13/viper"
)

// ErrInvalidLayout is returned for layouts that cannot host a match.
var ErrInvalidLayout = errors.New("invalid arena layout")

// Box is a floor-standing obstacle as written in layout files.
type Box struct {
	X      float64 `json:"x" mapstructure:"x"`
	Z      float64 `json:"z" mapstructure:"z"`
	Width  float64 `json:"width" mapstructure:"width"`
	Depth  float64 `json:"depth" mapstructure:"depth"`
	Height float64 `json:"height" mapstructure:"height"`
	Y      float64 `json:"y" mapstructure:"y"` // base height, 0 for the floor
}

// AABB converts b to collision geometry.
func (b Box) AABB() geo.AABB {
	return geo.BoxOnFloor(b.X, b.Z, b.Width, b.Depth, b.Height, b.Y)
}

// Point is a spawn point as written in layout files.
type Point struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	Z float64 `json:"z" mapstructure:"z"`
}

// Layout is one arena map.
type Layout struct {
	Name        string            `json:"name" mapstructure:"name"`
	Bounds      kinematics.Bounds `json:"bounds" mapstructure:"bounds"`
	Boxes       []Box             `json:"boxes" mapstructure:"boxes"`
	SpawnPoints []Point           `json:"spawnPoints" mapstructure:"spawnPoints"`
}

// Obstacles returns the collision boxes of l.
func (l Layout) Obstacles() []geo.AABB {
	out := make([]geo.AABB, 0, len(l.Boxes))
	for _, b := range l.Boxes {
		out = append(out, b.AABB())
	}
	return out
}

// Spawns returns the spawn points of l in file order.
func (l Layout) Spawns() []core.Vector3 {
	out := make([]core.Vector3, 0, len(l.SpawnPoints))
	for _, p := range l.SpawnPoints {
		out = append(out, core.Vector3{X: p.X, Y: p.Y, Z: p.Z})
	}
	return out
}

// World returns the simulation view of l.
func (l Layout) World() combat.World {
	return combat.World{
		Obstacles:   l.Obstacles(),
		Bounds:      l.Bounds,
		SpawnPoints: l.Spawns(),
	}
}

// Validate checks that l can host a match. Unsafe spawn points are reported
// as warnings, not errors, since spawn selection falls back on its own.
func (l Layout) Validate() (warnings []string, err error) {
	b := l.Bounds
	if !(b.MinX < b.MaxX) || !(b.MinZ < b.MaxZ) {
		return nil, fmt.Errorf("%w %q: empty bounds", ErrInvalidLayout, l.Name)
	}
	if len(l.SpawnPoints) == 0 {
		return nil, fmt.Errorf("%w %q: no spawn points", ErrInvalidLayout, l.Name)
	}
	for i, box := range l.Boxes {
		if box.Width < 0 || box.Depth < 0 || box.Height < 0 {
			return nil, fmt.Errorf("%w %q: box %d has a negative size", ErrInvalidLayout, l.Name, i)
		}
	}

	obstacles := l.Obstacles()
	for i, p := range l.Spawns() {
		if p.X < b.MinX || p.X > b.MaxX || p.Z < b.MinZ || p.Z > b.MaxZ {
			warnings = append(warnings, fmt.Sprintf("spawn %d lies outside the bounds", i))
			continue
		}
		if !spawn.IsSpawnSafe(p, obstacles) {
			warnings = append(warnings, fmt.Sprintf("spawn %d overlaps an obstacle", i))
		}
	}
	return warnings, nil
}

// Builtin returns the named built-in layout.
func Builtin(name string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dust":
		return Dust(), true
	case "yard":
		return Yard(), true
	default:
		return Layout{}, false
	}
}

// Dust is the default 80x80 arena: a central block, four crates and two
// long cover walls, with eight spawns on a ring.
func Dust() Layout {
	return Layout{
		Name:   "dust",
		Bounds: kinematics.Bounds{MinX: -40, MaxX: 40, MinZ: -40, MaxZ: 40},
		Boxes: []Box{
			{X: 0, Z: 0, Width: 6, Depth: 6, Height: 3},
			{X: -10, Z: -10, Width: 2, Depth: 2, Height: 1.4},
			{X: 10, Z: -10, Width: 2, Depth: 2, Height: 1.4},
			{X: -10, Z: 10, Width: 2, Depth: 2, Height: 1.4},
			{X: 10, Z: 10, Width: 2, Depth: 2, Height: 1.4},
			{X: 0, Z: -30, Width: 16, Depth: 1, Height: 2.5},
			{X: 0, Z: 30, Width: 16, Depth: 1, Height: 2.5},
		},
		SpawnPoints: []Point{
			{X: -20, Z: -20}, {X: 0, Z: -22}, {X: 20, Z: -20}, {X: 22, Z: 0},
			{X: 20, Z: 20}, {X: 0, Z: 22}, {X: -20, Z: 20}, {X: -22, Z: 0},
		},
	}
}

// Yard is a small close-quarters arena.
func Yard() Layout {
	return Layout{
		Name:   "yard",
		Bounds: kinematics.Bounds{MinX: -15, MaxX: 15, MinZ: -15, MaxZ: 15},
		Boxes: []Box{
			{X: -4, Z: 0, Width: 1, Depth: 8, Height: 2},
			{X: 4, Z: 0, Width: 1, Depth: 8, Height: 2},
			{X: 0, Z: 0, Width: 2, Depth: 2, Height: 1},
		},
		SpawnPoints: []Point{
			{X: -12, Z: -12}, {X: 12, Z: -12}, {X: 12, Z: 12}, {X: -12, Z: 12},
		},
	}
}

// LoadFile reads a layout from a JSON or YAML file. A separate viper
// instance is used so layout keys never mix with client settings.
func LoadFile(path string) (Layout, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Layout{}, fmt.Errorf("error reading layout file: %w", err)
	}

	var l Layout
	if err := v.Unmarshal(&l); err != nil {
		return Layout{}, fmt.Errorf("error decoding layout file: %w", err)
	}
	if _, err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Resolve returns the layout at path when set, else the built-in layout for
// mapName.
func Resolve(path, mapName string) (Layout, error) {
	if path != "" {
		return LoadFile(path)
	}
	l, ok := Builtin(mapName)
	if !ok {
		return Layout{}, fmt.Errorf("%w: unknown map %q", ErrInvalidLayout, mapName)
	}
	return l, nil
}
