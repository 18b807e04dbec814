package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/spawn"
	"github.com/dustline/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLayoutsAreValid(t *testing.T) {
	for _, name := range []string{"dust", "yard"} {
		l, ok := Builtin(name)
		require.True(t, ok, name)

		warnings, err := l.Validate()
		require.NoError(t, err, name)
		assert.Empty(t, warnings, name)
	}

	_, ok := Builtin("nowhere")
	assert.False(t, ok)
}

func TestDust_World(t *testing.T) {
	w := Dust().World()

	assert.Len(t, w.Obstacles, 7)
	assert.Len(t, w.SpawnPoints, 8)
	for _, box := range w.Obstacles {
		assert.False(t, box.Empty())
	}

	// the scenario spawn for DUST-SIM/Operator at wave 0
	p, ok := spawn.ResolveSpawnPoint("DUST-SIM", "Operator", w.SpawnPoints, 0, w.Obstacles)
	require.True(t, ok)
	assert.Equal(t, core.Vector3{X: -20, Z: -20}, p)

	s := combat.NewState("DUST-SIM", "id", "Operator", core.CharacterRanger, core.WeaponPistol, w)
	assert.Equal(t, p, s.Body.Position)
}

func TestValidate(t *testing.T) {
	l := Yard()
	l.SpawnPoints = nil
	_, err := l.Validate()
	assert.ErrorIs(t, err, ErrInvalidLayout)

	l = Yard()
	l.Bounds.MaxX = l.Bounds.MinX
	_, err = l.Validate()
	assert.ErrorIs(t, err, ErrInvalidLayout)

	l = Yard()
	l.Boxes = append(l.Boxes, Box{Width: -1})
	_, err = l.Validate()
	assert.ErrorIs(t, err, ErrInvalidLayout)

	l = Yard()
	l.SpawnPoints = append(l.SpawnPoints, Point{X: 0, Z: 0}, Point{X: 100})
	warnings, err := l.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"spawn 4 overlaps an obstacle", "spawn 5 lies outside the bounds"}, warnings)
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pit.json")
	layout := `{
		"name": "pit",
		"bounds": {"minX": -10, "maxX": 10, "minZ": -8, "maxZ": 8},
		"boxes": [{"x": 0, "z": 0, "width": 2, "depth": 3, "height": 1.5}],
		"spawnPoints": [{"x": -6, "z": 0}, {"x": 6, "y": 0, "z": 0}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(layout), 0644))

	l, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pit", l.Name)
	assert.Equal(t, -8.0, l.Bounds.MinZ)
	require.Len(t, l.Boxes, 1)
	assert.Equal(t, 3.0, l.Boxes[0].Depth)
	assert.Equal(t, []core.Vector3{{X: -6}, {X: 6}}, l.Spawns())

	box := l.Obstacles()[0]
	assert.Equal(t, core.Vector3{X: -1, Y: 0, Z: -1.5}, box.Min)
	assert.Equal(t, core.Vector3{X: 1, Y: 1.5, Z: 1.5}, box.Max)
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pit.yaml")
	layout := "name: pit\nbounds:\n  minX: -5\n  maxX: 5\n  minZ: -5\n  maxZ: 5\nspawnPoints:\n  - x: 1\n    z: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(layout), 0644))

	l, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []core.Vector3{{X: 1, Z: 2}}, l.Spawns())
	assert.Empty(t, l.Boxes)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("/nonexistent/layout.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading layout file")

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "empty", "bounds": {"minX": -1, "maxX": 1, "minZ": -1, "maxZ": 1}}`), 0644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestResolve(t *testing.T) {
	l, err := Resolve("", "Yard")
	require.NoError(t, err)
	assert.Equal(t, "yard", l.Name)

	_, err = Resolve("", "moon")
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
