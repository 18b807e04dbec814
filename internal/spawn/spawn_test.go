package spawn

import (
	"testing"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ring() []core.Vector3 {
	return []core.Vector3{
		{X: -20, Z: -20}, {X: 0, Z: -22}, {X: 20, Z: -20}, {X: 22, Z: 0},
		{X: 20, Z: 20}, {X: 0, Z: 22}, {X: -20, Z: 20}, {X: -22, Z: 0},
	}
}

func TestSeed(t *testing.T) {
	assert.Equal(t, "DUST-SIM:Operator:0", Seed("DUST-SIM", "Operator", 0))
}

func TestPickSpawnPoint_KnownIndices(t *testing.T) {
	points := ring()

	tests := []struct {
		wave  int
		index int
	}{
		{0, 0},
		{1, 7},
		{2, 6},
	}

	for _, tt := range tests {
		got, ok := PickSpawnPoint("DUST-SIM", "Operator", points, tt.wave)
		require.True(t, ok)
		assert.Equal(t, points[tt.index], got, "wave %d", tt.wave)
	}
}

func TestPickSpawnPoint_Deterministic(t *testing.T) {
	points := ring()
	for wave := 0; wave < 50; wave++ {
		a, _ := PickSpawnPoint("ARENA-7", "Nova", points, wave)
		b, _ := PickSpawnPoint("ARENA-7", "Nova", points, wave)
		assert.Equal(t, a, b)
		assert.Contains(t, points, a)
	}
}

func TestPickSpawnPoint_Empty(t *testing.T) {
	p, ok := PickSpawnPoint("DUST-SIM", "Operator", nil, 0)
	assert.False(t, ok)
	assert.Equal(t, core.Vector3{}, p)
}

func TestIsSpawnSafe(t *testing.T) {
	crate := geo.BoxOnFloor(0, 0, 2, 2, 1.2, 0)
	obstacles := []geo.AABB{crate}

	assert.False(t, IsSpawnSafe(core.Vector3{X: 1.5}, obstacles), "footprint clips crate edge")
	assert.True(t, IsSpawnSafe(core.Vector3{X: 1.7}, obstacles))
	assert.True(t, IsSpawnSafe(core.Vector3{X: 0, Y: 1.2}, obstacles), "standing on top")
	assert.True(t, IsSpawnSafe(core.Vector3{}, nil))
}

func TestResolveSpawnPoint_FallsBackToFirstSafe(t *testing.T) {
	points := ring()
	// block the preferred point (index 0) and index 1; index 2 is the first safe one
	obstacles := []geo.AABB{
		geo.BoxOnFloor(-20, -20, 2, 2, 3, 0),
		geo.BoxOnFloor(0, -22, 2, 2, 3, 0),
	}

	got, ok := ResolveSpawnPoint("DUST-SIM", "Operator", points, 0, obstacles)
	require.True(t, ok)
	assert.Equal(t, points[2], got)
}

func TestResolveSpawnPoint_AllUnsafeReturnsPreferred(t *testing.T) {
	points := []core.Vector3{{X: 0}, {X: 10}}
	obstacles := []geo.AABB{
		geo.BoxOnFloor(0, 0, 4, 4, 3, 0),
		geo.BoxOnFloor(10, 0, 4, 4, 3, 0),
	}

	preferred, _ := PickSpawnPoint("M", "P", points, 3)
	got, ok := ResolveSpawnPoint("M", "P", points, 3, obstacles)
	require.True(t, ok)
	assert.Equal(t, preferred, got)
}
