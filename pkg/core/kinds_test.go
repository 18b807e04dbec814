package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestParseWeaponKind(t *testing.T) {
	tests := []struct {
		in    string
		want  WeaponKind
		known bool
	}{
		{"pistol", WeaponPistol, true},
		{"RIFLE", WeaponRifle, true},
		{" shotgun ", WeaponShotgun, true},
		{"railgun", DefaultWeapon, false},
		{"", DefaultWeapon, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseWeaponKind(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestParseCharacterKind_UnknownFallsBack(t *testing.T) {
	got, ok := ParseCharacterKind("robot")
	assert.False(t, ok)
	assert.Equal(t, DefaultCharacter, got)

	got, ok = ParseCharacterKind("Specter")
	assert.True(t, ok)
	assert.Equal(t, CharacterSpecter, got)
}

func TestHeadHeight(t *testing.T) {
	assert.Equal(t, 1.70, CharacterBulwark.HeadHeight())
	assert.Equal(t, CharacterRanger.HeadHeight(), CharacterKind("nobody").HeadHeight())
}

func TestVectorRoundTrip(t *testing.T) {
	v := Vector3{X: 1, Y: -2, Z: 3.5}
	assert.Equal(t, mgl64.Vec3{1, -2, 3.5}, v.Vec())
	assert.Equal(t, v, VectorFrom(v.Vec()))
}
