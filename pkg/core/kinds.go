// pkg/core/kinds.go
package core

import "strings"

// WeaponKind identifies one of the three weapon specs.
type WeaponKind string

const (
	WeaponPistol  WeaponKind = "pistol"
	WeaponRifle   WeaponKind = "rifle"
	WeaponShotgun WeaponKind = "shotgun"
)

// DefaultWeapon is the primary weapon. Every player spawns holding it and
// peer payloads naming an unknown weapon are read as it.
const DefaultWeapon = WeaponPistol

// WeaponKinds lists every weapon in slot order.
var WeaponKinds = []WeaponKind{WeaponPistol, WeaponRifle, WeaponShotgun}

// ParseWeaponKind maps s to a known weapon. The bool is false when s was not
// recognised and DefaultWeapon was substituted.
func ParseWeaponKind(s string) (WeaponKind, bool) {
	switch WeaponKind(strings.ToLower(strings.TrimSpace(s))) {
	case WeaponPistol:
		return WeaponPistol, true
	case WeaponRifle:
		return WeaponRifle, true
	case WeaponShotgun:
		return WeaponShotgun, true
	default:
		return DefaultWeapon, false
	}
}

// CharacterKind selects a player model. It only affects the head hit sphere.
type CharacterKind string

const (
	CharacterRanger   CharacterKind = "ranger"
	CharacterVanguard CharacterKind = "vanguard"
	CharacterSpecter  CharacterKind = "specter"
	CharacterBulwark  CharacterKind = "bulwark"
)

// DefaultCharacter is used for new players and unrecognised payloads.
const DefaultCharacter = CharacterRanger

// headHeights is the head sphere centre above the feet, per character.
var headHeights = map[CharacterKind]float64{
	CharacterRanger:   1.62,
	CharacterVanguard: 1.66,
	CharacterSpecter:  1.56,
	CharacterBulwark:  1.70,
}

// ParseCharacterKind maps s to a known character, falling back to DefaultCharacter.
func ParseCharacterKind(s string) (CharacterKind, bool) {
	k := CharacterKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := headHeights[k]; ok {
		return k, true
	}
	return DefaultCharacter, false
}

// HeadHeight returns the head sphere centre height above the feet.
func (k CharacterKind) HeadHeight() float64 {
	if h, ok := headHeights[k]; ok {
		return h
	}
	return headHeights[DefaultCharacter]
}

// Team is one of the two fixed sides of a match.
type Team string

const (
	TeamAlpha Team = "alpha"
	TeamBravo Team = "bravo"
)

// Teams is indexed by the team hash bucket.
var Teams = [2]Team{TeamAlpha, TeamBravo}
