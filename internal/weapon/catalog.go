// Package weapon holds the weapon catalog and the per-weapon fire/reload
// state machine. Every transition is a pure function of (spec, state, now).
package weapon

import "github.com/dustline/arena/pkg/core"

// Spec is the immutable configuration of one weapon kind.
type Spec struct {
	Kind               core.WeaponKind
	FireIntervalMs     int64
	ReloadMs           int64
	MagazineSize       int
	ReserveCapacity    int
	Pellets            int
	Spread             float64 // max jitter per axis applied to the unit aim vector
	BaseDamage         float64
	FalloffPerMeter    float64
	ArmorPenetration   float64 // [0,1]; 1 bypasses armor entirely
	HeadshotMultiplier float64
	Automatic          bool
}

var catalog = map[core.WeaponKind]Spec{
	core.WeaponPistol: {
		Kind:               core.WeaponPistol,
		FireIntervalMs:     220,
		ReloadMs:           1200,
		MagazineSize:       12,
		ReserveCapacity:    48,
		Pellets:            1,
		Spread:             0.012,
		BaseDamage:         31,
		FalloffPerMeter:    0.018,
		ArmorPenetration:   0.57,
		HeadshotMultiplier: 1.8,
	},
	core.WeaponRifle: {
		Kind:               core.WeaponRifle,
		FireIntervalMs:     95,
		ReloadMs:           2100,
		MagazineSize:       30,
		ReserveCapacity:    120,
		Pellets:            1,
		Spread:             0.02,
		BaseDamage:         24,
		FalloffPerMeter:    0.012,
		ArmorPenetration:   0.42,
		HeadshotMultiplier: 1.6,
		Automatic:          true,
	},
	core.WeaponShotgun: {
		Kind:               core.WeaponShotgun,
		FireIntervalMs:     820,
		ReloadMs:           2600,
		MagazineSize:       6,
		ReserveCapacity:    30,
		Pellets:            8,
		Spread:             0.09,
		BaseDamage:         13,
		FalloffPerMeter:    0.06,
		ArmorPenetration:   0.2,
		HeadshotMultiplier: 1.35,
	},
}

// Lookup returns the spec for kind. Unknown kinds resolve to the default weapon.
func Lookup(kind core.WeaponKind) Spec {
	if s, ok := catalog[kind]; ok {
		return s
	}
	return catalog[core.DefaultWeapon]
}

// Catalog returns every spec in slot order.
func Catalog() []Spec {
	out := make([]Spec, 0, len(core.WeaponKinds))
	for _, k := range core.WeaponKinds {
		out = append(out, catalog[k])
	}
	return out
}
