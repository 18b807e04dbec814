package weapon

import "github.com/dustline/arena/pkg/core"

// Arsenal holds a player's three weapons. All three keep independent ammo
// and cooldowns so switching never resets anything.
type Arsenal struct {
	Active core.WeaponKind `json:"active"`
	Slots  [3]State        `json:"slots"`
}

func slot(kind core.WeaponKind) int {
	switch kind {
	case core.WeaponRifle:
		return 1
	case core.WeaponShotgun:
		return 2
	default:
		return 0
	}
}

// NewArsenal issues every weapon fully loaded with active in hand.
func NewArsenal(active core.WeaponKind) Arsenal {
	a := Arsenal{Active: Lookup(active).Kind}
	for _, spec := range Catalog() {
		a.Slots[slot(spec.Kind)] = NewState(spec)
	}
	return a
}

// State returns the runtime state of kind.
func (a Arsenal) State(kind core.WeaponKind) State {
	return a.Slots[slot(kind)]
}

// ActiveState returns the runtime state of the weapon in hand.
func (a Arsenal) ActiveState() State {
	return a.State(a.Active)
}

// With returns a copy of a with kind's state replaced.
func (a Arsenal) With(kind core.WeaponKind, s State) Arsenal {
	a.Slots[slot(kind)] = s
	return a
}

// Switch returns a copy of a holding kind.
func (a Arsenal) Switch(kind core.WeaponKind) Arsenal {
	a.Active = Lookup(kind).Kind
	return a
}

// TickAll advances pending reloads on every weapon, not only the active one.
func (a Arsenal) TickAll(now int64) Arsenal {
	for _, spec := range Catalog() {
		i := slot(spec.Kind)
		a.Slots[i] = TickReload(spec, a.Slots[i], now)
	}
	return a
}
