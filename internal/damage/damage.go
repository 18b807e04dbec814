// Package damage maps weapon hits to raw damage and raw damage to
// post-armor health and armor.
package damage

import (
	"math"

	"github.com/dustline/arena/internal/weapon"
	"github.com/dustline/arena/pkg/core"
)

const (
	// MinFalloffScale is the lowest range scale a hit can decay to.
	MinFalloffScale = 0.28
	// MinDamage is dealt by any landed hit regardless of range.
	MinDamage = 1

	// ArmorAbsorbCap bounds how much of the blockable damage armor can take.
	// ArmorHealthShare is how much health each point of spent armor spares.
	// Both are balance tunables; the gap between them is intended.
	ArmorAbsorbCap   = 0.65
	ArmorHealthShare = 0.55

	MaxHealth = 100.0
	MaxArmor  = 100.0
)

// State is a player's health and armor, each in [0, 100].
type State struct {
	Health float64 `json:"health"`
	Armor  float64 `json:"armor"`
}

// Full is the state every player spawns with.
func Full() State {
	return State{Health: MaxHealth, Armor: MaxArmor}
}

// Outcome is the result of applying one damage event.
type Outcome struct {
	Health        float64
	Armor         float64
	DamageApplied float64 // previous health minus new health
	ArmorSpent    float64
	Eliminated    bool
}

// State returns the post-hit health and armor.
func (o Outcome) State() State {
	return State{Health: o.Health, Armor: o.Armor}
}

// ComputeWeaponDamage returns the raw damage of one pellet of kind landing
// at distance metres. The result is never below MinDamage.
func ComputeWeaponDamage(kind core.WeaponKind, distance float64, headshot bool) int {
	spec := weapon.Lookup(kind)
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}

	scale := math.Max(MinFalloffScale, 1-distance*spec.FalloffPerMeter)
	mult := 1.0
	if headshot {
		mult = spec.HeadshotMultiplier
	}

	dmg := int(math.Round(spec.BaseDamage * scale * mult))
	return max(MinDamage, dmg)
}

// ApplyDamage mitigates raw damage through armor and returns the new state.
// Non-finite or negative inputs are treated as zero.
func ApplyDamage(s State, raw, penetration float64) Outcome {
	if !finite(raw) || raw < 0 {
		raw = 0
	}
	if !finite(penetration) {
		penetration = 0
	}

	block := clamp(1-penetration, 0, 1)
	armorToSpend := math.Min(s.Armor, raw*block*ArmorAbsorbCap)
	if armorToSpend < 0 {
		armorToSpend = 0
	}
	healthLoss := raw - armorToSpend*ArmorHealthShare

	nextHealth := math.Max(0, s.Health-healthLoss)
	nextArmor := math.Max(0, s.Armor-armorToSpend)

	return Outcome{
		Health:        nextHealth,
		Armor:         nextArmor,
		DamageApplied: s.Health - nextHealth,
		ArmorSpent:    s.Armor - nextArmor,
		Eliminated:    nextHealth <= 0,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
