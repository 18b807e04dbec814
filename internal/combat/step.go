package combat

import (
	"math/rand"
	"time"

	"github.com/dustline/arena/internal/damage"
	"github.com/dustline/arena/internal/kinematics"
	"github.com/dustline/arena/internal/weapon"
	"github.com/dustline/arena/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// Input is one tick of local control: movement keys plus look deltas and
// weapon actions.
type Input struct {
	kinematics.Input
	LookYaw   float64
	LookPitch float64
	Reload    bool
	SwitchTo  core.WeaponKind // empty keeps the current weapon
}

// Output is everything a tick produced for the outside world.
type Output struct {
	Fire    weapon.FireResult
	Shot    *core.ShotEvent
	Damage  []core.DamageEvent
	Respawn *core.RespawnEvent
}

// Step advances s by one tick at now (ms epoch) with dt seconds of movement.
// Within a tick reloads are ticked first, then movement, then firing. A dead
// player only waits for its respawn deadline.
func Step(s State, in Input, now int64, dt float64, world World, targets []Target, rng *rand.Rand) (State, Output) {
	var out Output

	if !s.Alive {
		if now < s.RespawnAt {
			return s, out
		}
		var ev core.RespawnEvent
		s, ev = Respawn(s, world, now)
		out.Respawn = &ev
	}

	if in.SwitchTo != "" {
		s = s.SwitchWeapon(in.SwitchTo)
	}

	s.Arsenal = s.Arsenal.TickAll(now)
	if in.Reload {
		spec := weapon.Lookup(s.Arsenal.Active)
		s.Arsenal = s.Arsenal.With(spec.Kind, weapon.BeginReload(spec, s.Arsenal.ActiveState(), now))
	}

	s.Body = s.Body.Look(in.LookYaw, in.LookPitch)
	s.Body = kinematics.Step(s.Body, in.Input, dt, world.Obstacles, world.Bounds)

	s, out.Fire, out.Shot, out.Damage = fire(s, in, now, world, targets, rng)
	return s, out
}

// fire resolves the trigger for this tick. Automatic weapons fire while the
// trigger is held; the others only on the press.
func fire(s State, in Input, now int64, world World, targets []Target, rng *rand.Rand) (State, weapon.FireResult, *core.ShotEvent, []core.DamageEvent) {
	pressed := in.Firing && !s.PrevFiring
	s.PrevFiring = in.Firing

	spec := weapon.Lookup(s.Arsenal.Active)
	if !in.Firing || (!spec.Automatic && !pressed) {
		return s, weapon.FireResult{}, nil, nil
	}

	ws, res := weapon.TryFire(spec, s.Arsenal.ActiveState(), now)
	if res.Reason == weapon.ReasonEmptyMag {
		ws = weapon.BeginReload(spec, ws, now)
	}
	s.Arsenal = s.Arsenal.With(spec.Kind, ws)
	if !res.DidFire {
		return s, res, nil, nil
	}

	origin := s.EyePosition()
	aim := kinematics.Forward(s.Body.Yaw, s.Body.Pitch)
	shot := &core.ShotEvent{
		AttackerID: s.PlayerID,
		Weapon:     spec.Kind,
		Origin:     origin,
		Direction:  core.VectorFrom(aim),
		Timestamp:  now,
	}

	return s, res, shot, resolvePellets(s, spec, origin, aim, now, world, targets, rng)
}

type tally struct {
	amount   int
	headshot bool
}

// resolvePellets traces every pellet and sums the damage per target. The
// result holds one event per target hit, in target order.
func resolvePellets(s State, spec weapon.Spec, origin core.Vector3, aim mgl64.Vec3, now int64, world World, targets []Target, rng *rand.Rand) []core.DamageEvent {
	positions := make(map[string]core.Vector3, len(targets))
	for _, tg := range targets {
		positions[tg.ID] = tg.Position
	}

	hits := make(map[string]*tally)
	for i := 0; i < spec.Pellets; i++ {
		dir := Jitter(aim, spec.Spread, rng)
		hit, ok := HitScan(origin.Vec(), dir, world.Obstacles, targets)
		if !ok {
			continue
		}
		dist := EngagementRange(s.Body.Position, positions[hit.TargetID])
		t := hits[hit.TargetID]
		if t == nil {
			t = &tally{}
			hits[hit.TargetID] = t
		}
		t.amount += damage.ComputeWeaponDamage(spec.Kind, dist, hit.Headshot)
		t.headshot = t.headshot || hit.Headshot
	}

	var events []core.DamageEvent
	for _, tg := range targets {
		t, ok := hits[tg.ID]
		if !ok {
			continue
		}
		events = append(events, core.DamageEvent{
			AttackerID:   s.PlayerID,
			AttackerName: s.Name,
			TargetID:     tg.ID,
			Amount:       t.amount,
			Weapon:       spec.Kind,
			Headshot:     t.headshot,
			Timestamp:    now,
		})
	}
	return events
}

// Jitter offsets each axis of dir by a uniform amount in [-spread, spread]
// and renormalizes. A nil rng or a degenerate result returns dir.
func Jitter(dir mgl64.Vec3, spread float64, rng *rand.Rand) mgl64.Vec3 {
	if rng == nil || spread <= 0 {
		return dir
	}
	j := dir.Add(mgl64.Vec3{
		(rng.Float64()*2 - 1) * spread,
		(rng.Float64()*2 - 1) * spread,
		(rng.Float64()*2 - 1) * spread,
	})
	if j.Len() < 1e-12 {
		return dir
	}
	return j.Normalize()
}

// EngagementRange is the distance used for damage falloff: from the
// shooter's feet to the target's feet.
func EngagementRange(shooter, target core.Vector3) float64 {
	return target.Vec().Sub(shooter.Vec()).Len()
}

// ApplyIncomingDamage applies a peer's damage event to the local player. It
// is a no-op unless the event targets this player and the player is alive.
// When the hit is lethal a kill record is returned and the respawn deadline
// is set.
func ApplyIncomingDamage(s State, ev core.DamageEvent, now int64) (State, damage.Outcome, *core.KillRecord) {
	if ev.TargetID != s.PlayerID || !s.Alive {
		return s, damage.Outcome{Health: s.Vitals.Health, Armor: s.Vitals.Armor}, nil
	}

	kind, _ := core.ParseWeaponKind(string(ev.Weapon))
	out := damage.ApplyDamage(s.Vitals, float64(ev.Amount), weapon.Lookup(kind).ArmorPenetration)
	s.Vitals = out.State()
	if !out.Eliminated {
		return s, out, nil
	}

	s.Alive = false
	s.RespawnAt = now + RespawnDelayMs
	s.PrevFiring = false
	kill := &core.KillRecord{
		MatchCode:    s.MatchCode,
		AttackerID:   ev.AttackerID,
		AttackerName: ev.AttackerName,
		VictimID:     s.PlayerID,
		VictimName:   s.Name,
		Weapon:       kind,
		Headshot:     ev.Headshot,
		CreatedAt:    time.UnixMilli(now).UTC(),
	}
	return s, out, kill
}

// Respawn brings a dead player back at the next wave's spawn point with full
// health, armor and ammo.
func Respawn(s State, world World, now int64) (State, core.RespawnEvent) {
	s.Wave++
	s = place(s, world)
	return s, core.RespawnEvent{
		PlayerID:  s.PlayerID,
		Position:  s.Body.Position,
		Timestamp: now,
	}
}
