package combat

import (
	"math"
	"math/rand"

	"github.com/dustline/arena/internal/cache"
	"github.com/dustline/arena/internal/kinematics"
	"github.com/dustline/arena/internal/weapon"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	pilotTurnRate       = 0.15 // radians per tick
	pilotAimCone        = 0.04
	pilotWaypointRadius = 1.5
	pilotEngageRange    = 12.0 // closes in beyond this, strafes inside it

	// deliberate aim before a long shot
	pilotAccurateRange = 10.0
	pilotMaxRange      = 40.0
	pilotAimBaseTicks  = 3
	pilotAimExtraTicks = 15
)

// Pilot produces scripted input for a headless client: it roams between
// spawn points and engages the nearest live enemy.
type Pilot struct {
	rng      *rand.Rand
	waypoint int
	target   string
	aimTicks int
	strafe   bool
}

// NewPilot returns a pilot whose choices are driven by seed.
func NewPilot(seed int64) *Pilot {
	return &Pilot{rng: rand.New(rand.NewSource(seed)), waypoint: -1}
}

// Target is the id of the peer being engaged, empty when roaming.
func (p *Pilot) Target() string {
	return p.target
}

// Next returns the input for the next tick of s.
func (p *Pilot) Next(s State, world World, peers []cache.Peer) Input {
	var in Input
	if !s.Alive {
		p.target, p.aimTicks = "", 0
		return in
	}

	w := s.Arsenal.ActiveState()
	if w.AmmoInMag == 0 && w.ReloadingUntil == nil && w.AmmoReserve > 0 {
		in.Reload = true
	}

	eye := s.EyePosition().Vec()
	enemy, ok := p.nearestEnemy(s, peers)
	if !ok {
		p.target, p.aimTicks = "", 0
		goal := p.nextWaypoint(s, world)
		in.LookYaw = turn(s.Body.Yaw, yawTo(goal.Sub(eye)))
		in.LookPitch = turn(s.Body.Pitch, 0)
		in.MoveForward = true
		return in
	}

	if enemy.Presence.PlayerID != p.target {
		p.target, p.aimTicks = enemy.Presence.PlayerID, 0
		p.strafe = p.rng.Intn(2) == 0
	}

	aimAt := enemy.Presence.Position.Vec().Add(mgl64.Vec3{0, BodyCenterHeight, 0})
	d := aimAt.Sub(eye)
	dist := math.Hypot(d.X(), d.Z())

	yawErr := wrapAngle(yawTo(d) - s.Body.Yaw)
	pitchErr := math.Atan2(d.Y(), dist) - s.Body.Pitch
	in.LookYaw = turn(s.Body.Yaw, yawTo(d))
	in.LookPitch = turn(s.Body.Pitch, math.Atan2(d.Y(), dist))

	if dist > pilotEngageRange {
		in.MoveForward = true
	} else if p.strafe {
		in.MoveRight = true
	} else {
		in.MoveLeft = true
	}
	if p.rng.Intn(90) == 0 {
		p.strafe = !p.strafe
	}

	if math.Abs(yawErr) > pilotAimCone || math.Abs(pitchErr) > pilotAimCone {
		p.aimTicks = 0
		return in
	}
	p.aimTicks++
	if p.aimTicks < aimTicksFor(dist) {
		return in
	}

	// semi-automatic weapons need a fresh press each shot
	if weapon.Lookup(s.Arsenal.Active).Automatic {
		in.Firing = true
	} else {
		in.Firing = !s.PrevFiring
	}
	return in
}

func (p *Pilot) nearestEnemy(s State, peers []cache.Peer) (cache.Peer, bool) {
	var best cache.Peer
	bestDist := math.Inf(1)
	for _, peer := range peers {
		if !peer.Presence.Alive || (peer.Presence.Team != "" && peer.Presence.Team == s.Team) {
			continue
		}
		d := peer.Presence.Position.Vec().Sub(s.Body.Position.Vec()).Len()
		if d < bestDist && d <= pilotMaxRange {
			best, bestDist = peer, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

func (p *Pilot) nextWaypoint(s State, world World) mgl64.Vec3 {
	if len(world.SpawnPoints) == 0 {
		return s.EyePosition().Vec().Add(kinematics.Forward(s.Body.Yaw, 0))
	}
	if p.waypoint < 0 || p.waypoint >= len(world.SpawnPoints) {
		p.waypoint = p.rng.Intn(len(world.SpawnPoints))
	}
	goal := world.SpawnPoints[p.waypoint].Vec()
	here := s.Body.Position.Vec()
	if math.Hypot(goal.X()-here.X(), goal.Z()-here.Z()) < pilotWaypointRadius {
		p.waypoint = p.rng.Intn(len(world.SpawnPoints))
		goal = world.SpawnPoints[p.waypoint].Vec()
	}
	return goal.Add(mgl64.Vec3{0, s.EyePosition().Y - s.Body.Position.Y, 0})
}

// aimTicksFor is how long the pilot steadies its aim before firing at dist.
func aimTicksFor(dist float64) int {
	if dist <= pilotAccurateRange {
		return 0
	}
	t := math.Min(1, (dist-pilotAccurateRange)/(pilotMaxRange-pilotAccurateRange))
	return pilotAimBaseTicks + int(math.Round(float64(pilotAimExtraTicks)*t))
}

// yawTo is the yaw that faces along d. Yaw 0 faces -Z.
func yawTo(d mgl64.Vec3) float64 {
	return math.Atan2(-d.X(), -d.Z())
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// turn is the look delta from current toward desired, limited to the turn
// rate.
func turn(current, desired float64) float64 {
	delta := wrapAngle(desired - current)
	return math.Max(-pilotTurnRate, math.Min(pilotTurnRate, delta))
}
