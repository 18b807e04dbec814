// Package kinematics integrates local player input into motion and resolves
// collisions against the arena's static boxes.
package kinematics

import (
	"math"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	WalkSpeed    = 5.2
	SprintSpeed  = 8.4
	CrouchSpeed  = 2.6
	Acceleration = 42.0 // m/s² toward the wish velocity
	Friction     = 28.0 // m/s² toward rest with no input
	JumpVelocity = 6.4
	Gravity      = 18.0

	Radius         = 0.45
	StandingHeight = 1.8
	CrouchHeight   = 1.15

	MaxPitch = 1.45
	MaxDt    = 0.033
	FloorY   = 0.0

	movingThreshold = 0.1
)

// Body is the physical state of one player. Position is the feet centre.
type Body struct {
	Position  core.Vector3 `json:"position"`
	Velocity  core.Vector3 `json:"velocity"`
	Yaw       float64      `json:"yaw"`
	Pitch     float64      `json:"pitch"`
	Grounded  bool         `json:"grounded"`
	Crouching bool         `json:"crouching"`
}

// Input is one tick's control intent.
type Input struct {
	MoveForward  bool `json:"moveForward"`
	MoveBackward bool `json:"moveBackward"`
	MoveLeft     bool `json:"moveLeft"`
	MoveRight    bool `json:"moveRight"`
	Sprint       bool `json:"sprint"`
	Crouch       bool `json:"crouch"`
	Jump         bool `json:"jump"`
	Firing       bool `json:"firing"`
}

// Bounds is the arena's walkable rectangle on the floor plane.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// SpawnBody places a fresh, grounded body at p.
func SpawnBody(p core.Vector3, yaw float64) Body {
	return Body{Position: p, Yaw: yaw, Grounded: p.Y <= FloorY}
}

// Look applies mouse deltas. Pitch is clamped to ±MaxPitch.
func (b Body) Look(dYaw, dPitch float64) Body {
	b.Yaw = math.Mod(b.Yaw+dYaw, 2*math.Pi)
	b.Pitch = math.Max(-MaxPitch, math.Min(MaxPitch, b.Pitch+dPitch))
	return b
}

// Height is the current collision probe height.
func (b Body) Height() float64 {
	if b.Crouching {
		return CrouchHeight
	}
	return StandingHeight
}

// Moving reports whether the body has noticeable horizontal speed.
func (b Body) Moving() bool {
	return math.Hypot(b.Velocity.X, b.Velocity.Z) > movingThreshold
}

// Sprinting reports whether in would select sprint speed.
func Sprinting(b Body, in Input) bool {
	return !b.Crouching && in.Sprint && in.MoveForward && !in.MoveBackward
}

// Forward is the unit look direction for yaw and pitch. Yaw 0 faces -Z.
func Forward(yaw, pitch float64) mgl64.Vec3 {
	cp := math.Cos(pitch)
	return mgl64.Vec3{-math.Sin(yaw) * cp, math.Sin(pitch), -math.Cos(yaw) * cp}
}

// wishDirection maps strafe/forward intent into world space by yaw.
func wishDirection(yaw float64, in Input) (mgl64.Vec3, bool) {
	var fwd, strafe float64
	if in.MoveForward {
		fwd++
	}
	if in.MoveBackward {
		fwd--
	}
	if in.MoveRight {
		strafe++
	}
	if in.MoveLeft {
		strafe--
	}
	if fwd == 0 && strafe == 0 {
		return mgl64.Vec3{}, false
	}

	forward := mgl64.Vec3{-math.Sin(yaw), 0, -math.Cos(yaw)}
	right := mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
	wish := forward.Mul(fwd).Add(right.Mul(strafe))
	return wish.Normalize(), true
}

// approach moves v toward target by at most step.
func approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// Step advances b by one tick. dt is in seconds and clamped to MaxDt; a
// non-positive dt returns b unchanged. Step is pure.
func Step(b Body, in Input, dt float64, obstacles []geo.AABB, bounds Bounds) Body {
	if !(dt > 0) {
		return b
	}
	dt = math.Min(dt, MaxDt)

	b.Crouching = in.Crouch

	speed := WalkSpeed
	switch {
	case b.Crouching:
		speed = CrouchSpeed
	case Sprinting(b, in):
		speed = SprintSpeed
	}

	wish, hasInput := wishDirection(b.Yaw, in)
	target := wish.Mul(speed)
	rate := Friction
	if hasInput {
		rate = Acceleration
	}
	b.Velocity.X = approach(b.Velocity.X, target[0], rate*dt)
	b.Velocity.Z = approach(b.Velocity.Z, target[2], rate*dt)

	if b.Grounded && in.Jump && !b.Crouching {
		b.Velocity.Y = JumpVelocity
		b.Grounded = false
	} else {
		b.Velocity.Y -= Gravity * dt
	}

	pos := b.Position.Vec().Add(b.Velocity.Vec().Mul(dt))
	pos[0] = clampAxis(pos[0], bounds.MinX+Radius, bounds.MaxX-Radius)
	pos[2] = clampAxis(pos[2], bounds.MinZ+Radius, bounds.MaxZ-Radius)
	if pos[1] <= FloorY {
		pos[1] = FloorY
		b.Velocity.Y = 0
		b.Grounded = true
	} else {
		b.Grounded = false
	}
	b.Position = core.VectorFrom(pos)

	return resolveObstacles(b, obstacles)
}

// resolveObstacles pushes b out of each overlapping box along the axis of
// least penetration. Boxes are handled one at a time in slice order, so the
// result can depend on that order when several boxes overlap at once.
func resolveObstacles(b Body, obstacles []geo.AABB) Body {
	height := b.Height()

	for _, box := range obstacles {
		if box.Empty() || !box.OverlapsBand(b.Position.Y, b.Position.Y+height) {
			continue
		}

		minX := box.Min.X - Radius
		maxX := box.Max.X + Radius
		minZ := box.Min.Z - Radius
		maxZ := box.Max.Z + Radius
		p := b.Position
		if p.X <= minX || p.X >= maxX || p.Z <= minZ || p.Z >= maxZ {
			continue
		}

		left := p.X - minX
		right := maxX - p.X
		back := p.Z - minZ
		front := maxZ - p.Z

		switch math.Min(math.Min(left, right), math.Min(back, front)) {
		case left:
			b.Position.X = minX
			if b.Velocity.X > 0 {
				b.Velocity.X = 0
			}
		case right:
			b.Position.X = maxX
			if b.Velocity.X < 0 {
				b.Velocity.X = 0
			}
		case back:
			b.Position.Z = minZ
			if b.Velocity.Z > 0 {
				b.Velocity.Z = 0
			}
		default:
			b.Position.Z = maxZ
			if b.Velocity.Z < 0 {
				b.Velocity.Z = 0
			}
		}
	}

	return b
}
