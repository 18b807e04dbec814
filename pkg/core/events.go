// pkg/core/events.go
package core

// Timestamps on the wire are milliseconds since the Unix epoch.

// ShotEvent is broadcast once per fire action so peers can draw tracers.
type ShotEvent struct {
	AttackerID string     `json:"attackerId"`
	Weapon     WeaponKind `json:"weapon"`
	Origin     Vector3    `json:"origin"`
	Direction  Vector3    `json:"direction"`
	Timestamp  int64      `json:"timestamp"`
}

// DamageEvent reports the summed pellet damage one fire action dealt to one
// target, before the target's armor is applied.
type DamageEvent struct {
	AttackerID   string     `json:"attackerId"`
	AttackerName string     `json:"attackerName"`
	TargetID     string     `json:"targetId"`
	Amount       int        `json:"amount"`
	Weapon       WeaponKind `json:"weapon"`
	Headshot     bool       `json:"headshot"`
	Timestamp    int64      `json:"timestamp"`
}

// RespawnEvent is broadcast when the local player comes back to life.
type RespawnEvent struct {
	PlayerID  string  `json:"playerId"`
	Position  Vector3 `json:"position"`
	Timestamp int64   `json:"timestamp"`
}

// PresenceSnapshot is a peer's full visible state, published on a throttle.
type PresenceSnapshot struct {
	PlayerID         string        `json:"playerId" msgpack:"playerId"`
	Name             string        `json:"name" msgpack:"name"`
	Team             Team          `json:"team" msgpack:"team"`
	Character        CharacterKind `json:"character" msgpack:"character"`
	Position         Vector3       `json:"position" msgpack:"position"`
	Yaw              float64       `json:"yaw" msgpack:"yaw"`
	Pitch            float64       `json:"pitch" msgpack:"pitch"`
	VerticalVelocity float64       `json:"verticalVelocity" msgpack:"verticalVelocity"`
	Health           float64       `json:"health" msgpack:"health"`
	Armor            float64       `json:"armor" msgpack:"armor"`
	Alive            bool          `json:"alive" msgpack:"alive"`
	Weapon           WeaponKind    `json:"weapon" msgpack:"weapon"`
	AmmoInMag        int           `json:"ammoInMag" msgpack:"ammoInMag"`
	AmmoReserve      int           `json:"ammoReserve" msgpack:"ammoReserve"`
	Moving           bool          `json:"moving" msgpack:"moving"`
	Sprinting        bool          `json:"sprinting" msgpack:"sprinting"`
	Crouching        bool          `json:"crouching" msgpack:"crouching"`
	Grounded         bool          `json:"grounded" msgpack:"grounded"`
	StateTick        int64         `json:"stateTick" msgpack:"stateTick"`
	LastShotAt       int64         `json:"lastShotAt" msgpack:"lastShotAt"`
}
