// Package combat ties movement, weapons, hit-scan and damage together for
// the local player. The State value is advanced by pure functions; Session
// adds the inbox and publishing around it.
package combat

import (
	"github.com/dustline/arena/internal/damage"
	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/internal/kinematics"
	"github.com/dustline/arena/internal/spawn"
	"github.com/dustline/arena/internal/util"
	"github.com/dustline/arena/internal/weapon"
	"github.com/dustline/arena/pkg/core"
	"github.com/google/uuid"
)

// RespawnDelayMs is how long a player stays dead.
const RespawnDelayMs = 3000

// World is the static arena a match is played in.
type World struct {
	Obstacles   []geo.AABB
	Bounds      kinematics.Bounds
	SpawnPoints []core.Vector3
}

// State is the complete simulation state of the local player.
type State struct {
	PlayerID  string             `json:"playerId"`
	Name      string             `json:"name"`
	MatchCode string             `json:"matchCode"`
	Team      core.Team          `json:"team"`
	Character core.CharacterKind `json:"character"`

	Body    kinematics.Body `json:"body"`
	Vitals  damage.State    `json:"vitals"`
	Arsenal weapon.Arsenal  `json:"arsenal"`

	Alive     bool  `json:"alive"`
	RespawnAt int64 `json:"respawnAt"` // valid while dead
	Wave      int   `json:"wave"`

	// PrevFiring is the firing input of the previous tick, used to find the
	// trigger edge for semi-automatic weapons.
	PrevFiring bool `json:"prevFiring"`
}

// NewPlayerID returns a fresh peer identifier.
func NewPlayerID() string {
	return uuid.NewString()
}

// TeamFor derives the team of a player in a match. Every peer computes the
// same answer.
func TeamFor(matchCode, playerName string) core.Team {
	return core.Teams[util.Bucket(util.RollingHash(matchCode+":"+playerName), len(core.Teams))]
}

// NewState spawns the local player for the first time at wave 0.
func NewState(matchCode, playerID, name string, character core.CharacterKind, primary core.WeaponKind, world World) State {
	character, _ = core.ParseCharacterKind(string(character))
	s := State{
		PlayerID:  playerID,
		Name:      name,
		MatchCode: matchCode,
		Team:      TeamFor(matchCode, name),
		Character: character,
		Arsenal:   weapon.NewArsenal(primary),
	}
	return place(s, world)
}

// place puts s at the spawn point for its current wave with a fresh body,
// full vitals and a full arsenal.
func place(s State, world World) State {
	point, _ := spawn.ResolveSpawnPoint(s.MatchCode, s.Name, world.SpawnPoints, s.Wave, world.Obstacles)
	s.Body = kinematics.SpawnBody(point, s.Body.Yaw)
	s.Vitals = damage.Full()
	s.Arsenal = weapon.NewArsenal(s.Arsenal.Active)
	s.Alive = true
	s.RespawnAt = 0
	s.PrevFiring = false
	return s
}

// SwitchWeapon puts kind in hand. Every weapon keeps its own ammo and timers.
func (s State) SwitchWeapon(kind core.WeaponKind) State {
	s.Arsenal = s.Arsenal.Switch(kind)
	return s
}

// EyePosition is the hit-scan origin: the head of the character, lowered
// while crouching.
func (s State) EyePosition() core.Vector3 {
	eye := s.Body.Position
	eye.Y += s.Character.HeadHeight()
	if s.Body.Crouching {
		eye.Y -= kinematics.StandingHeight - kinematics.CrouchHeight
	}
	return eye
}

// Presence builds the snapshot peers use to render and target this player.
func (s State) Presence(in kinematics.Input, now int64) core.PresenceSnapshot {
	w := s.Arsenal.ActiveState()
	return core.PresenceSnapshot{
		PlayerID:         s.PlayerID,
		Name:             s.Name,
		Team:             s.Team,
		Character:        s.Character,
		Position:         s.Body.Position,
		Yaw:              s.Body.Yaw,
		Pitch:            s.Body.Pitch,
		VerticalVelocity: s.Body.Velocity.Y,
		Health:           s.Vitals.Health,
		Armor:            s.Vitals.Armor,
		Alive:            s.Alive,
		Weapon:           s.Arsenal.Active,
		AmmoInMag:        w.AmmoInMag,
		AmmoReserve:      w.AmmoReserve,
		Moving:           s.Body.Moving(),
		Sprinting:        s.Body.Moving() && kinematics.Sprinting(s.Body, in),
		Crouching:        s.Body.Crouching,
		Grounded:         s.Body.Grounded,
		StateTick:        now,
		LastShotAt:       w.LastShotAt,
	}
}
