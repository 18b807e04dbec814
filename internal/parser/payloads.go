package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustline/arena/pkg/core"
	"github.com/dustline/arena/pkg/streaming"
)

// fields is a decoded JSON object.
type fields map[string]any

func decodeObject(kind string, data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error unmarshalling %s payload: %w", kind, err)
	}
	if f == nil {
		return nil, fmt.Errorf("error unmarshalling %s payload: not an object", kind)
	}
	return f, nil
}

// ParseShot decodes a shot payload.
func (p *Parser) ParseShot(data []byte) (core.ShotEvent, error) {
	f, err := decodeObject(streaming.TypeShot, data)
	if err != nil {
		return core.ShotEvent{}, err
	}
	return core.ShotEvent{
		AttackerID: f.str("attackerId"),
		Weapon:     f.weapon("weapon"),
		Origin:     f.vector("origin"),
		Direction:  f.vector("direction"),
		Timestamp:  f.integer("timestamp"),
	}, nil
}

// ParseDamage decodes a damage payload. Amounts are clamped to [0, MaxInt32].
func (p *Parser) ParseDamage(data []byte) (core.DamageEvent, error) {
	f, err := decodeObject(streaming.TypeDamage, data)
	if err != nil {
		return core.DamageEvent{}, err
	}
	if raw := f.num("amount"); raw < 0 {
		p.logger.Debug("negative damage amount", "amount", raw)
	}
	amount := f.count("amount")
	return core.DamageEvent{
		AttackerID:   f.str("attackerId"),
		AttackerName: f.str("attackerName"),
		TargetID:     f.str("targetId"),
		Amount:       amount,
		Weapon:       f.weapon("weapon"),
		Headshot:     f.flag("headshot"),
		Timestamp:    f.integer("timestamp"),
	}, nil
}

// ParseRespawn decodes a respawn payload.
func (p *Parser) ParseRespawn(data []byte) (core.RespawnEvent, error) {
	f, err := decodeObject(streaming.TypeRespawn, data)
	if err != nil {
		return core.RespawnEvent{}, err
	}
	return core.RespawnEvent{
		PlayerID:  f.str("playerId"),
		Position:  f.vector("position"),
		Timestamp: f.integer("timestamp"),
	}, nil
}

// ParsePresence decodes a presence payload.
func (p *Parser) ParsePresence(data []byte) (core.PresenceSnapshot, error) {
	f, err := decodeObject(streaming.TypePresence, data)
	if err != nil {
		return core.PresenceSnapshot{}, err
	}
	return sanitizePresence(core.PresenceSnapshot{
		PlayerID:         f.str("playerId"),
		Name:             f.str("name"),
		Team:             core.Team(f.str("team")),
		Character:        f.character("character"),
		Position:         f.vector("position"),
		Yaw:              f.num("yaw"),
		Pitch:            f.num("pitch"),
		VerticalVelocity: f.num("verticalVelocity"),
		Health:           f.num("health"),
		Armor:            f.num("armor"),
		Alive:            f.flag("alive"),
		Weapon:           f.weapon("weapon"),
		AmmoInMag:        f.count("ammoInMag"),
		AmmoReserve:      f.count("ammoReserve"),
		Moving:           f.flag("moving"),
		Sprinting:        f.flag("sprinting"),
		Crouching:        f.flag("crouching"),
		Grounded:         f.flag("grounded"),
		StateTick:        f.integer("stateTick"),
		LastShotAt:       f.integer("lastShotAt"),
	}), nil
}

// ParseKill decodes a kill payload. createdAt may be an RFC 3339 string or
// milliseconds since the epoch.
func (p *Parser) ParseKill(data []byte) (core.KillRecord, error) {
	f, err := decodeObject(streaming.TypeKill, data)
	if err != nil {
		return core.KillRecord{}, err
	}
	return core.KillRecord{
		MatchCode:    f.str("matchCode"),
		AttackerID:   f.str("attackerId"),
		AttackerName: f.str("attackerName"),
		VictimID:     f.str("victimId"),
		VictimName:   f.str("victimName"),
		Weapon:       f.weapon("weapon"),
		Headshot:     f.flag("headshot"),
		CreatedAt:    f.timestamp("createdAt"),
	}, nil
}

// ParseJoin decodes a join payload.
func (p *Parser) ParseJoin(data []byte) (streaming.JoinPayload, error) {
	f, err := decodeObject(streaming.TypeJoin, data)
	if err != nil {
		return streaming.JoinPayload{}, err
	}
	return streaming.JoinPayload{
		PlayerID:  f.str("playerId"),
		Name:      f.str("name"),
		Character: f.character("character"),
	}, nil
}

// ParseLeave decodes a leave payload.
func (p *Parser) ParseLeave(data []byte) (streaming.LeavePayload, error) {
	f, err := decodeObject(streaming.TypeLeave, data)
	if err != nil {
		return streaming.LeavePayload{}, err
	}
	return streaming.LeavePayload{PlayerID: f.str("playerId")}, nil
}

// sanitizePresence applies the same fallbacks to a snapshot that arrived
// already typed.
func sanitizePresence(s core.PresenceSnapshot) core.PresenceSnapshot {
	s.Character, _ = core.ParseCharacterKind(string(s.Character))
	s.Weapon, _ = core.ParseWeaponKind(string(s.Weapon))
	s.Position = finiteVector(s.Position)
	for _, v := range []*float64{&s.Yaw, &s.Pitch, &s.VerticalVelocity, &s.Health, &s.Armor} {
		*v = finite(*v)
	}
	return s
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// num reads a number. Numeric strings are accepted; anything else is 0.
func (f fields) num(key string) float64 {
	return toFloat(f[key])
}

func (f fields) integer(key string) int64 {
	return int64(f.num(key))
}

// count reads a non-negative quantity clamped to [0, MaxInt32].
func (f fields) count(key string) int {
	v := f.num(key)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}

func (f fields) flag(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (f fields) weapon(key string) core.WeaponKind {
	k, _ := core.ParseWeaponKind(f.str(key))
	return k
}

func (f fields) character(key string) core.CharacterKind {
	k, _ := core.ParseCharacterKind(f.str(key))
	return k
}

func (f fields) vector(key string) core.Vector3 {
	m, ok := f[key].(map[string]any)
	if !ok {
		return core.Vector3{}
	}
	return core.Vector3{X: toFloat(m["x"]), Y: toFloat(m["y"]), Z: toFloat(m["z"])}
}

func (f fields) timestamp(key string) time.Time {
	switch v := f[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v)); err == nil {
			return t.UTC()
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case float64:
		if finite(v) != 0 {
			return time.UnixMilli(int64(v)).UTC()
		}
	}
	return time.Time{}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finite(parsed)
	default:
		return 0
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finiteVector(v core.Vector3) core.Vector3 {
	return core.Vector3{X: finite(v.X), Y: finite(v.Y), Z: finite(v.Z)}
}
