package convert

import (
	"encoding/json"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/internal/model"
	"github.com/dustline/arena/pkg/core"
)

// MatchToCore converts a GORM model.Match to a core.MatchRecord.
func MatchToCore(m model.Match) core.MatchRecord {
	var settings map[string]any
	if len(m.Settings) > 0 {
		_ = json.Unmarshal(m.Settings, &settings)
	}
	if len(settings) == 0 {
		settings = nil
	}

	return core.MatchRecord{
		Code:            m.Code,
		Name:            m.Name,
		Mode:            m.Mode,
		Map:             m.Map,
		Status:          m.Status,
		ScoreLimit:      m.ScoreLimit,
		RoundDurationMs: m.RoundDurationMs,
		CreatedAt:       m.CreatedAt,
		Settings:        settings,
	}
}

// LoadoutToCore converts a GORM model.Loadout to a core.LoadoutRecord.
// Unknown weapons and characters read as the defaults.
func LoadoutToCore(l model.Loadout) core.LoadoutRecord {
	primary, _ := core.ParseWeaponKind(l.PrimaryWeapon)
	secondary, _ := core.ParseWeaponKind(l.SecondaryWeapon)
	character, _ := core.ParseCharacterKind(l.Character)
	return core.LoadoutRecord{
		PlayerName:      l.PlayerName,
		PrimaryWeapon:   primary,
		SecondaryWeapon: secondary,
		Character:       character,
		UpdatedAt:       l.UpdatedAt,
	}
}

// KillToCore converts a GORM model.Kill to a core.KillRecord.
func KillToCore(k model.Kill) core.KillRecord {
	weapon, _ := core.ParseWeaponKind(k.Weapon)
	return core.KillRecord{
		ID:           k.ID,
		MatchCode:    k.MatchCode,
		AttackerID:   k.AttackerID,
		AttackerName: k.AttackerName,
		VictimID:     k.VictimID,
		VictimName:   k.VictimName,
		Weapon:       weapon,
		Headshot:     k.Headshot,
		CreatedAt:    k.CreatedAt,
	}
}

// PresenceSampleToCore converts a GORM model.PresenceSample to a core.PresenceSample.
func PresenceSampleToCore(p model.PresenceSample) core.PresenceSample {
	var flags presenceFlags
	if len(p.Flags) > 0 {
		_ = json.Unmarshal(p.Flags, &flags)
	}
	weapon, _ := core.ParseWeaponKind(p.Weapon)
	character, _ := core.ParseCharacterKind(p.Character)

	return core.PresenceSample{
		MatchCode: p.MatchCode,
		Time:      p.Time,
		Snapshot: core.PresenceSnapshot{
			PlayerID:         p.PlayerID,
			Name:             p.Name,
			Team:             core.Team(p.Team),
			Character:        character,
			Position:         geo.VectorFromPoint(p.Position),
			Yaw:              p.Yaw,
			Pitch:            p.Pitch,
			VerticalVelocity: flags.VerticalVelocity,
			Health:           p.Health,
			Armor:            p.Armor,
			Alive:            p.Alive,
			Weapon:           weapon,
			AmmoInMag:        flags.AmmoInMag,
			AmmoReserve:      flags.AmmoReserve,
			Moving:           flags.Moving,
			Sprinting:        flags.Sprinting,
			Crouching:        flags.Crouching,
			Grounded:         flags.Grounded,
			StateTick:        p.StateTick,
			LastShotAt:       flags.LastShotAt,
		},
	}
}
