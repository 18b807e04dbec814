// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/dustline/arena/internal/geo"
	"github.com/dustline/arena/internal/model"
	"github.com/dustline/arena/pkg/core"
	"gorm.io/datatypes"
)

// presenceFlags is the JSON column of a presence sample.
type presenceFlags struct {
	Moving           bool    `json:"moving"`
	Sprinting        bool    `json:"sprinting"`
	Crouching        bool    `json:"crouching"`
	Grounded         bool    `json:"grounded"`
	AmmoInMag        int     `json:"ammoInMag"`
	AmmoReserve      int     `json:"ammoReserve"`
	VerticalVelocity float64 `json:"verticalVelocity"`
	LastShotAt       int64   `json:"lastShotAt"`
}

// CoreToMatch converts a core.MatchRecord to a GORM model.Match.
func CoreToMatch(m core.MatchRecord) model.Match {
	settings := datatypes.JSON("{}")
	if len(m.Settings) > 0 {
		if data, err := json.Marshal(m.Settings); err == nil {
			settings = datatypes.JSON(data)
		}
	}

	return model.Match{
		Code:            m.Code,
		Name:            m.Name,
		Mode:            m.Mode,
		Map:             m.Map,
		Status:          m.Status,
		ScoreLimit:      m.ScoreLimit,
		RoundDurationMs: m.RoundDurationMs,
		Settings:        settings,
		CreatedAt:       m.CreatedAt,
	}
}

// CoreToLoadout converts a core.LoadoutRecord to a GORM model.Loadout.
func CoreToLoadout(l core.LoadoutRecord) model.Loadout {
	return model.Loadout{
		PlayerName:      l.PlayerName,
		PrimaryWeapon:   string(l.PrimaryWeapon),
		SecondaryWeapon: string(l.SecondaryWeapon),
		Character:       string(l.Character),
		UpdatedAt:       l.UpdatedAt,
	}
}

// CoreToKill converts a core.KillRecord to a GORM model.Kill.
func CoreToKill(k core.KillRecord) model.Kill {
	return model.Kill{
		ID:           k.ID,
		MatchCode:    k.MatchCode,
		AttackerID:   k.AttackerID,
		AttackerName: k.AttackerName,
		VictimID:     k.VictimID,
		VictimName:   k.VictimName,
		Weapon:       string(k.Weapon),
		Headshot:     k.Headshot,
		CreatedAt:    k.CreatedAt,
	}
}

// CoreToPresenceSample converts a core.PresenceSample to a GORM model.PresenceSample.
func CoreToPresenceSample(p core.PresenceSample) model.PresenceSample {
	s := p.Snapshot
	flags, _ := json.Marshal(presenceFlags{
		Moving:           s.Moving,
		Sprinting:        s.Sprinting,
		Crouching:        s.Crouching,
		Grounded:         s.Grounded,
		AmmoInMag:        s.AmmoInMag,
		AmmoReserve:      s.AmmoReserve,
		VerticalVelocity: s.VerticalVelocity,
		LastShotAt:       s.LastShotAt,
	})

	return model.PresenceSample{
		MatchCode: p.MatchCode,
		Time:      p.Time,
		PlayerID:  s.PlayerID,
		Name:      s.Name,
		Team:      string(s.Team),
		Character: string(s.Character),
		Position:  geo.PointFromVector(s.Position),
		Yaw:       s.Yaw,
		Pitch:     s.Pitch,
		Health:    s.Health,
		Armor:     s.Armor,
		Alive:     s.Alive,
		Weapon:    string(s.Weapon),
		StateTick: s.StateTick,
		Flags:     datatypes.JSON(flags),
	}
}
