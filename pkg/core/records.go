// pkg/core/records.go
package core

import "time"

// Match status values.
const (
	MatchWaiting = "waiting"
	MatchLive    = "live"
	MatchEnded   = "ended"
)

// MatchRecord defines a match. Code is the unique key shared by all peers.
type MatchRecord struct {
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	Mode            string         `json:"mode"`
	Map             string         `json:"map"`
	Status          string         `json:"status"`
	ScoreLimit      int            `json:"scoreLimit"`
	RoundDurationMs int64          `json:"roundDurationMs"`
	CreatedAt       time.Time      `json:"createdAt"`
	Settings        map[string]any `json:"settings,omitempty"` // layout and tick settings, informational
}

// KillRecord is the persisted source of truth for standings.
type KillRecord struct {
	ID           uint       `json:"id,omitempty"`
	MatchCode    string     `json:"matchCode"`
	AttackerID   string     `json:"attackerId"`
	AttackerName string     `json:"attackerName"`
	VictimID     string     `json:"victimId"`
	VictimName   string     `json:"victimName"`
	Weapon       WeaponKind `json:"weapon"`
	Headshot     bool       `json:"headshot"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// LoadoutRecord is a returning player's saved choices, keyed by display name.
type LoadoutRecord struct {
	PlayerName      string        `json:"playerName"`
	PrimaryWeapon   WeaponKind    `json:"primaryWeapon"`
	SecondaryWeapon WeaponKind    `json:"secondaryWeapon"`
	Character       CharacterKind `json:"character"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// PresenceSample is a throttled presence snapshot kept for match review.
type PresenceSample struct {
	MatchCode string
	Time      time.Time
	Snapshot  PresenceSnapshot
}

// UploadMetadata describes an exported match file for the scoreboard service.
type UploadMetadata struct {
	MatchCode    string
	MatchName    string
	Map          string
	Mode         string
	DurationSecs float64
	KillCount    int
}
