package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ClientInfo{},
	&Match{},
	&Loadout{},
	&Kill{},
	&PresenceSample{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SchemaVersion is written to ClientInfo on first setup.
const SchemaVersion = 1

// ClientInfo identifies the client that created the database
type ClientInfo struct {
	gorm.Model
	ClientName    string `json:"clientName" gorm:"size:127"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (*ClientInfo) TableName() string {
	return "client_infos"
}

////////////////////////
// MATCH DATA
////////////////////////

// Match is a match definition. Code is shared by every peer of the match.
type Match struct {
	ID              uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Code            string         `json:"code" gorm:"size:64;uniqueIndex:idx_match_code"`
	Name            string         `json:"name" gorm:"size:127"`
	Mode            string         `json:"mode" gorm:"size:32"`
	Map             string         `json:"map" gorm:"size:64"`
	Status          string         `json:"status" gorm:"size:16;index:idx_match_status"`
	ScoreLimit      int            `json:"scoreLimit"`
	RoundDurationMs int64          `json:"roundDurationMs"`
	Settings        datatypes.JSON `json:"settings"`
	CreatedAt       time.Time      `json:"createdAt"`
	EndedAt         sql.NullTime   `json:"endedAt"`
}

func (*Match) TableName() string {
	return "matches"
}

// Loadout is a returning player's saved choices, keyed by display name.
type Loadout struct {
	PlayerName      string    `json:"playerName" gorm:"primaryKey;size:64"`
	PrimaryWeapon   string    `json:"primaryWeapon" gorm:"size:16"`
	SecondaryWeapon string    `json:"secondaryWeapon" gorm:"size:16"`
	Character       string    `json:"character" gorm:"size:16"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (*Loadout) TableName() string {
	return "loadouts"
}

// Kill is one elimination. Kills are the source of truth for standings.
type Kill struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchCode    string    `json:"matchCode" gorm:"size:64;index:idx_kill_match_code"`
	AttackerID   string    `json:"attackerId" gorm:"size:64"`
	AttackerName string    `json:"attackerName" gorm:"size:64"`
	VictimID     string    `json:"victimId" gorm:"size:64"`
	VictimName   string    `json:"victimName" gorm:"size:64"`
	Weapon       string    `json:"weapon" gorm:"size:16"`
	Headshot     bool      `json:"headshot"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index:idx_kill_created_at"`
}

func (*Kill) TableName() string {
	return "kills"
}

// PresenceSample is a throttled snapshot of one player kept for match review.
type PresenceSample struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchCode string         `json:"matchCode" gorm:"size:64;index:idx_presence_match_code"`
	Time      time.Time      `json:"time" gorm:"index:idx_presence_time"`
	PlayerID  string         `json:"playerId" gorm:"size:64;index:idx_presence_player_id"`
	Name      string         `json:"name" gorm:"size:64"`
	Team      string         `json:"team" gorm:"size:16"`
	Character string         `json:"character" gorm:"size:16"`
	Position  geom.Point     `json:"position"` // ground plane in XY, height in Z
	Yaw       float64        `json:"yaw"`
	Pitch     float64        `json:"pitch"`
	Health    float64        `json:"health"`
	Armor     float64        `json:"armor"`
	Alive     bool           `json:"alive"`
	Weapon    string         `json:"weapon" gorm:"size:16"`
	StateTick int64          `json:"stateTick"`
	Flags     datatypes.JSON `json:"flags"` // movement flags, ammo, vertical velocity
}

func (*PresenceSample) TableName() string {
	return "presence_samples"
}
