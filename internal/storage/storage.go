// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/dustline/arena/pkg/core"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Match management. StartMatch creates the match or joins the existing
	// one with the same code; m is updated with the stored record.
	StartMatch(m *core.MatchRecord) error
	EndMatch() error
	GetMatch(code string) (core.MatchRecord, error)

	// Loadouts, keyed by player name
	SaveLoadout(l core.LoadoutRecord) error
	GetLoadout(playerName string) (core.LoadoutRecord, error)

	// Event recording
	RecordKill(k *core.KillRecord) error
	RecordPresence(s *core.PresenceSample) error

	// Queries, oldest first
	ListKills(matchCode string) ([]core.KillRecord, error)
	ListPresence(matchCode string) ([]core.PresenceSample, error)
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the hosted scoreboard.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
