// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"
)

// MatchRecord groups a match with everything recorded during it
type MatchRecord struct {
	Match    core.MatchRecord
	EndedAt  time.Time
	Kills    []core.KillRecord
	Presence []core.PresenceSample
}

// Backend stores match data in memory and exports it to JSON when the
// match ends. Loadouts live for the lifetime of the process.
type Backend struct {
	cfg config.MemoryConfig

	matches  map[string]*MatchRecord // keyed by match code
	loadouts map[string]core.LoadoutRecord
	current  string

	idCounter      uint
	lastExportPath string
	lastExportMeta core.UploadMetadata
	mu             sync.RWMutex

	now func() time.Time
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		matches:  make(map[string]*MatchRecord),
		loadouts: make(map[string]core.LoadoutRecord),
		now:      time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch begins recording a match. Joining a known code keeps the
// stored definition and its recorded events.
func (b *Backend) StartMatch(m *core.MatchRecord) error {
	if m.Code == "" {
		return fmt.Errorf("match code is empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.matches[m.Code]
	if !ok {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = b.now().UTC()
		}
		rec = &MatchRecord{Match: *m}
		b.matches[m.Code] = rec
	}
	rec.Match.Status = core.MatchLive
	rec.EndedAt = time.Time{}
	*m = rec.Match
	b.current = m.Code
	return nil
}

// EndMatch finalizes and exports the current match
func (b *Backend) EndMatch() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.matches[b.current]
	if !ok {
		return nil
	}
	rec.Match.Status = core.MatchEnded
	rec.EndedAt = b.now().UTC()
	b.current = ""

	return b.exportJSON(rec)
}

// exportJSON writes the match data to a JSON file
func (b *Backend) exportJSON(rec *MatchRecord) error {
	if b.cfg.OutputDir == "" {
		return nil
	}

	loadouts := make([]core.LoadoutRecord, 0, len(b.loadouts))
	for _, l := range b.loadouts {
		loadouts = append(loadouts, l)
	}
	sort.Slice(loadouts, func(i, j int) bool { return loadouts[i].PlayerName < loadouts[j].PlayerName })

	export := storage.BuildExport(rec.Match, rec.EndedAt, rec.Kills, rec.Presence, loadouts)
	path, err := storage.WriteExport(b.cfg.OutputDir, b.cfg.CompressOutput, export)
	if err != nil {
		return err
	}

	b.lastExportPath = path
	b.lastExportMeta = export.Metadata()
	return nil
}

// GetMatch returns a match by code
func (b *Backend) GetMatch(code string) (core.MatchRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[code]
	if !ok {
		return core.MatchRecord{}, storage.ErrNotFound
	}
	return rec.Match, nil
}

// SaveLoadout creates or replaces a player's loadout
func (b *Backend) SaveLoadout(l core.LoadoutRecord) error {
	if l.PlayerName == "" {
		return fmt.Errorf("loadout player name is empty")
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = b.now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadouts[l.PlayerName] = l
	return nil
}

// GetLoadout returns a player's loadout
func (b *Backend) GetLoadout(playerName string) (core.LoadoutRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.loadouts[playerName]
	if !ok {
		return core.LoadoutRecord{}, storage.ErrNotFound
	}
	return l, nil
}

// RecordKill stores a kill under its match and assigns its ID
func (b *Backend) RecordKill(k *core.KillRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.matchFor(k.MatchCode)
	b.idCounter++
	k.ID = b.idCounter
	rec.Kills = append(rec.Kills, *k)
	return nil
}

// RecordPresence stores a presence sample under its match
func (b *Backend) RecordPresence(s *core.PresenceSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.matchFor(s.MatchCode)
	rec.Presence = append(rec.Presence, *s)
	return nil
}

// matchFor returns the record for code, creating a placeholder for events
// that arrive before the match was started locally. Callers hold the lock.
func (b *Backend) matchFor(code string) *MatchRecord {
	if code == "" {
		code = b.current
	}
	rec, ok := b.matches[code]
	if !ok {
		rec = &MatchRecord{Match: core.MatchRecord{Code: code, Status: core.MatchWaiting}}
		b.matches[code] = rec
	}
	return rec
}

// ListKills returns a copy of the kills of a match
func (b *Backend) ListKills(matchCode string) ([]core.KillRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[matchCode]
	if !ok {
		return nil, nil
	}
	out := make([]core.KillRecord, len(rec.Kills))
	copy(out, rec.Kills)
	return out, nil
}

// ListPresence returns a copy of the presence samples of a match
func (b *Backend) ListPresence(matchCode string) ([]core.PresenceSample, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.matches[matchCode]
	if !ok {
		return nil, nil
	}
	out := make([]core.PresenceSample, len(rec.Presence))
	copy(out, rec.Presence)
	return out, nil
}

// GetExportedFilePath returns the path of the last export, empty if none
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last export
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}
