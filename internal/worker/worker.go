package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dustline/arena/internal/cache"
	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/influx"
	"github.com/dustline/arena/internal/logging"
	"github.com/dustline/arena/internal/match"
	"github.com/dustline/arena/internal/parser"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"
)

// Local record types routed through the dispatcher alongside peer messages.
const (
	TypeRecordShot     = "record.shot"
	TypeRecordDamage   = "record.damage"
	TypeRecordKill     = "record.kill"
	TypeRecordPresence = "record.presence"
)

// ErrNoInbox is returned when a peer message arrives before a session exists.
var ErrNoInbox = errors.New("no session inbox")

// Inbox receives decoded peer messages for the next tick.
type Inbox interface {
	Enqueue(in combat.Inbound)
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager *logging.SlogManager
	Parser     *parser.Parser
	Match      *match.Context
	Influx     *influx.Manager // optional

	// RecordPeerKills persists kills reported by other peers too. Off for
	// a shared database, where every victim writes its own kill.
	RecordPeerKills bool
}

// Manager routes peer messages into the session and persists local records.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	mu    sync.RWMutex
	inbox Inbox

	// counters for the status reporter
	Received cache.SafeCounter
	Dropped  cache.SafeCounter
	Recorded cache.SafeCounter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(deps.LogManager.Logger())
	}
	if deps.Match == nil {
		deps.Match = match.NewContext()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// SetInbox sets where decoded peer messages go.
func (m *Manager) SetInbox(in Inbox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = in
}

func (m *Manager) getInbox() Inbox {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inbox
}

func (m *Manager) hasBackend() bool {
	return m.backend != nil
}

// RestoreLoadout returns the saved loadout of a returning player. A player
// without one, or any storage failure, gets the defaults with the given
// character.
func (m *Manager) RestoreLoadout(playerName string, character core.CharacterKind) core.LoadoutRecord {
	character, _ = core.ParseCharacterKind(string(character))
	fallback := core.LoadoutRecord{
		PlayerName:      playerName,
		PrimaryWeapon:   core.DefaultWeapon,
		SecondaryWeapon: core.DefaultWeapon,
		Character:       character,
	}
	if !m.hasBackend() {
		return fallback
	}

	l, err := m.backend.GetLoadout(playerName)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.deps.LogManager.WriteLog("RestoreLoadout", fmt.Sprintf("Failed to read loadout: %v", err), "WARN")
		}
		return fallback
	}

	l.PrimaryWeapon, _ = core.ParseWeaponKind(string(l.PrimaryWeapon))
	l.SecondaryWeapon, _ = core.ParseWeaponKind(string(l.SecondaryWeapon))
	l.Character, _ = core.ParseCharacterKind(string(l.Character))
	return l
}

// SaveLoadout stores a player's choices for the next session.
func (m *Manager) SaveLoadout(l core.LoadoutRecord) error {
	if !m.hasBackend() {
		return nil
	}
	if err := m.backend.SaveLoadout(l); err != nil {
		return fmt.Errorf("failed to save loadout: %w", err)
	}
	return nil
}
