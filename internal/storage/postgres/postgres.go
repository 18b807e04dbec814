// Package postgres implements the storage.Backend interface using GORM/PostgreSQL
// with an internal presence queue and a background DB writer goroutine.
package postgres

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustline/arena/internal/database"
	"github.com/dustline/arena/internal/logging"
	"github.com/dustline/arena/internal/model"
	"github.com/dustline/arena/internal/model/convert"
	"github.com/dustline/arena/internal/queue"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxQueuedPresence caps the presence samples held while the database is
// unreachable.
const MaxQueuedPresence = 100_000

// DefaultWriteInterval is how often queued presence samples are written.
const DefaultWriteInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	WriteInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Kills are written synchronously so they get their ID immediately; presence
// samples are batched.
type Backend struct {
	deps      Dependencies
	presence  *queue.Queue[model.PresenceSample]
	matchCode atomic.Pointer[string]
	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.WriteInterval <= 0 {
		deps.WriteInterval = DefaultWriteInterval
	}
	return &Backend{
		deps:     deps,
		presence: queue.NewBounded[model.PresenceSample](MaxQueuedPresence),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
// If no DB was injected via Dependencies, it creates its own postgres connection.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		b.deps.LogManager.WriteLog("setupDB", fmt.Sprintf("Failed to migrate: %s", err), "ERROR")
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.deps.LogManager.WriteLog("setupDB", "Database setup complete", "INFO")

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	b.startDBWriter()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.stopChan == nil {
			return
		}
		close(b.stopChan)
		<-b.done
		err = b.Flush()
	})
	return err
}

// Flush writes all queued presence samples now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return nil
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return writeQueue(b.deps.DB, b.presence, "presence samples", b.deps.LogManager.WriteLog)
}

// StartMatch gets or creates the match by code and marks it live. m is
// updated with the stored definition.
func (b *Backend) StartMatch(m *core.MatchRecord) error {
	if m.Code == "" {
		return fmt.Errorf("match code is empty")
	}
	db := b.deps.DB
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	gormMatch := convert.CoreToMatch(*m)
	if err := db.Where(model.Match{Code: gormMatch.Code}).FirstOrCreate(&gormMatch).Error; err != nil {
		return fmt.Errorf("failed to get or insert match: %w", err)
	}
	if err := db.Model(&gormMatch).Updates(map[string]any{
		"status":   core.MatchLive,
		"ended_at": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to mark match live: %w", err)
	}
	gormMatch.Status = core.MatchLive

	*m = convert.MatchToCore(gormMatch)
	code := m.Code
	b.matchCode.Store(&code)
	return nil
}

// EndMatch marks the current match ended.
func (b *Backend) EndMatch() error {
	code := b.currentCode()
	if code == "" {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}
	err := b.deps.DB.Model(&model.Match{}).Where("code = ?", code).Updates(map[string]any{
		"status":   core.MatchEnded,
		"ended_at": time.Now().UTC(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to end match: %w", err)
	}
	b.matchCode.Store(nil)
	return nil
}

// GetMatch returns a match by code.
func (b *Backend) GetMatch(code string) (core.MatchRecord, error) {
	var m model.Match
	if err := b.deps.DB.Where("code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.MatchRecord{}, storage.ErrNotFound
		}
		return core.MatchRecord{}, fmt.Errorf("failed to find match %s: %w", code, err)
	}
	return convert.MatchToCore(m), nil
}

// SaveLoadout upserts a player's loadout.
func (b *Backend) SaveLoadout(l core.LoadoutRecord) error {
	if l.PlayerName == "" {
		return fmt.Errorf("loadout player name is empty")
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = time.Now().UTC()
	}
	gormObj := convert.CoreToLoadout(l)
	if err := b.deps.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&gormObj).Error; err != nil {
		return fmt.Errorf("failed to save loadout: %w", err)
	}
	return nil
}

// GetLoadout returns a player's loadout.
func (b *Backend) GetLoadout(playerName string) (core.LoadoutRecord, error) {
	var l model.Loadout
	if err := b.deps.DB.Where("player_name = ?", playerName).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.LoadoutRecord{}, storage.ErrNotFound
		}
		return core.LoadoutRecord{}, fmt.Errorf("failed to find loadout: %w", err)
	}
	return convert.LoadoutToCore(l), nil
}

// RecordKill inserts a kill synchronously and assigns its ID.
func (b *Backend) RecordKill(k *core.KillRecord) error {
	if k.MatchCode == "" {
		k.MatchCode = b.currentCode()
	}
	gormObj := convert.CoreToKill(*k)
	if err := b.deps.DB.Create(&gormObj).Error; err != nil {
		return fmt.Errorf("failed to insert kill: %w", err)
	}
	k.ID = gormObj.ID
	return nil
}

// RecordPresence converts and queues a presence sample.
func (b *Backend) RecordPresence(s *core.PresenceSample) error {
	if s.MatchCode == "" {
		s.MatchCode = b.currentCode()
	}
	b.presence.Push(convert.CoreToPresenceSample(*s))
	return nil
}

// ListKills returns the kills of a match, oldest first.
func (b *Backend) ListKills(matchCode string) ([]core.KillRecord, error) {
	var rows []model.Kill
	err := b.deps.DB.Where("match_code = ?", matchCode).Order("created_at, id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list kills: %w", err)
	}
	out := make([]core.KillRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.KillToCore(r))
	}
	return out, nil
}

// ListPresence flushes the queue and returns the samples of a match, oldest
// first.
func (b *Backend) ListPresence(matchCode string) ([]core.PresenceSample, error) {
	if err := b.Flush(); err != nil {
		return nil, err
	}
	var rows []model.PresenceSample
	err := b.deps.DB.Where("match_code = ?", matchCode).Order("time, id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list presence samples: %w", err)
	}
	out := make([]core.PresenceSample, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.PresenceSampleToCore(r))
	}
	return out, nil
}

// Queued returns the number of presence samples waiting for the writer.
func (b *Backend) Queued() int {
	return b.presence.Len()
}

func (b *Backend) currentCode() string {
	if p := b.matchCode.Load(); p != nil {
		return *p
	}
	return ""
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items are put back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) error {
	if q.Empty() {
		return nil
	}

	tx := db.Begin()
	items := q.Drain()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		if n := q.Requeue(items); n > 0 {
			log(":DB:WRITER:", fmt.Sprintf("Dropped %d queued %s", n, name), "WARN")
		}
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return tx.Commit().Error
}

// startDBWriter starts the background goroutine that periodically drains the
// presence queue into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		defer close(b.done)
		ticker := time.NewTicker(b.deps.WriteInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				_ = b.Flush()
			}
		}
	}()
}
