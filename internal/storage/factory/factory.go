// Package factory builds the configured storage backend.
package factory

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/logging"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/internal/storage/memory"
	pgstorage "github.com/dustline/arena/internal/storage/postgres"
	sqlitestorage "github.com/dustline/arena/internal/storage/sqlite"
)

// Backend type names accepted in storage.type.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Dependencies holds what the backends need beyond their config.
type Dependencies struct {
	LogManager   *logging.SlogManager
	SessionStart time.Time
}

// New creates an uninitialized backend for cfg. Unknown types fall back to
// memory.
func New(cfg config.StorageConfig, deps Dependencies) (storage.Backend, error) {
	switch cfg.Type {
	case TypePostgres:
		return pgstorage.New(pgstorage.Dependencies{
			LogManager: deps.LogManager,
		}), nil

	case TypeSQLite:
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			Path:         cfg.SQLite.Path,
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     DumpPath(cfg, deps.SessionStart),
		}, deps.LogManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		return backend, nil

	default:
		return memory.New(cfg.Memory), nil
	}
}

// DumpPath is where an in-memory SQLite database is dumped: a session-stamped
// file in the memory output dir. Empty when the database lives in a file.
func DumpPath(cfg config.StorageConfig, sessionStart time.Time) string {
	if cfg.SQLite.Path != "" || cfg.Memory.OutputDir == "" {
		return ""
	}
	if sessionStart.IsZero() {
		sessionStart = time.Now()
	}
	return filepath.Join(cfg.Memory.OutputDir, fmt.Sprintf("arena_%s.db", sessionStart.UTC().Format("20060102_150405")))
}
