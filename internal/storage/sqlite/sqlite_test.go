package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dustline/arena/internal/database"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestNew_InMemory(t *testing.T) {
	b, err := New(Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
}

func TestClose_WritesFinalDump(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "match.db")
	b, err := New(Config{DumpPath: dumpPath, DumpInterval: time.Hour}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.StartMatch(&core.MatchRecord{Code: "DUST-SIM"}))
	require.NoError(t, b.RecordKill(&core.KillRecord{AttackerName: "Nova", VictimName: "Rook"}))
	require.NoError(t, b.Close())

	_, err = os.Stat(dumpPath)
	require.NoError(t, err)

	// the dump is a regular database
	db, err := database.GetSqliteDBStandalone(dumpPath)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Table("kills").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// second close is a no-op
	assert.NoError(t, b.Close())
}

func TestDumpLoop(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "loop.db")
	b, err := New(Config{DumpPath: dumpPath, DumpInterval: 20 * time.Millisecond}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(dumpPath)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileDatabase_NoDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.db")
	b, err := New(Config{Path: path, DumpPath: filepath.Join(dir, "dump.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveLoadout(core.LoadoutRecord{PlayerName: "Nova", PrimaryWeapon: core.WeaponRifle}))
	require.NoError(t, b.Close())

	_, err = os.Stat(filepath.Join(dir, "dump.db"))
	assert.True(t, os.IsNotExist(err))

	reopened, err := New(Config{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Init())
	defer reopened.Close()

	l, err := reopened.GetLoadout("Nova")
	require.NoError(t, err)
	assert.Equal(t, core.WeaponRifle, l.PrimaryWeapon)
}
