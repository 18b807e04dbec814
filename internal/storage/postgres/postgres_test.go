package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/dustline/arena/internal/database"
	"github.com/dustline/arena/internal/logging"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

// newTestBackend creates an initialized Backend on an in-memory SQLite DB.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDBStandalone("")
	require.NoError(t, err)

	b := New(Dependencies{
		DB:            db,
		LogManager:    logging.NewSlogManager(),
		WriteInterval: time.Hour,
	})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNew_Defaults(t *testing.T) {
	b := New(Dependencies{})
	require.NotNil(t, b)
	assert.Equal(t, DefaultWriteInterval, b.deps.WriteInterval)
	assert.NotNil(t, b.deps.LogManager)
	assert.NotNil(t, b.presence)
}

func TestInitClose(t *testing.T) {
	b := newTestBackend(t)
	require.NotNil(t, b.stopChan)

	require.NoError(t, b.Close())
	// second close is a no-op
	require.NoError(t, b.Close())
}

func TestClose_WithoutInit(t *testing.T) {
	b := New(Dependencies{})
	assert.NoError(t, b.Close())
}

func TestStartMatch_CreateAndJoin(t *testing.T) {
	b := newTestBackend(t)

	m := &core.MatchRecord{
		Code:       "DUST-SIM",
		Name:       "Dust",
		Mode:       "tdm",
		ScoreLimit: 30,
		Settings:   map[string]any{"tickRate": float64(60)},
	}
	require.NoError(t, b.StartMatch(m))
	assert.Equal(t, core.MatchLive, m.Status)
	assert.False(t, m.CreatedAt.IsZero())

	joined := &core.MatchRecord{Code: "DUST-SIM", Name: "Other", ScoreLimit: 5}
	require.NoError(t, b.StartMatch(joined))
	assert.Equal(t, "Dust", joined.Name)
	assert.Equal(t, 30, joined.ScoreLimit)
	assert.Equal(t, float64(60), joined.Settings["tickRate"])

	_, err := b.GetMatch("NOPE")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	assert.Error(t, b.StartMatch(&core.MatchRecord{}))
}

func TestEndMatch(t *testing.T) {
	b := newTestBackend(t)

	// nothing started
	require.NoError(t, b.EndMatch())

	require.NoError(t, b.StartMatch(&core.MatchRecord{Code: "DUST-SIM"}))
	require.NoError(t, b.EndMatch())

	m, err := b.GetMatch("DUST-SIM")
	require.NoError(t, err)
	assert.Equal(t, core.MatchEnded, m.Status)

	// restarting the same code makes it live again
	require.NoError(t, b.StartMatch(&core.MatchRecord{Code: "DUST-SIM"}))
	m, _ = b.GetMatch("DUST-SIM")
	assert.Equal(t, core.MatchLive, m.Status)
}

func TestLoadoutUpsert(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.GetLoadout("Nova")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.SaveLoadout(core.LoadoutRecord{
		PlayerName:      "Nova",
		PrimaryWeapon:   core.WeaponRifle,
		SecondaryWeapon: core.WeaponPistol,
		Character:       core.CharacterSpecter,
	}))
	require.NoError(t, b.SaveLoadout(core.LoadoutRecord{
		PlayerName:      "Nova",
		PrimaryWeapon:   core.WeaponShotgun,
		SecondaryWeapon: core.WeaponPistol,
		Character:       core.CharacterSpecter,
	}))

	l, err := b.GetLoadout("Nova")
	require.NoError(t, err)
	assert.Equal(t, core.WeaponShotgun, l.PrimaryWeapon)
	assert.Equal(t, core.CharacterSpecter, l.Character)

	assert.Error(t, b.SaveLoadout(core.LoadoutRecord{}))
}

func TestRecordKill_AssignsID(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMatch(&core.MatchRecord{Code: "DUST-SIM"}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	k1 := &core.KillRecord{AttackerName: "Nova", VictimName: "Rook", Weapon: core.WeaponRifle, CreatedAt: base}
	k2 := &core.KillRecord{MatchCode: "DUST-SIM", AttackerName: "Rook", VictimName: "Nova", Headshot: true, CreatedAt: base.Add(time.Second)}
	require.NoError(t, b.RecordKill(k1))
	require.NoError(t, b.RecordKill(k2))

	assert.NotZero(t, k1.ID)
	assert.Greater(t, k2.ID, k1.ID)
	assert.Equal(t, "DUST-SIM", k1.MatchCode)

	kills, err := b.ListKills("DUST-SIM")
	require.NoError(t, err)
	require.Len(t, kills, 2)
	assert.Equal(t, "Nova", kills[0].AttackerName)
	assert.True(t, kills[1].Headshot)

	kills, err = b.ListKills("OTHER")
	require.NoError(t, err)
	assert.Empty(t, kills)
}

func TestRecordPresence_QueuedUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartMatch(&core.MatchRecord{Code: "DUST-SIM"}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.RecordPresence(&core.PresenceSample{
			Time: base.Add(time.Duration(i) * 50 * time.Millisecond),
			Snapshot: core.PresenceSnapshot{
				PlayerID: "p1",
				Name:     "Nova",
				Position: core.Vector3{X: float64(i), Y: 0, Z: 2},
				Alive:    true,
			},
		}))
	}
	assert.Equal(t, 3, b.Queued())

	samples, err := b.ListPresence("DUST-SIM")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Queued())
	require.Len(t, samples, 3)
	assert.Equal(t, "DUST-SIM", samples[0].MatchCode)
	assert.Equal(t, 2.0, samples[2].Snapshot.Position.X)
	assert.Equal(t, 2.0, samples[2].Snapshot.Position.Z)
}

func TestClose_FlushesQueue(t *testing.T) {
	db, err := database.GetSqliteDBStandalone("")
	require.NoError(t, err)
	b := New(Dependencies{DB: db, WriteInterval: time.Hour})
	require.NoError(t, b.Init())

	require.NoError(t, b.RecordPresence(&core.PresenceSample{MatchCode: "DUST-SIM", Time: time.Now()}))
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Table("presence_samples").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
