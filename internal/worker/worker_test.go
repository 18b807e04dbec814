package worker

import (
	"errors"
	"testing"

	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/storage/memory"
	"github.com/dustline/arena/pkg/core"
)

// failingBackend fails every loadout lookup with a storage error.
type failingBackend struct {
	*memory.Backend
}

func (failingBackend) GetLoadout(string) (core.LoadoutRecord, error) {
	return core.LoadoutRecord{}, errors.New("connection reset")
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Dependencies{}, nil)

	if m.deps.LogManager == nil || m.deps.Parser == nil || m.deps.Match == nil {
		t.Error("expected default dependencies")
	}
	if m.hasBackend() {
		t.Error("expected no backend")
	}
}

func TestRestoreLoadout_Defaults(t *testing.T) {
	m := NewManager(Dependencies{}, memory.New(config.MemoryConfig{}))

	l := m.RestoreLoadout("Nova", "bogus")
	if l.PlayerName != "Nova" {
		t.Errorf("expected player Nova, got %s", l.PlayerName)
	}
	if l.PrimaryWeapon != core.DefaultWeapon || l.Character != core.DefaultCharacter {
		t.Errorf("expected defaults, got %+v", l)
	}

	l = NewManager(Dependencies{}, nil).RestoreLoadout("Nova", core.CharacterBulwark)
	if l.Character != core.CharacterBulwark {
		t.Errorf("expected requested character without storage, got %s", l.Character)
	}
}

func TestRestoreLoadout_Saved(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	m := NewManager(Dependencies{}, backend)

	err := m.SaveLoadout(core.LoadoutRecord{
		PlayerName:      "Nova",
		PrimaryWeapon:   core.WeaponRifle,
		SecondaryWeapon: "railgun",
		Character:       core.CharacterSpecter,
	})
	if err != nil {
		t.Fatalf("SaveLoadout failed: %v", err)
	}

	l := m.RestoreLoadout("Nova", core.CharacterRanger)
	if l.PrimaryWeapon != core.WeaponRifle {
		t.Errorf("expected rifle, got %s", l.PrimaryWeapon)
	}
	if l.SecondaryWeapon != core.DefaultWeapon {
		t.Errorf("expected unknown secondary to fall back, got %s", l.SecondaryWeapon)
	}
	if l.Character != core.CharacterSpecter {
		t.Errorf("expected stored character, got %s", l.Character)
	}
}

func TestRestoreLoadout_StorageError(t *testing.T) {
	m := NewManager(Dependencies{}, failingBackend{memory.New(config.MemoryConfig{})})

	l := m.RestoreLoadout("Nova", core.CharacterVanguard)
	if l.PrimaryWeapon != core.DefaultWeapon || l.Character != core.CharacterVanguard {
		t.Errorf("expected defaults on storage error, got %+v", l)
	}
}

func TestSaveLoadout_NoBackend(t *testing.T) {
	m := NewManager(Dependencies{}, nil)
	if err := m.SaveLoadout(core.LoadoutRecord{PlayerName: "Nova"}); err != nil {
		t.Errorf("expected nil without backend, got %v", err)
	}
}
