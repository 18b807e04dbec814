package weapon

import (
	"testing"

	"github.com/dustline/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertReloadContract checks that a nil ReloadingUntil and "not reloading"
// always agree.
func assertReloadContract(t *testing.T, s State, now int64) {
	t.Helper()
	if s.ReloadingUntil == nil {
		assert.False(t, s.IsReloading(now))
	}
	if s.IsReloading(now) {
		require.NotNil(t, s.ReloadingUntil)
	}
}

func TestCatalog_ThreeKinds(t *testing.T) {
	specs := Catalog()
	require.Len(t, specs, 3)
	assert.Equal(t, core.WeaponPistol, specs[0].Kind)
	assert.Equal(t, core.WeaponRifle, specs[1].Kind)
	assert.Equal(t, core.WeaponShotgun, specs[2].Kind)

	for _, s := range specs {
		assert.GreaterOrEqual(t, s.ArmorPenetration, 0.0)
		assert.LessOrEqual(t, s.ArmorPenetration, 1.0)
		assert.Positive(t, s.Pellets)
	}
}

func TestLookup_UnknownIsDefault(t *testing.T) {
	assert.Equal(t, core.DefaultWeapon, Lookup("laser").Kind)
}

func TestTryFire_Cooldown(t *testing.T) {
	for _, spec := range Catalog() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			s := NewState(spec)
			const start = int64(10_000)

			s, res := TryFire(spec, s, start)
			require.True(t, res.DidFire)
			assert.Equal(t, ReasonFired, res.Reason)

			_, res = TryFire(spec, s, start+spec.FireIntervalMs-1)
			assert.False(t, res.DidFire)
			assert.Equal(t, ReasonCooldown, res.Reason)

			_, res = TryFire(spec, s, start+spec.FireIntervalMs)
			assert.True(t, res.DidFire)
		})
	}
}

func TestTryFire_FreshWeaponNotOnCooldown(t *testing.T) {
	for _, spec := range Catalog() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			s, res := TryFire(spec, NewState(spec), 100)
			require.True(t, res.DidFire)
			assert.Equal(t, ReasonFired, res.Reason)
			assert.Equal(t, int64(100), s.LastShotAt)
		})
	}
}

func TestTryFire_AmmoConservation(t *testing.T) {
	for _, spec := range Catalog() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			s := NewState(spec)
			now := int64(5_000)

			for n := 1; n <= spec.MagazineSize; n++ {
				var res FireResult
				s, res = TryFire(spec, s, now)
				require.True(t, res.DidFire)
				assert.Equal(t, spec.MagazineSize-n, s.AmmoInMag)
				now += spec.FireIntervalMs
			}

			for i := 0; i < 3; i++ {
				var res FireResult
				s, res = TryFire(spec, s, now)
				assert.False(t, res.DidFire)
				assert.Equal(t, ReasonEmptyMag, res.Reason)
				assert.Equal(t, 0, s.AmmoInMag)
				now += spec.FireIntervalMs
			}
			assert.Equal(t, spec.ReserveCapacity, s.AmmoReserve)
		})
	}
}

func TestTryFire_WhileReloading(t *testing.T) {
	spec := Lookup(core.WeaponRifle)
	s := NewState(spec)
	s.AmmoInMag = 3
	s = BeginReload(spec, s, 1_000)

	_, res := TryFire(spec, s, 1_500)
	assert.False(t, res.DidFire)
	assert.Equal(t, ReasonReloading, res.Reason)
	assertReloadContract(t, s, 1_500)
}

func TestReloadCompletion(t *testing.T) {
	for _, spec := range Catalog() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			s := State{AmmoInMag: 1, AmmoReserve: 20}
			now := int64(2_000)

			s = BeginReload(spec, s, now)
			require.NotNil(t, s.ReloadingUntil)
			assert.Equal(t, now+spec.ReloadMs, *s.ReloadingUntil)
			assertReloadContract(t, s, now)

			early := TickReload(spec, s, now+spec.ReloadMs-1)
			assert.Equal(t, s, early)

			s = TickReload(spec, s, now+spec.ReloadMs+1)
			moved := min(spec.MagazineSize-1, 20)
			assert.Equal(t, 1+moved, s.AmmoInMag)
			assert.Equal(t, 20-moved, s.AmmoReserve)
			assert.Nil(t, s.ReloadingUntil)
			assertReloadContract(t, s, now+spec.ReloadMs+1)
		})
	}
}

func TestBeginReload_NoOps(t *testing.T) {
	spec := Lookup(core.WeaponPistol)

	full := NewState(spec)
	assert.Equal(t, full, BeginReload(spec, full, 100))

	dry := State{AmmoInMag: 2, AmmoReserve: 0}
	assert.Equal(t, dry, BeginReload(spec, dry, 100))

	pending := BeginReload(spec, State{AmmoInMag: 2, AmmoReserve: 10}, 100)
	again := BeginReload(spec, pending, 500)
	assert.Same(t, pending.ReloadingUntil, again.ReloadingUntil)
}

func TestTickReload_PartialReserve(t *testing.T) {
	spec := Lookup(core.WeaponShotgun)
	s := BeginReload(spec, State{AmmoInMag: 0, AmmoReserve: 4}, 0)
	s = TickReload(spec, s, spec.ReloadMs)

	assert.Equal(t, 4, s.AmmoInMag)
	assert.Equal(t, 0, s.AmmoReserve)
	assert.Nil(t, s.ReloadingUntil)
}

func TestTransitionsArePure(t *testing.T) {
	spec := Lookup(core.WeaponRifle)
	s := NewState(spec)

	a, ra := TryFire(spec, s, 777)
	b, rb := TryFire(spec, s, 777)
	assert.Equal(t, a, b)
	assert.Equal(t, ra, rb)
	assert.Equal(t, spec.MagazineSize, s.AmmoInMag, "input state must not change")
}

func TestArsenal_IndependentSlots(t *testing.T) {
	a := NewArsenal(core.WeaponRifle)
	assert.Equal(t, core.WeaponRifle, a.Active)

	rifle := Lookup(core.WeaponRifle)
	s, _ := TryFire(rifle, a.ActiveState(), 1_000)
	a = a.With(core.WeaponRifle, s)

	a = a.Switch(core.WeaponShotgun)
	assert.Equal(t, Lookup(core.WeaponShotgun).MagazineSize, a.ActiveState().AmmoInMag)

	a = a.Switch(core.WeaponRifle)
	assert.Equal(t, rifle.MagazineSize-1, a.ActiveState().AmmoInMag)
}

func TestArsenal_TickAllFinishesBackgroundReload(t *testing.T) {
	a := NewArsenal(core.WeaponPistol)
	shotgun := Lookup(core.WeaponShotgun)

	sg := a.State(core.WeaponShotgun)
	sg.AmmoInMag = 1
	sg = BeginReload(shotgun, sg, 0)
	a = a.With(core.WeaponShotgun, sg)

	a = a.TickAll(shotgun.ReloadMs)
	assert.Equal(t, shotgun.MagazineSize, a.State(core.WeaponShotgun).AmmoInMag)
	assert.Nil(t, a.State(core.WeaponShotgun).ReloadingUntil)
	assert.Equal(t, core.WeaponPistol, a.Active)
}
