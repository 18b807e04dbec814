package weapon

// Reason explains the outcome of a fire attempt.
type Reason string

const (
	ReasonFired     Reason = "fired"
	ReasonCooldown  Reason = "cooldown"
	ReasonReloading Reason = "reloading"
	ReasonEmptyMag  Reason = "empty-mag"
)

// FireResult is the outcome of TryFire. A rejected attempt is not an error.
type FireResult struct {
	DidFire bool
	Reason  Reason
}

// State is one player's runtime state for one weapon.
//
// ReloadingUntil is nil exactly when no reload is pending. A LastShotAt of 0
// means the weapon has not fired this life.
type State struct {
	AmmoInMag      int    `json:"ammoInMag"`
	AmmoReserve    int    `json:"ammoReserve"`
	LastShotAt     int64  `json:"lastShotAt"`
	ReloadingUntil *int64 `json:"reloadingUntil"`
}

// NewState returns a full weapon as issued on spawn.
func NewState(spec Spec) State {
	return State{
		AmmoInMag:   spec.MagazineSize,
		AmmoReserve: spec.ReserveCapacity,
	}
}

// IsReloading reports whether a reload is pending and not yet due at now.
func (s State) IsReloading(now int64) bool {
	return s.ReloadingUntil != nil && now < *s.ReloadingUntil
}

// TryFire attempts to fire one round at now. The caller decides whether to
// reload after ReasonEmptyMag.
func TryFire(spec Spec, s State, now int64) (State, FireResult) {
	if s.IsReloading(now) {
		return s, FireResult{Reason: ReasonReloading}
	}
	if s.LastShotAt != 0 && now-s.LastShotAt < spec.FireIntervalMs {
		return s, FireResult{Reason: ReasonCooldown}
	}
	if s.AmmoInMag <= 0 {
		return s, FireResult{Reason: ReasonEmptyMag}
	}

	s.AmmoInMag--
	s.LastShotAt = now
	return s, FireResult{DidFire: true, Reason: ReasonFired}
}

// BeginReload starts a reload that completes at now+ReloadMs. It returns s
// unchanged when already reloading, when the magazine is full or when no
// reserve ammo is left.
func BeginReload(spec Spec, s State, now int64) State {
	if s.ReloadingUntil != nil || s.AmmoInMag >= spec.MagazineSize || s.AmmoReserve <= 0 {
		return s
	}
	until := now + spec.ReloadMs
	s.ReloadingUntil = &until
	return s
}

// TickReload completes a due reload by moving rounds from reserve into the
// magazine. It must run every tick for every weapon a player holds.
func TickReload(spec Spec, s State, now int64) State {
	if s.ReloadingUntil == nil || now < *s.ReloadingUntil {
		return s
	}
	moved := min(spec.MagazineSize-s.AmmoInMag, s.AmmoReserve)
	if moved < 0 {
		moved = 0
	}
	s.AmmoInMag += moved
	s.AmmoReserve -= moved
	s.ReloadingUntil = nil
	return s
}
