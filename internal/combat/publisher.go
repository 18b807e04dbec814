package combat

import (
	"errors"
	"time"

	"github.com/dustline/arena/pkg/core"
)

//go:generate go tool mockgen -destination=./mocks/publisher_mock.go -package=mocks . Publisher

// Publisher receives everything the local simulation emits: peer broadcasts
// and records meant for persistence.
type Publisher interface {
	PublishShot(ev core.ShotEvent) error
	PublishDamage(ev core.DamageEvent) error
	PublishRespawn(ev core.RespawnEvent) error
	PublishPresence(s core.PresenceSnapshot) error
	PublishKill(k core.KillRecord) error
}

// Publishers fans every call out to each publisher in order. All are called
// even when one fails; the errors are joined.
type Publishers []Publisher

func (ps Publishers) PublishShot(ev core.ShotEvent) error {
	return ps.each(func(p Publisher) error { return p.PublishShot(ev) })
}

func (ps Publishers) PublishDamage(ev core.DamageEvent) error {
	return ps.each(func(p Publisher) error { return p.PublishDamage(ev) })
}

func (ps Publishers) PublishRespawn(ev core.RespawnEvent) error {
	return ps.each(func(p Publisher) error { return p.PublishRespawn(ev) })
}

func (ps Publishers) PublishPresence(s core.PresenceSnapshot) error {
	return ps.each(func(p Publisher) error { return p.PublishPresence(s) })
}

func (ps Publishers) PublishKill(k core.KillRecord) error {
	return ps.each(func(p Publisher) error { return p.PublishKill(k) })
}

func (ps Publishers) each(fn func(Publisher) error) error {
	var errs []error
	for _, p := range ps {
		if err := fn(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MinPresenceInterval is the shortest allowed gap between presence publishes.
const MinPresenceInterval = 45 * time.Millisecond

// PresenceThrottle limits how often presence snapshots go out.
type PresenceThrottle struct {
	intervalMs int64
	lastMs     int64
	sent       bool
}

// NewPresenceThrottle returns a throttle for interval, raised to
// MinPresenceInterval when shorter.
func NewPresenceThrottle(interval time.Duration) *PresenceThrottle {
	interval = max(interval, MinPresenceInterval)
	return &PresenceThrottle{intervalMs: interval.Milliseconds()}
}

// Allow reports whether a snapshot may be sent at now and, if so, records it.
func (t *PresenceThrottle) Allow(now int64) bool {
	if t.sent && now-t.lastMs < t.intervalMs {
		return false
	}
	t.lastMs = now
	t.sent = true
	return true
}

// Reset makes the next Allow succeed.
func (t *PresenceThrottle) Reset() {
	t.sent = false
}
