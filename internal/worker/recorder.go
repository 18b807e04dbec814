package worker

import (
	"time"

	"github.com/dustline/arena/internal/dispatcher"
	"github.com/dustline/arena/pkg/core"
)

// Recorder is the combat.Publisher that hands the local player's events to
// the record handlers. Shots, hits and presence are dropped when their
// buffer is full; kills wait for room.
type Recorder struct {
	d   *dispatcher.Dispatcher
	now func() time.Time
}

// NewRecorder returns a Recorder dispatching into d.
func NewRecorder(d *dispatcher.Dispatcher) *Recorder {
	return &Recorder{d: d, now: time.Now}
}

func (r *Recorder) record(msgType string, v any) error {
	_, err := r.d.Dispatch(dispatcher.Event{Type: msgType, Value: v, Timestamp: r.now()})
	return err
}

func (r *Recorder) PublishShot(ev core.ShotEvent) error {
	return r.record(TypeRecordShot, ev)
}

func (r *Recorder) PublishDamage(ev core.DamageEvent) error {
	return r.record(TypeRecordDamage, ev)
}

// PublishRespawn records nothing; respawns are visible in the presence
// samples.
func (r *Recorder) PublishRespawn(core.RespawnEvent) error {
	return nil
}

func (r *Recorder) PublishPresence(s core.PresenceSnapshot) error {
	return r.record(TypeRecordPresence, s)
}

func (r *Recorder) PublishKill(k core.KillRecord) error {
	return r.record(TypeRecordKill, k)
}
