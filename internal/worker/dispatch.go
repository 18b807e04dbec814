package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/dispatcher"
	"github.com/dustline/arena/internal/influx"
	"github.com/dustline/arena/internal/parser"
	"github.com/dustline/arena/internal/weapon"
	"github.com/dustline/arena/pkg/core"
	"github.com/dustline/arena/pkg/streaming"
)

// RegisterHandlers registers all message handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Peer messages run sync on the read goroutine and keep their arrival
	// order. The session inbox holds combat.InboxLimit of them and drops the
	// oldest when the tick loop falls behind.
	d.Register(streaming.TypeShot, m.handleInbound)
	d.Register(streaming.TypeDamage, m.handleInbound, dispatcher.Logged())
	d.Register(streaming.TypeRespawn, m.handleInbound, dispatcher.Logged())
	d.Register(streaming.TypePresence, m.handleInbound)
	d.Register(streaming.TypeKill, m.handleInbound, dispatcher.Logged())
	d.Register(streaming.TypeJoin, m.handleInbound, dispatcher.Logged())
	d.Register(streaming.TypeLeave, m.handleInbound, dispatcher.Logged())

	// Local records - buffered so storage and telemetry never stall the tick
	d.Register(TypeRecordPresence, m.handleRecordPresence, dispatcher.Buffered(10000))
	d.Register(TypeRecordShot, m.handleRecordShot, dispatcher.Buffered(5000))
	d.Register(TypeRecordDamage, m.handleRecordDamage, dispatcher.Buffered(5000))
	d.Register(TypeRecordKill, m.handleRecordKill, dispatcher.Buffered(1000), dispatcher.Blocking(), dispatcher.Logged())
}

// Receive is the transport callback: it decodes a raw message and
// dispatches it by type. Messages for other matches are ignored.
func (m *Manager) Receive(d *dispatcher.Dispatcher, data []byte, binary bool) {
	now := time.Now()
	m.Received.Inc()

	var (
		e   dispatcher.Event
		err error
	)
	if binary {
		var in combat.Inbound
		in, err = m.deps.Parser.ParsePresenceFrame(data, now.UnixMilli())
		e = dispatcher.Event{Type: streaming.TypePresence, Value: in, Timestamp: now}
	} else {
		var env streaming.Envelope
		env, err = m.deps.Parser.ParseEnvelope(data)
		e = dispatcher.Event{Type: env.Type, Payload: env.Payload, Timestamp: now}
	}
	if err == nil {
		_, err = d.Dispatch(e)
	}

	if err != nil {
		m.Dropped.Inc()
		if !errors.Is(err, parser.ErrOtherMatch) {
			m.deps.LogManager.WriteLog("Receive", fmt.Sprintf("Dropped peer message: %v", err), "DEBUG")
		}
	}
}

func (m *Manager) handleInbound(e dispatcher.Event) (any, error) {
	in, ok := e.Value.(combat.Inbound)
	if !ok {
		var err error
		in, err = m.deps.Parser.ParsePayload(e.Type, e.Payload, e.Timestamp.UnixMilli())
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Type, err)
		}
	}

	inbox := m.getInbox()
	if inbox == nil {
		return nil, ErrNoInbox
	}
	inbox.Enqueue(in)

	if in.Kill != nil && m.deps.RecordPeerKills && m.hasBackend() {
		k := *in.Kill
		if k.MatchCode == "" {
			k.MatchCode = m.deps.Match.GetMatch().Code
		}
		if err := m.backend.RecordKill(&k); err != nil {
			return nil, fmt.Errorf("failed to record peer kill: %w", err)
		}
		m.Recorded.Inc()
	}

	return nil, nil
}

func (m *Manager) handleRecordPresence(e dispatcher.Event) (any, error) {
	s, ok := e.Value.(core.PresenceSnapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected %s value %T", e.Type, e.Value)
	}
	if !m.hasBackend() {
		return nil, nil
	}

	sample := core.PresenceSample{
		MatchCode: m.deps.Match.GetMatch().Code,
		Time:      e.Timestamp,
		Snapshot:  s,
	}
	if err := m.backend.RecordPresence(&sample); err != nil {
		return nil, fmt.Errorf("failed to record presence: %w", err)
	}
	m.Recorded.Inc()
	return nil, nil
}

func (m *Manager) handleRecordShot(e dispatcher.Event) (any, error) {
	ev, ok := e.Value.(core.ShotEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected %s value %T", e.Type, e.Value)
	}
	if m.deps.Influx == nil {
		return nil, nil
	}
	pellets := weapon.Lookup(ev.Weapon).Pellets
	return nil, m.deps.Influx.WritePoint(influx.ShotPoint(m.deps.Match.GetMatch().Code, ev, pellets))
}

func (m *Manager) handleRecordDamage(e dispatcher.Event) (any, error) {
	ev, ok := e.Value.(core.DamageEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected %s value %T", e.Type, e.Value)
	}
	if m.deps.Influx == nil {
		return nil, nil
	}
	return nil, m.deps.Influx.WritePoint(influx.HitPoint(m.deps.Match.GetMatch().Code, ev))
}

func (m *Manager) handleRecordKill(e dispatcher.Event) (any, error) {
	k, ok := e.Value.(core.KillRecord)
	if !ok {
		return nil, fmt.Errorf("unexpected %s value %T", e.Type, e.Value)
	}
	if k.MatchCode == "" {
		k.MatchCode = m.deps.Match.GetMatch().Code
	}

	if m.hasBackend() {
		if err := m.backend.RecordKill(&k); err != nil {
			return nil, fmt.Errorf("failed to record kill: %w", err)
		}
		m.Recorded.Inc()
	}
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WritePoint(influx.KillPoint(k)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
