package worker

import (
	"sync"
	"testing"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/dispatcher"
	"github.com/dustline/arena/internal/match"
	"github.com/dustline/arena/internal/parser"
	"github.com/dustline/arena/internal/storage/memory"
	"github.com/dustline/arena/pkg/core"
	"github.com/dustline/arena/pkg/streaming"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *mockLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *mockLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// mockInbox collects enqueued messages
type mockInbox struct {
	mu   sync.Mutex
	msgs []combat.Inbound
}

func (i *mockInbox) Enqueue(in combat.Inbound) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, in)
}

func (i *mockInbox) all() []combat.Inbound {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]combat.Inbound(nil), i.msgs...)
}

func newTestDispatcher(t *testing.T) (*dispatcher.Dispatcher, *mockLogger) {
	logger := &mockLogger{}

	d, err := dispatcher.New(logger, nil)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

type fixture struct {
	d       *dispatcher.Dispatcher
	manager *Manager
	inbox   *mockInbox
	backend *memory.Backend
}

func newFixture(t *testing.T, recordPeerKills bool) fixture {
	t.Helper()
	d, _ := newTestDispatcher(t)

	mc := match.NewContext()
	mc.SetMatch(&core.MatchRecord{Code: "DUST-SIM", Status: core.MatchLive})
	p := parser.NewParser(nil)
	p.SetMatch("DUST-SIM")

	backend := memory.New(config.MemoryConfig{})
	_ = backend.StartMatch(&core.MatchRecord{Code: "DUST-SIM"})

	manager := NewManager(Dependencies{
		Parser:          p,
		Match:           mc,
		RecordPeerKills: recordPeerKills,
	}, backend)
	inbox := &mockInbox{}
	manager.SetInbox(inbox)
	manager.RegisterHandlers(d)

	return fixture{d: d, manager: manager, inbox: inbox, backend: backend}
}

func envelope(t *testing.T, msgType, match string, payload any) []byte {
	t.Helper()
	data, err := streaming.MarshalEnvelope(msgType, match, "p2", payload)
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	return data
}

func TestRegisterHandlers_RegistersAllTypes(t *testing.T) {
	f := newFixture(t, false)
	defer f.d.Close()

	expected := []string{
		streaming.TypeShot,
		streaming.TypeDamage,
		streaming.TypeRespawn,
		streaming.TypePresence,
		streaming.TypeKill,
		streaming.TypeJoin,
		streaming.TypeLeave,
		TypeRecordShot,
		TypeRecordDamage,
		TypeRecordKill,
		TypeRecordPresence,
	}

	for _, typ := range expected {
		if !f.d.HasHandler(typ) {
			t.Errorf("expected handler for %s to be registered", typ)
		}
	}
}

func TestReceive_TextMessage(t *testing.T) {
	f := newFixture(t, false)
	defer f.d.Close()

	f.manager.Receive(f.d, envelope(t, streaming.TypeJoin, "DUST-SIM", streaming.JoinPayload{PlayerID: "p2", Name: "Kite"}), false)
	f.manager.Receive(f.d, envelope(t, streaming.TypeDamage, "", core.DamageEvent{TargetID: "p1", Amount: 28}), false)

	msgs := f.inbox.all()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 inbound messages, got %d", len(msgs))
	}
	if msgs[0].Join == nil || msgs[0].Join.Name != "Kite" {
		t.Errorf("expected join from Kite, got %+v", msgs[0])
	}
	if msgs[1].Damage == nil || msgs[1].Damage.Amount != 28 {
		t.Errorf("expected damage 28, got %+v", msgs[1])
	}
	if msgs[1].ReceivedAt == 0 {
		t.Error("expected ReceivedAt to be stamped")
	}
	if f.manager.Received.Value() != 2 || f.manager.Dropped.Value() != 0 {
		t.Errorf("unexpected counters received=%d dropped=%d", f.manager.Received.Value(), f.manager.Dropped.Value())
	}
}

func TestReceive_BinaryPresence(t *testing.T) {
	f := newFixture(t, false)
	defer f.d.Close()

	frame, err := streaming.EncodePresence("DUST-SIM", core.PresenceSnapshot{PlayerID: "p2", Name: "Kite", Alive: true})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f.manager.Receive(f.d, frame, true)

	msgs := f.inbox.all()
	if len(msgs) != 1 || msgs[0].Presence == nil {
		t.Fatalf("expected one presence message, got %+v", msgs)
	}
	if msgs[0].Presence.PlayerID != "p2" {
		t.Errorf("expected player p2, got %s", msgs[0].Presence.PlayerID)
	}
}

func TestReceive_Dropped(t *testing.T) {
	f := newFixture(t, false)
	defer f.d.Close()

	f.manager.Receive(f.d, envelope(t, streaming.TypeShot, "OTHER", core.ShotEvent{}), false)
	f.manager.Receive(f.d, []byte("not json"), false)
	f.manager.Receive(f.d, envelope(t, "chat", "DUST-SIM", map[string]string{}), false)
	f.manager.Receive(f.d, []byte{0xc1}, true)

	if n := len(f.inbox.all()); n != 0 {
		t.Errorf("expected nothing enqueued, got %d", n)
	}
	if f.manager.Dropped.Value() != 4 {
		t.Errorf("expected 4 dropped, got %d", f.manager.Dropped.Value())
	}
}

func TestHandleInbound_NoInbox(t *testing.T) {
	d, _ := newTestDispatcher(t)
	defer d.Close()
	manager := NewManager(Dependencies{}, nil)
	manager.RegisterHandlers(d)

	_, err := d.Dispatch(dispatcher.Event{Type: streaming.TypeLeave, Payload: []byte(`{"playerId":"p2"}`)})
	if err != ErrNoInbox {
		t.Errorf("expected ErrNoInbox, got %v", err)
	}
}

func TestHandleInbound_PeerKills(t *testing.T) {
	for _, record := range []bool{false, true} {
		f := newFixture(t, record)

		kill := core.KillRecord{AttackerID: "p1", AttackerName: "Nova", VictimID: "p2", VictimName: "Kite"}
		f.manager.Receive(f.d, envelope(t, streaming.TypeKill, "DUST-SIM", kill), false)
		f.d.Close()

		if n := len(f.inbox.all()); n != 1 {
			t.Errorf("expected kill enqueued, got %d", n)
		}
		kills, _ := f.backend.ListKills("DUST-SIM")
		want := 0
		if record {
			want = 1
		}
		if len(kills) != want {
			t.Errorf("RecordPeerKills=%v: expected %d stored kills, got %d", record, want, len(kills))
		}
	}
}

func TestRecorder_PersistsLocalRecords(t *testing.T) {
	f := newFixture(t, false)
	r := NewRecorder(f.d)

	var _ combat.Publisher = r

	if err := r.PublishPresence(core.PresenceSnapshot{PlayerID: "p1", Name: "Nova"}); err != nil {
		t.Fatalf("PublishPresence failed: %v", err)
	}
	if err := r.PublishKill(core.KillRecord{VictimID: "p1", AttackerID: "p2"}); err != nil {
		t.Fatalf("PublishKill failed: %v", err)
	}
	if err := r.PublishShot(core.ShotEvent{AttackerID: "p1", Weapon: core.WeaponShotgun}); err != nil {
		t.Fatalf("PublishShot failed: %v", err)
	}
	if err := r.PublishDamage(core.DamageEvent{AttackerID: "p1"}); err != nil {
		t.Fatalf("PublishDamage failed: %v", err)
	}
	if err := r.PublishRespawn(core.RespawnEvent{}); err != nil {
		t.Fatalf("PublishRespawn failed: %v", err)
	}

	// drain the buffered handlers
	f.d.Close()

	kills, _ := f.backend.ListKills("DUST-SIM")
	if len(kills) != 1 || kills[0].MatchCode != "DUST-SIM" {
		t.Errorf("expected one kill stamped with the match, got %+v", kills)
	}
	samples, _ := f.backend.ListPresence("DUST-SIM")
	if len(samples) != 1 || samples[0].Time.IsZero() {
		t.Errorf("expected one timestamped presence sample, got %+v", samples)
	}
	if f.manager.Recorded.Value() != 2 {
		t.Errorf("expected 2 recorded, got %d", f.manager.Recorded.Value())
	}
}

func TestRecordHandlers_RejectWrongValue(t *testing.T) {
	f := newFixture(t, false)
	defer f.d.Close()

	for _, h := range []func(dispatcher.Event) (any, error){
		f.manager.handleRecordPresence,
		f.manager.handleRecordShot,
		f.manager.handleRecordDamage,
		f.manager.handleRecordKill,
	} {
		if _, err := h(dispatcher.Event{Type: "record.test", Value: 42}); err == nil {
			t.Error("expected error for wrong value type")
		}
	}
}
