package combat

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustline/arena/internal/cache"
	"github.com/dustline/arena/internal/damage"
	"github.com/dustline/arena/internal/queue"
	"github.com/dustline/arena/pkg/core"
	"github.com/dustline/arena/pkg/streaming"
)

// Inbound is one decoded peer message waiting for the tick loop. Exactly one
// payload field is set, matching Type.
type Inbound struct {
	Type       string
	Shot       *core.ShotEvent
	Damage     *core.DamageEvent
	Respawn    *core.RespawnEvent
	Presence   *core.PresenceSnapshot
	Kill       *core.KillRecord
	Join       *streaming.JoinPayload
	Leave      *streaming.LeavePayload
	ReceivedAt int64
}

// InboxLimit caps the peer messages waiting for a tick. A stalled loop drops
// the oldest.
const InboxLimit = 4096

// SessionConfig tunes a Session.
type SessionConfig struct {
	PresenceInterval time.Duration
	Seed             int64
}

// Session owns the local simulation. Transport goroutines only Enqueue; all
// other methods belong to the tick loop's goroutine.
type Session struct {
	state    State
	world    World
	roster   *cache.Roster
	inbox    *queue.Queue[Inbound]
	pub      Publisher
	throttle *PresenceThrottle
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewSession wraps a freshly spawned state.
func NewSession(state State, world World, pub Publisher, cfg SessionConfig, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		state:    state,
		world:    world,
		roster:   cache.NewRoster(state.PlayerID),
		inbox:    queue.NewBounded[Inbound](InboxLimit),
		pub:      pub,
		throttle: NewPresenceThrottle(cfg.PresenceInterval),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		logger:   logger.With("playerId", state.PlayerID, "match", state.MatchCode),
	}
}

// Enqueue hands a peer message to the next tick. Safe for concurrent use.
func (s *Session) Enqueue(in Inbound) {
	if n := s.inbox.Push(in); n > 0 {
		s.logger.Warn("inbox full, dropped oldest messages", "count", n)
	}
}

// Pending returns the number of queued peer messages.
func (s *Session) Pending() int {
	return s.inbox.Len()
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) World() World {
	return s.world
}

func (s *Session) Roster() *cache.Roster {
	return s.roster
}

// SwitchWeapon changes the weapon in hand outside of a tick, e.g. when a
// loadout is restored.
func (s *Session) SwitchWeapon(kind core.WeaponKind) {
	s.state = s.state.SwitchWeapon(kind)
}

// Tick runs one simulation step at now (ms epoch). Queued peer messages are
// applied first in the order they arrived, then the local step runs and its
// output is published.
func (s *Session) Tick(now int64, dt float64, in Input) Output {
	for _, msg := range s.inbox.Drain() {
		s.apply(msg, now)
	}
	if n := s.roster.Prune(now); n > 0 {
		s.logger.Debug("dropped stale peers", "count", n)
	}

	var out Output
	s.state, out = Step(s.state, in, now, dt, s.world, s.targets(), s.rng)

	if out.Respawn != nil {
		s.logger.Info("respawned", "wave", s.state.Wave, "position", out.Respawn.Position)
		s.publish("respawn", s.pub.PublishRespawn(*out.Respawn))
		s.throttle.Reset()
	}
	if out.Shot != nil {
		s.publish("shot", s.pub.PublishShot(*out.Shot))
	}
	for _, ev := range out.Damage {
		s.logger.Debug("hit", "target", s.roster.Name(ev.TargetID), "amount", ev.Amount, "headshot", ev.Headshot)
		s.publish("damage", s.pub.PublishDamage(ev))
	}
	if s.throttle.Allow(now) {
		s.publish("presence", s.pub.PublishPresence(s.state.Presence(in.Input, now)))
	}

	return out
}

func (s *Session) apply(msg Inbound, now int64) {
	seen := msg.ReceivedAt
	if seen == 0 {
		seen = now
	}

	switch {
	case msg.Damage != nil:
		if msg.Damage.TargetID != s.state.PlayerID || !s.state.Alive {
			return
		}
		var outcome damage.Outcome
		var kill *core.KillRecord
		s.state, outcome, kill = ApplyIncomingDamage(s.state, *msg.Damage, now)
		s.logger.Debug("took damage", "from", msg.Damage.AttackerName, "applied", outcome.DamageApplied, "armorSpent", outcome.ArmorSpent)
		if kill != nil {
			s.logger.Info("eliminated", "by", kill.AttackerName, "weapon", kill.Weapon, "headshot", kill.Headshot)
			s.publish("kill", s.pub.PublishKill(*kill))
		}
	case msg.Presence != nil:
		s.roster.Upsert(*msg.Presence, seen)
	case msg.Respawn != nil:
		s.roster.Respawned(*msg.Respawn, seen)
	case msg.Kill != nil:
		s.roster.Killed(msg.Kill.VictimID)
	case msg.Join != nil:
		character, _ := core.ParseCharacterKind(string(msg.Join.Character))
		s.roster.Join(msg.Join.PlayerID, msg.Join.Name, character, seen)
	case msg.Leave != nil:
		s.roster.Remove(msg.Leave.PlayerID)
	case msg.Shot != nil:
		// tracers are drawn by the renderer; nothing to simulate
	default:
		s.logger.Warn("empty inbound message", "type", msg.Type)
	}
}

func (s *Session) targets() []Target {
	peers := s.roster.Alive()
	out := make([]Target, 0, len(peers))
	for _, p := range peers {
		out = append(out, Target{
			ID:        p.Presence.PlayerID,
			Name:      p.Presence.Name,
			Position:  p.Presence.Position,
			Character: p.Presence.Character,
		})
	}
	return out
}

func (s *Session) publish(kind string, err error) {
	if err != nil {
		s.logger.Warn("publish failed", "kind", kind, "error", err)
	}
}
