package main

import (
	"context"
	"time"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/kinematics"
	"github.com/dustline/arena/internal/match"
	"github.com/dustline/arena/internal/monitor"
	"github.com/dustline/arena/internal/scoreboard"
	"github.com/dustline/arena/pkg/core"
)

const statusEvery = time.Second

// queued is implemented by backends that buffer writes.
type queued interface {
	Queued() int
}

// run drives the session at the configured tick rate until ctx ends or the
// score limit is reached, and returns why it stopped.
func (rt *runtime) run(ctx context.Context) string {
	interval := time.Second / time.Duration(rt.sim.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	world := rt.session.World()
	last := time.Now()
	nextStatus := last

	rt.logger.Info("Tick loop started", "tickRate", rt.sim.TickRate, "seed", rt.sim.Seed)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err().Error()
		case now := <-ticker.C:
			// large gaps are clamped by kinematics.Step
			dt := min(now.Sub(last).Seconds(), kinematics.MaxDt)
			last = now

			in := rt.pilot.Next(rt.session.State(), world, rt.session.Roster().Alive())
			out := rt.session.Tick(now.UnixMilli(), dt, in)
			if out.Fire.DidFire {
				rt.logger.Debug("fired", "weapon", rt.session.State().Arsenal.Active, "hits", len(out.Damage), "target", rt.session.Roster().Name(rt.pilot.Target()))
			}

			if now.Before(nextStatus) {
				continue
			}
			nextStatus = now.Add(statusEvery)

			standings, ok := rt.standings()
			rt.monitor.Update(rt.status(now))
			if ok && standings.LimitReached(rt.match.GetMatch().ScoreLimit) {
				rt.logger.Info("Score limit reached", "leader", standings.Leader, "teams", standings.Teams)
				return "score limit reached"
			}
		}
	}
}

// standings recomputes the scoreboard from the stored kills.
func (rt *runtime) standings() (scoreboard.Standings, bool) {
	code := rt.match.GetMatch().Code
	kills, err := rt.backend.ListKills(code)
	if err != nil {
		rt.logger.Warn("Failed to list kills", "error", err)
		return scoreboard.Standings{}, false
	}
	return scoreboard.Compute(kills, func(name string) core.Team {
		return combat.TeamFor(code, name)
	}), true
}

func (rt *runtime) status(now time.Time) monitor.Status {
	m := *rt.match.GetMatch()
	clock := match.RoundClock(m, now)
	st := rt.session.State()
	w := st.Arsenal.ActiveState()

	status := monitor.Status{
		Time:        now.UTC(),
		Match:       m.Code,
		MatchStatus: m.Status,
		Round:       clock.Round,
		RoundLeftMs: clock.Remaining.Milliseconds(),

		PlayerID: st.PlayerID,
		Name:     st.Name,
		Alive:    st.Alive,
		Health:   st.Vitals.Health,
		Armor:    st.Vitals.Armor,
		Wave:     st.Wave,
		Weapon:   string(st.Arsenal.Active),
		Ammo:     w.AmmoInMag,
		Reserve:  w.AmmoReserve,

		Peers:    rt.session.Roster().Len(),
		Pending:  rt.session.Pending(),
		Received: rt.worker.Received.Value(),
		Dropped:  rt.worker.Dropped.Value(),
		Recorded: rt.worker.Recorded.Value(),

		Dispatching: rt.dispatcher.Pending(),
	}
	if q, ok := rt.backend.(queued); ok {
		status.StorageQueue = q.Queued()
	}
	return status
}
