// Package scoreboard derives match standings from persisted kill records.
// Kill records are the only source of truth; nothing here is stored.
package scoreboard

import (
	"sort"

	"github.com/dustline/arena/pkg/core"
)

// PlayerScore is one row of the standings. Players are keyed by display name
// since peer ids change on every session.
type PlayerScore struct {
	Name      string    `json:"name"`
	Team      core.Team `json:"team"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	Headshots int       `json:"headshots"`
	TeamKills int       `json:"teamKills"`
}

// Ratio is kills per death, or kills when the player never died.
func (p PlayerScore) Ratio() float64 {
	if p.Deaths == 0 {
		return float64(p.Kills)
	}
	return float64(p.Kills) / float64(p.Deaths)
}

// Standings is the scoreboard for one match.
type Standings struct {
	Players []PlayerScore     `json:"players"`
	Teams   map[core.Team]int `json:"teams"`
	Leader  core.Team         `json:"leader,omitempty"` // empty on a tie
}

// TeamOf resolves a player's team from its display name.
type TeamOf func(name string) core.Team

// Compute tallies kills. A kill of a teammate, or a kill with no attacker,
// only counts as a death for the victim.
func Compute(kills []core.KillRecord, teamOf TeamOf) Standings {
	rows := make(map[string]*PlayerScore)
	row := func(name string) *PlayerScore {
		r, ok := rows[name]
		if !ok {
			r = &PlayerScore{Name: name, Team: teamOf(name)}
			rows[name] = r
		}
		return r
	}

	teams := make(map[core.Team]int, len(core.Teams))
	for _, t := range core.Teams {
		teams[t] = 0
	}

	for _, k := range kills {
		victim := row(nameOr(k.VictimName, k.VictimID))
		victim.Deaths++

		attackerName := nameOr(k.AttackerName, k.AttackerID)
		if attackerName == "" || attackerName == victim.Name {
			continue
		}
		attacker := row(attackerName)
		if attacker.Team == victim.Team {
			attacker.TeamKills++
			continue
		}
		attacker.Kills++
		if k.Headshot {
			attacker.Headshots++
		}
		teams[attacker.Team]++
	}

	s := Standings{Teams: teams}
	for _, r := range rows {
		s.Players = append(s.Players, *r)
	}
	sort.Slice(s.Players, func(i, j int) bool {
		a, b := s.Players[i], s.Players[j]
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.Deaths != b.Deaths {
			return a.Deaths < b.Deaths
		}
		return a.Name < b.Name
	})

	best := -1
	for _, t := range core.Teams {
		switch {
		case teams[t] > best:
			best = teams[t]
			s.Leader = t
		case teams[t] == best:
			s.Leader = ""
		}
	}
	return s
}

// LimitReached reports whether any team has reached scoreLimit. A
// non-positive limit never ends the match.
func (s Standings) LimitReached(scoreLimit int) bool {
	if scoreLimit <= 0 {
		return false
	}
	for _, n := range s.Teams {
		if n >= scoreLimit {
			return true
		}
	}
	return false
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
