package match

import (
	"sync"
	"time"

	"github.com/dustline/arena/pkg/core"
)

// Context holds the match the client is currently playing
type Context struct {
	mu    sync.RWMutex
	Match *core.MatchRecord
}

// NewContext creates a new Context with no match joined
func NewContext() *Context {
	return &Context{
		Match: &core.MatchRecord{Name: "No match joined", Status: core.MatchWaiting},
	}
}

// GetMatch returns the current match
func (mc *Context) GetMatch() *core.MatchRecord {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Match
}

// SetMatch replaces the current match
func (mc *Context) SetMatch(m *core.MatchRecord) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Match = m
}

// SetStatus updates the status of the current match in place
func (mc *Context) SetStatus(status string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	m := *mc.Match
	m.Status = status
	mc.Match = &m
}

// Clock is the position within the repeating round of a match.
type Clock struct {
	Round     int // zero-based
	Elapsed   time.Duration
	Remaining time.Duration
}

// RoundClock derives the round timer from the match creation time. Rounds
// repeat every RoundDurationMs; a match without a duration has a single
// endless round. A clock read before CreatedAt reports zero elapsed.
func RoundClock(m core.MatchRecord, now time.Time) Clock {
	total := now.Sub(m.CreatedAt)
	if total < 0 {
		total = 0
	}
	if m.RoundDurationMs <= 0 {
		return Clock{Elapsed: total}
	}

	round := time.Duration(m.RoundDurationMs) * time.Millisecond
	elapsed := total % round
	return Clock{
		Round:     int(total / round),
		Elapsed:   elapsed,
		Remaining: round - elapsed,
	}
}
