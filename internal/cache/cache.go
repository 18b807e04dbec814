package cache

import (
	"sort"
	"sync"

	"github.com/dustline/arena/pkg/core"
)

// StaleAfterMs is how long a peer may stay silent before it is dropped from
// targeting.
const StaleAfterMs = 5000

// Peer is the last known state of a remote player.
type Peer struct {
	Presence core.PresenceSnapshot
	SeenAt   int64 // local ms epoch of the last update
}

// Roster caches remote players as they announce themselves so the tick loop
// never waits on the network to know who it can hit.
type Roster struct {
	m     sync.RWMutex
	self  string
	peers map[string]Peer
}

func NewRoster(selfID string) *Roster {
	return &Roster{
		self:  selfID,
		peers: make(map[string]Peer),
	}
}

func (r *Roster) Reset() {
	r.m.Lock()
	defer r.m.Unlock()
	r.peers = make(map[string]Peer)
}

// Upsert stores a presence snapshot. Snapshots from the local player are
// ignored.
func (r *Roster) Upsert(p core.PresenceSnapshot, seenAt int64) {
	if p.PlayerID == "" || p.PlayerID == r.self {
		return
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.peers[p.PlayerID] = Peer{Presence: p, SeenAt: seenAt}
}

// Join registers a peer before its first presence arrives.
func (r *Roster) Join(id, name string, character core.CharacterKind, seenAt int64) {
	if id == "" || id == r.self {
		return
	}
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.peers[id]
	if !ok {
		p.Presence = core.PresenceSnapshot{PlayerID: id, Alive: true}
	}
	p.Presence.Name = name
	p.Presence.Character = character
	p.SeenAt = seenAt
	r.peers[id] = p
}

// Respawned moves a known peer to its new spawn and marks it alive.
func (r *Roster) Respawned(ev core.RespawnEvent, seenAt int64) {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.peers[ev.PlayerID]
	if !ok {
		return
	}
	p.Presence.Position = ev.Position
	p.Presence.Alive = true
	p.SeenAt = seenAt
	r.peers[ev.PlayerID] = p
}

// Killed marks a known peer dead until its next presence or respawn.
func (r *Roster) Killed(id string) {
	r.m.Lock()
	defer r.m.Unlock()
	if p, ok := r.peers[id]; ok {
		p.Presence.Alive = false
		r.peers[id] = p
	}
}

func (r *Roster) Remove(id string) {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.peers, id)
}

func (r *Roster) Get(id string) (Peer, bool) {
	r.m.RLock()
	defer r.m.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// Name returns the display name of id, or id itself when unknown.
func (r *Roster) Name(id string) string {
	if p, ok := r.Get(id); ok && p.Presence.Name != "" {
		return p.Presence.Name
	}
	return id
}

func (r *Roster) Len() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return len(r.peers)
}

// Prune drops peers not heard from within StaleAfterMs of now and returns
// how many were removed.
func (r *Roster) Prune(now int64) int {
	r.m.Lock()
	defer r.m.Unlock()
	n := 0
	for id, p := range r.peers {
		if now-p.SeenAt > StaleAfterMs {
			delete(r.peers, id)
			n++
		}
	}
	return n
}

// Alive returns live peers ordered by player ID.
func (r *Roster) Alive() []Peer {
	r.m.RLock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		if p.Presence.Alive {
			out = append(out, p)
		}
	}
	r.m.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Presence.PlayerID < out[j].Presence.PlayerID
	})
	return out
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
