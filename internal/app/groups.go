package app

import (
	"sync"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
)

// Groups holds the broadcast subscriptions per room. It is independent of the
// room directory: a connection receives room broadcasts only while subscribed.
type Groups struct {
	mu     sync.RWMutex
	groups map[domain.RoomID]map[core.ConnID]struct{}
}

func NewGroups() *Groups {
	return &Groups{groups: make(map[domain.RoomID]map[core.ConnID]struct{})}
}

func (g *Groups) Subscribe(room domain.RoomID, conn core.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.groups[room]
	if !ok {
		set = make(map[core.ConnID]struct{})
		g.groups[room] = set
	}
	set[conn] = struct{}{}
}

func (g *Groups) Unsubscribe(room domain.RoomID, conn core.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unsubscribeLocked(room, conn)
}

// UnsubscribeAll drops conn from every group and returns the rooms it left.
func (g *Groups) UnsubscribeAll(conn core.ConnID) []domain.RoomID {
	g.mu.Lock()
	defer g.mu.Unlock()
	var left []domain.RoomID
	for room, set := range g.groups {
		if _, ok := set[conn]; ok {
			left = append(left, room)
		}
	}
	for _, room := range left {
		g.unsubscribeLocked(room, conn)
	}
	return left
}

func (g *Groups) unsubscribeLocked(room domain.RoomID, conn core.ConnID) {
	set, ok := g.groups[room]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(g.groups, room)
	}
}

// Members returns a snapshot of the room's subscribers, without except.
func (g *Groups) Members(room domain.RoomID, except core.ConnID) []core.ConnID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.groups[room]
	out := make([]core.ConnID, 0, len(set))
	for id := range set {
		if id != except {
			out = append(out, id)
		}
	}
	return out
}

func (g *Groups) Subscribed(room domain.RoomID, conn core.ConnID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.groups[room][conn]
	return ok
}
