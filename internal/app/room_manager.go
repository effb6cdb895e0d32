package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomEntry keeps members in insertion order. Overwriting a member keeps its
// position, so the host stays first until it leaves.
type roomEntry struct {
	order     []domain.UserID
	names     map[domain.UserID]string
	createdAt time.Time
}

func newRoomEntry(creator domain.User, at time.Time) *roomEntry {
	e := &roomEntry{names: make(map[domain.UserID]string), createdAt: at}
	e.set(creator)
	return e
}

func (e *roomEntry) set(u domain.User) {
	if _, ok := e.names[u.ID]; !ok {
		e.order = append(e.order, u.ID)
	}
	e.names[u.ID] = u.Username
}

func (e *roomEntry) remove(id domain.UserID) (string, bool) {
	name, ok := e.names[id]
	if !ok {
		return "", false
	}
	delete(e.names, id)
	e.order = slices.DeleteFunc(e.order, func(x domain.UserID) bool { return x == id })
	return name, true
}

func (e *roomEntry) usernameTaken(name string) bool {
	for _, n := range e.names {
		if n == name {
			return true
		}
	}
	return false
}

func (e *roomEntry) members() []domain.User {
	out := make([]domain.User, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, domain.User{ID: id, Username: e.names[id]})
	}
	return out
}

func (e *roomEntry) snapshot(id domain.RoomID) domain.Room {
	return domain.Room{ID: id, Members: e.members(), CreatedAt: e.createdAt}
}

// LeaveResult describes the outcome of a single leave.
type LeaveResult struct {
	domain.Departure
	RoomExisted bool
	Removed     bool
}

// RoomManager is the room directory. One lock covers every room, so no
// caller observes a half-applied mutation.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
	order []domain.RoomID
	now   func() time.Time
}

func NewRoomManager(now func() time.Time) *RoomManager {
	if now == nil {
		now = time.Now
	}
	return &RoomManager{rooms: make(map[domain.RoomID]*roomEntry), now: now}
}

// Create registers a room whose sole member is the creator.
func (m *RoomManager) Create(id domain.RoomID, creator domain.User) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		return domain.Room{}, domain.ErrRoomExists
	}
	e := m.insertLocked(id, creator)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(creator.ID)).Msg("room created")
	return e.snapshot(id), nil
}

// Put creates the room or replaces an existing one with a fresh membership.
func (m *RoomManager) Put(id domain.RoomID, creator domain.User) domain.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, replaced := m.rooms[id]
	e := m.insertLocked(id, creator)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(creator.ID)).Bool("replaced", replaced).Msg("room put")
	return e.snapshot(id)
}

func (m *RoomManager) insertLocked(id domain.RoomID, creator domain.User) *roomEntry {
	if _, ok := m.rooms[id]; !ok {
		m.order = append(m.order, id)
	}
	e := newRoomEntry(creator, m.now())
	m.rooms[id] = e
	return e
}

// Join adds a member unless its username is already used in the room.
// It returns the room's members after the join.
func (m *RoomManager) Join(id domain.RoomID, member domain.User) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if e.usernameTaken(member.Username) {
		return nil, domain.ErrUsernameTaken
	}
	e.set(member)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(member.ID)).Msg("member joined")
	return e.members(), nil
}

// Enter adds or overwrites a member without a username check and reports the
// room's host as seen right after the insert.
func (m *RoomManager) Enter(id domain.RoomID, member domain.User) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[id]
	if !ok {
		return domain.User{}, false
	}
	e.set(member)
	host := domain.User{ID: e.order[0], Username: e.names[e.order[0]]}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(member.ID)).Msg("member entered")
	return host, true
}

// Leave removes a member. Absent rooms and members are no-ops.
func (m *RoomManager) Leave(id domain.RoomID, member domain.UserID) LeaveResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := LeaveResult{Departure: domain.Departure{Room: id, User: domain.User{ID: member}}}
	e, ok := m.rooms[id]
	if !ok {
		return res
	}
	res.RoomExisted = true
	res.User.Username, res.Removed = e.remove(member)
	if res.Removed && len(e.order) == 0 {
		m.deleteLocked(id)
		res.RoomDeleted = true
	}
	if res.Removed {
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("user", string(member)).Bool("room_deleted", res.RoomDeleted).Msg("member left")
	}
	return res
}

// LeaveAll removes a member from every room that holds it.
func (m *RoomManager) LeaveAll(member domain.UserID) []domain.Departure {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Departure
	for _, id := range slices.Clone(m.order) {
		e := m.rooms[id]
		name, ok := e.remove(member)
		if !ok {
			continue
		}
		d := domain.Departure{Room: id, User: domain.User{ID: member, Username: name}}
		if len(e.order) == 0 {
			m.deleteLocked(id)
			d.RoomDeleted = true
		}
		out = append(out, d)
	}
	if len(out) > 0 {
		log.Info().Str("module", "app.rooms").Str("user", string(member)).Int("rooms", len(out)).Msg("member left all rooms")
	}
	return out
}

func (m *RoomManager) Get(id domain.RoomID) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return e.snapshot(id), nil
}

func (m *RoomManager) List() []domain.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Room, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.rooms[id].snapshot(id))
	}
	return out
}

// Delete drops the room regardless of how many members it has.
func (m *RoomManager) Delete(id domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	m.deleteLocked(id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	return nil
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *RoomManager) deleteLocked(id domain.RoomID) {
	delete(m.rooms, id)
	m.order = slices.DeleteFunc(m.order, func(x domain.RoomID) bool { return x == id })
}
