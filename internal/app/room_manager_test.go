package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
)

func user(id, name string) domain.User {
	return domain.User{ID: domain.UserID(id), Username: name}
}

func TestRoomManager_CreateConflict(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewRoomManager(func() time.Time { return created })

	room, err := m.Create("abc", user("u1", "alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(room.Members) != 1 || room.Members[0] != user("u1", "alice") {
		t.Fatalf("members=%+v, want only the creator", room.Members)
	}
	if !room.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt=%v, want %v", room.CreatedAt, created)
	}

	if _, err := m.Create("abc", user("u9", "zed")); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("second Create err=%v, want %v", err, domain.ErrRoomExists)
	}
}

func TestRoomManager_JoinScenario(t *testing.T) {
	m := NewRoomManager(nil)
	if _, err := m.Join("abc", user("u2", "bob")); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("Join missing room err=%v, want %v", err, domain.ErrRoomNotFound)
	}

	if _, err := m.Create("abc", user("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	users, err := m.Join("abc", user("u2", "bob"))
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	want := []domain.User{user("u1", "alice"), user("u2", "bob")}
	if fmt.Sprint(users) != fmt.Sprint(want) {
		t.Fatalf("users=%v, want %v", users, want)
	}

	if _, err := m.Join("abc", user("u3", "bob")); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("duplicate name err=%v, want %v", err, domain.ErrUsernameTaken)
	}

	if err := m.Delete("abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get("abc"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("Get after Delete err=%v, want %v", err, domain.ErrRoomNotFound)
	}
	if err := m.Delete("abc"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("second Delete err=%v, want %v", err, domain.ErrRoomNotFound)
	}
}

func TestRoomManager_EnterKeepsHostFirst(t *testing.T) {
	m := NewRoomManager(nil)
	if _, ok := m.Enter("r", user("b", "bob")); ok {
		t.Fatalf("Enter into missing room succeeded")
	}
	m.Put("r", user("a", "alice"))

	host, ok := m.Enter("r", user("b", "bob"))
	if !ok || host != user("a", "alice") {
		t.Fatalf("host=%+v ok=%v, want alice", host, ok)
	}
	// Same name twice is accepted on this path.
	if _, ok := m.Enter("r", user("c", "bob")); !ok {
		t.Fatalf("Enter with duplicate name rejected")
	}
	// Overwriting the host keeps its position.
	host, _ = m.Enter("r", user("a", "alice2"))
	if host != user("a", "alice2") {
		t.Fatalf("host=%+v, want a/alice2", host)
	}
	room, _ := m.Get("r")
	if len(room.Members) != 3 || room.Members[0].ID != "a" {
		t.Fatalf("members=%+v", room.Members)
	}
}

func TestRoomManager_PutReplaces(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r", user("a", "alice"))
	m.Enter("r", user("b", "bob"))
	room := m.Put("r", user("c", "carol"))
	if len(room.Members) != 1 || room.Members[0].ID != "c" {
		t.Fatalf("members=%+v, want only c", room.Members)
	}
	if m.Count() != 1 {
		t.Fatalf("Count=%d, want 1", m.Count())
	}
}

func TestRoomManager_LeaveDeletesEmptyRoom(t *testing.T) {
	m := NewRoomManager(nil)
	if _, err := m.Create("r", user("u0", "n0")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 1; i < 5; i++ {
		if _, err := m.Join("r", user(fmt.Sprintf("u%d", i), fmt.Sprintf("n%d", i))); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}
	for _, i := range []int{3, 0, 4, 1, 2} {
		res := m.Leave("r", domain.UserID(fmt.Sprintf("u%d", i)))
		if !res.RoomExisted || !res.Removed {
			t.Fatalf("Leave u%d=%+v", i, res)
		}
		if res.User.Username != fmt.Sprintf("n%d", i) {
			t.Fatalf("username=%q, want n%d", res.User.Username, i)
		}
		if res.RoomDeleted != (i == 2) {
			t.Fatalf("RoomDeleted=%v after u%d", res.RoomDeleted, i)
		}
	}
	if got := m.List(); len(got) != 0 {
		t.Fatalf("List=%+v, want empty", got)
	}

	res := m.Leave("r", "u0")
	if res.RoomExisted || res.Removed {
		t.Fatalf("Leave on missing room=%+v, want no-op", res)
	}
}

func TestRoomManager_LeaveUnknownMember(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r", user("a", "alice"))
	res := m.Leave("r", "ghost")
	if !res.RoomExisted || res.Removed || res.User.Username != "" {
		t.Fatalf("Leave ghost=%+v", res)
	}
	if m.Count() != 1 {
		t.Fatalf("room removed by unknown member leave")
	}
}

func TestRoomManager_LeaveAll(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r1", user("a", "alice"))
	m.Put("r2", user("b", "bob"))
	m.Enter("r2", user("a", "alice"))
	m.Put("r3", user("c", "carol"))

	deps := m.LeaveAll("a")
	if len(deps) != 2 {
		t.Fatalf("departures=%+v, want 2", deps)
	}
	if deps[0].Room != "r1" || !deps[0].RoomDeleted || deps[0].User.Username != "alice" {
		t.Fatalf("r1 departure=%+v", deps[0])
	}
	if deps[1].Room != "r2" || deps[1].RoomDeleted {
		t.Fatalf("r2 departure=%+v", deps[1])
	}
	ids := []domain.RoomID{}
	for _, r := range m.List() {
		ids = append(ids, r.ID)
	}
	if fmt.Sprint(ids) != "[r2 r3]" {
		t.Fatalf("rooms=%v, want [r2 r3]", ids)
	}
	if deps := m.LeaveAll("a"); len(deps) != 0 {
		t.Fatalf("second LeaveAll=%+v, want none", deps)
	}
}

func TestRoomManager_DeleteIgnoresMembers(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r", user("a", "alice"))
	m.Enter("r", user("b", "bob"))
	if err := m.Delete("r"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Count() != 0 {
		t.Fatalf("Count=%d, want 0", m.Count())
	}
}

func TestRoomManager_SnapshotsAreCopies(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r", user("a", "alice"))
	room, _ := m.Get("r")
	room.Members[0].Username = "mallory"
	again, _ := m.Get("r")
	if again.Members[0].Username != "alice" {
		t.Fatalf("snapshot aliased directory state")
	}
}

func TestRoomManager_ConcurrentJoinLeave(t *testing.T) {
	m := NewRoomManager(nil)
	m.Put("r", user("host", "host"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.UserID(fmt.Sprintf("u%d", i))
			if _, err := m.Join("r", domain.User{ID: id, Username: string(id)}); err != nil {
				t.Errorf("Join: %v", err)
				return
			}
			m.Leave("r", id)
		}(i)
	}
	wg.Wait()

	room, err := m.Get("r")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(room.Members) != 1 || room.Members[0].ID != "host" {
		t.Fatalf("members=%+v, want only host", room.Members)
	}
}
