package domain

import "time"

type RoomID string

// Room is a read-only snapshot of a room's membership.
// Members are in insertion order; the first one is the host.
type Room struct {
	ID        RoomID
	Members   []User
	CreatedAt time.Time
}
