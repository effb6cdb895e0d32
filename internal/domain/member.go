package domain

// Departure records a member removed from a room.
// RoomDeleted is set when that removal left the room empty.
type Departure struct {
	Room        RoomID
	User        User
	RoomDeleted bool
}
