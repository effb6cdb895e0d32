package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
		msg  string
	}{
		{ErrMissingFields, ErrValidation, "roomId and username are required"},
		{ErrRoomNotFound, ErrNotFound, "Room not found"},
		{ErrRoomExists, ErrConflict, "Room already exists"},
		{ErrUsernameTaken, ErrConflict, "Username already taken in this room"},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%v: not of kind %v", tc.err, tc.kind)
		}
		if got := Message(tc.err); got != tc.msg {
			t.Fatalf("Message(%v)=%q, want %q", tc.err, got, tc.msg)
		}
	}
}

func TestMessage_PassesThroughUnknownErrors(t *testing.T) {
	err := errors.New("boom")
	if got := Message(err); got != "boom" {
		t.Fatalf("Message=%q, want %q", got, "boom")
	}
	wrapped := fmt.Errorf("create: %w", ErrRoomExists)
	if got := Message(wrapped); got != wrapped.Error() {
		t.Fatalf("Message=%q, want %q", got, wrapped.Error())
	}
}

func TestNewUser(t *testing.T) {
	if _, err := NewUser("u1", ""); !errors.Is(err, ErrUsernameEmpty) {
		t.Fatalf("err=%v, want %v", err, ErrUsernameEmpty)
	}
	u, err := NewUser("u1", "alice")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.ID != "u1" || u.Username != "alice" {
		t.Fatalf("user=%+v", u)
	}
}
