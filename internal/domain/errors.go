package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Adapters map them to transport status codes with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrMissingFields = fmt.Errorf("%w: roomId and username are required", ErrValidation)
	ErrRoomNotFound  = fmt.Errorf("%w: Room not found", ErrNotFound)
	ErrRoomExists    = fmt.Errorf("%w: Room already exists", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("%w: Username already taken in this room", ErrConflict)
)

// Message strips the kind prefix so clients see only the detail.
func Message(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict} {
		if !errors.Is(err, kind) {
			continue
		}
		if rest, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
