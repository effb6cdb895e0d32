// Package domain contains entity without logic, just meta-data
package domain

import "errors"

var ErrUsernameEmpty = errors.New("username empty")

// UserID identifies a room member. On the live relay path it is the
// transport's connection id; on the REST path it is caller supplied.
type UserID string

type User struct {
	ID       UserID `json:"userId"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, username string) (User, error) {
	if username == "" {
		return User{}, ErrUsernameEmpty
	}
	return User{ID: id, Username: username}, nil
}
