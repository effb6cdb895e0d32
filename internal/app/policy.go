package app

import (
	"fmt"

	"github.com/dkeye/Rendezvous/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConn
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(conn core.ConnID, event string) BackpressureAction
}

// DropPolicy discards the frame and keeps the connection.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.ConnID, string) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects slow consumers.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.ConnID, string) BackpressureAction {
	return KickConn
}

func PolicyFor(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
