package core

import "github.com/dkeye/Rendezvous/internal/domain"

// Frame is one encoded outbound message.
type Frame []byte

// ConnID is the transport-assigned identity of a live connection.
type ConnID string

// UserID views the connection id as a room member id.
func (id ConnID) UserID() domain.UserID { return domain.UserID(id) }

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}
