package orch

import (
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room protocol event names.
const (
	EventCreateRoom     = "create-room"
	EventJoinRoom       = "join-room"
	EventOffer          = "offer"
	EventAnswer         = "answer"
	EventICECandidate   = "ice-candidate"
	EventLeaveRoom      = "leave-room"
	EventSendMessage    = "send-message"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventReceiveMessage = "receive-message"
)

type peerPayload struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username,omitempty"`
}

type chatPayload struct {
	Message   json.RawMessage `json:"message,omitempty"`
	Sender    json.RawMessage `json:"sender,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// CreateRoom registers the room with the caller as its only member, replacing
// any room with the same id, and subscribes the caller to its broadcasts.
func (o *Orchestrator) CreateRoom(from core.ConnID, room domain.RoomID, username string) {
	o.Rooms.Put(room, domain.User{ID: from.UserID(), Username: username})
	o.Groups.Subscribe(room, from)
	log.Info().Str("module", "orch.room").Str("conn", string(from)).Str("room", string(room)).Str("username", username).Msg("room created")
}

// JoinRoom adds the caller to an existing room. The caller learns the host;
// everyone else learns the caller. Unknown rooms are ignored.
func (o *Orchestrator) JoinRoom(from core.ConnID, room domain.RoomID, username string) {
	host, ok := o.Rooms.Enter(room, domain.User{ID: from.UserID(), Username: username})
	if !ok {
		log.Debug().Str("module", "orch.room").Str("conn", string(from)).Str("room", string(room)).Msg("join: no such room")
		return
	}
	o.Groups.Subscribe(room, from)
	log.Info().Str("module", "orch.room").Str("conn", string(from)).Str("room", string(room)).Str("username", username).Msg("joined room")

	if ev, ok := o.event(EventUserJoined, peerPayload{UserID: host.ID, Username: host.Username}); ok {
		o.sendTo(from, ev)
	}
	if ev, ok := o.event(EventUserJoined, peerPayload{UserID: from.UserID(), Username: username}); ok {
		o.toGroup(room, from, ev)
	}
}

// Forward relays an offer, answer or candidate payload untouched to the
// other subscribers of the room.
func (o *Orchestrator) Forward(from core.ConnID, event string, room domain.RoomID, payload json.RawMessage) {
	switch event {
	case EventOffer, EventAnswer, EventICECandidate:
	default:
		log.Warn().Str("module", "orch.room").Str("event", event).Msg("forward: not a signaling event")
		return
	}
	log.Debug().Str("module", "orch.room").Str("conn", string(from)).Str("room", string(room)).Str("event", event).Msg("relaying")
	if ev, ok := o.event(event, payload); ok {
		o.toGroup(room, from, ev)
	}
}

// LeaveRoom removes the caller, tells the remaining subscribers and stops the
// caller's subscription. Unknown rooms are ignored.
func (o *Orchestrator) LeaveRoom(from core.ConnID, room domain.RoomID) {
	res := o.Rooms.Leave(room, from.UserID())
	if !res.RoomExisted {
		return
	}
	if ev, ok := o.event(EventUserLeft, peerPayload{UserID: from.UserID(), Username: res.User.Username}); ok {
		o.toGroup(room, from, ev)
	}
	o.Groups.Unsubscribe(room, from)
	log.Info().Str("module", "orch.room").Str("conn", string(from)).Str("room", string(room)).Bool("room_deleted", res.RoomDeleted).Msg("left room")
}

// SendMessage relays a chat line stamped with the server's clock.
func (o *Orchestrator) SendMessage(from core.ConnID, room domain.RoomID, message, sender json.RawMessage) {
	p := chatPayload{Message: message, Sender: sender, Timestamp: domain.Timestamp(o.now())}
	if ev, ok := o.event(EventReceiveMessage, p); ok {
		o.toGroup(room, from, ev)
	}
}

// DisconnectRooms removes a closed connection from every room holding it.
func (o *Orchestrator) DisconnectRooms(from core.ConnID) {
	o.Groups.UnsubscribeAll(from)
	for _, d := range o.Rooms.LeaveAll(from.UserID()) {
		if ev, ok := o.event(EventUserLeft, peerPayload{UserID: d.User.ID, Username: d.User.Username}); ok {
			o.toGroup(d.Room, from, ev)
		}
	}
}
