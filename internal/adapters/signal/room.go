package signal

import (
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/app/orch"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

var roomHandlers = map[string]handlerFunc{
	orch.EventCreateRoom:   (*SignalWSController).createRoom,
	orch.EventJoinRoom:     (*SignalWSController).joinRoom,
	orch.EventOffer:        forward(orch.EventOffer),
	orch.EventAnswer:       forward(orch.EventAnswer),
	orch.EventICECandidate: forward(orch.EventICECandidate),
	orch.EventLeaveRoom:    (*SignalWSController).leaveRoom,
	orch.EventSendMessage:  (*SignalWSController).sendMessage,
}

type roomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

func (p roomPayload) ok(event string) bool { return hasRoom(event, p.RoomID) }

func hasRoom(event, roomID string) bool {
	if roomID == "" {
		log.Warn().Str("module", "signal").Str("event", event).Msg("missing roomId")
		return false
	}
	return true
}

func (ctl *SignalWSController) createRoom(from core.ConnID, data json.RawMessage) {
	var p roomPayload
	if !decode(orch.EventCreateRoom, data, &p) || !p.ok(orch.EventCreateRoom) {
		return
	}
	ctl.Orch.CreateRoom(from, domain.RoomID(p.RoomID), p.Username)
}

func (ctl *SignalWSController) joinRoom(from core.ConnID, data json.RawMessage) {
	var p roomPayload
	if !decode(orch.EventJoinRoom, data, &p) || !p.ok(orch.EventJoinRoom) {
		return
	}
	ctl.Orch.JoinRoom(from, domain.RoomID(p.RoomID), p.Username)
}

// forward relays the whole payload untouched. Only roomId is read; the other
// keys are opaque and may hold any JSON type.
func forward(event string) handlerFunc {
	return func(ctl *SignalWSController, from core.ConnID, data json.RawMessage) {
		var p struct {
			RoomID string `json:"roomId"`
		}
		if !decode(event, data, &p) || !hasRoom(event, p.RoomID) {
			return
		}
		ctl.Orch.Forward(from, event, domain.RoomID(p.RoomID), data)
	}
}

// leaveRoom takes the room id as a bare JSON string.
func (ctl *SignalWSController) leaveRoom(from core.ConnID, data json.RawMessage) {
	var roomID string
	if !decode(orch.EventLeaveRoom, data, &roomID) {
		return
	}
	if roomID == "" {
		return
	}
	ctl.Orch.LeaveRoom(from, domain.RoomID(roomID))
}

func (ctl *SignalWSController) sendMessage(from core.ConnID, data json.RawMessage) {
	var p struct {
		RoomID  string          `json:"roomId"`
		Message json.RawMessage `json:"message"`
		Sender  json.RawMessage `json:"sender"`
	}
	if !decode(orch.EventSendMessage, data, &p) {
		return
	}
	if p.RoomID == "" {
		return
	}
	ctl.Orch.SendMessage(from, domain.RoomID(p.RoomID), p.Message, p.Sender)
}
