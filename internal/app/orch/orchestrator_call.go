package orch

import (
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/rs/zerolog/log"
)

// Call protocol event names. The call floor is global: there are no rooms.
const (
	EventRequestID    = "requestId"
	EventIDAssigned   = "idAssigned"
	EventCallUser     = "callUser"
	EventAnswerCall   = "answerCall"
	EventCallAccepted = "callAccepted"
	EventMessage      = "message"
	EventEndCall      = "endCall"
	EventCallEnded    = "callEnded"
	EventUserLeftCall = "userLeft"
)

type incomingCall struct {
	Signal json.RawMessage `json:"signal,omitempty"`
	From   json.RawMessage `json:"from,omitempty"`
}

// RequestID tells the caller its own connection id.
func (o *Orchestrator) RequestID(from core.ConnID) {
	if ev, ok := o.event(EventIDAssigned, string(from)); ok {
		o.sendTo(from, ev)
	}
}

// CallUser rings a single connection. A vanished target is ignored.
func (o *Orchestrator) CallUser(from, target core.ConnID, signal, caller json.RawMessage) {
	ev, ok := o.event(EventCallUser, incomingCall{Signal: signal, From: caller})
	if !ok {
		return
	}
	if o.sendTo(target, ev) {
		log.Debug().Str("module", "orch.call").Str("conn", string(from)).Str("to", string(target)).Msg("call relayed")
	}
}

// AnswerCall hands the callee's signal back to the caller.
func (o *Orchestrator) AnswerCall(from, to core.ConnID, signal json.RawMessage) {
	if ev, ok := o.event(EventCallAccepted, signal); ok {
		if o.sendTo(to, ev) {
			log.Debug().Str("module", "orch.call").Str("conn", string(from)).Str("to", string(to)).Msg("call accepted")
		}
	}
}

// Message is global chat: everyone, sender included, gets the payload.
func (o *Orchestrator) Message(from core.ConnID, payload json.RawMessage) {
	if ev, ok := o.event(EventMessage, payload); ok {
		o.toAll(ev)
	}
}

func (o *Orchestrator) EndCall(from core.ConnID) {
	if ev, ok := o.event(EventCallEnded, nil); ok {
		o.toOthers(from, ev)
	}
}

// DisconnectCall announces a closed connection to everyone else.
func (o *Orchestrator) DisconnectCall(from core.ConnID) {
	if ev, ok := o.event(EventUserLeftCall, nil); ok {
		o.toOthers(from, ev)
	}
}
