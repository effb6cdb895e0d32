package signal

import (
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/app/orch"
	"github.com/dkeye/Rendezvous/internal/core"
)

var callHandlers = map[string]handlerFunc{
	orch.EventRequestID:  (*SignalWSController).requestID,
	orch.EventCallUser:   (*SignalWSController).callUser,
	orch.EventAnswerCall: (*SignalWSController).answerCall,
	orch.EventMessage:    (*SignalWSController).message,
	orch.EventEndCall:    (*SignalWSController).endCall,
}

func (ctl *SignalWSController) requestID(from core.ConnID, _ json.RawMessage) {
	ctl.Orch.RequestID(from)
}

func (ctl *SignalWSController) callUser(from core.ConnID, data json.RawMessage) {
	var p struct {
		UserToCall string          `json:"userToCall"`
		SignalData json.RawMessage `json:"signalData"`
		From       json.RawMessage `json:"from"`
	}
	if !decode(orch.EventCallUser, data, &p) || p.UserToCall == "" {
		return
	}
	ctl.Orch.CallUser(from, core.ConnID(p.UserToCall), p.SignalData, p.From)
}

func (ctl *SignalWSController) answerCall(from core.ConnID, data json.RawMessage) {
	var p struct {
		To     string          `json:"to"`
		Signal json.RawMessage `json:"signal"`
	}
	if !decode(orch.EventAnswerCall, data, &p) || p.To == "" {
		return
	}
	ctl.Orch.AnswerCall(from, core.ConnID(p.To), p.Signal)
}

func (ctl *SignalWSController) message(from core.ConnID, data json.RawMessage) {
	ctl.Orch.Message(from, data)
}

func (ctl *SignalWSController) endCall(from core.ConnID, _ json.RawMessage) {
	ctl.Orch.EndCall(from)
}
