package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmptyEvent = errors.New("event name missing")

// Event is the envelope for every frame in both directions:
// {"event": "<name>", "data": <any>}.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data as the event payload. Raw payloads are kept verbatim
// and a nil data produces an event without payload.
func NewEvent(name string, data any) (Event, error) {
	ev := Event{Name: name}
	switch d := data.(type) {
	case nil:
	case json.RawMessage:
		ev.Data = d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s payload: %w", name, err)
		}
		ev.Data = b
	}
	return ev, nil
}

// Frame writes the envelope by hand so Data reaches the peer byte-for-byte;
// json.Marshal would compact and HTML-escape it.
func (e Event) Frame() (Frame, error) {
	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	f := make(Frame, 0, len(name)+len(e.Data)+20)
	f = append(f, `{"event":`...)
	f = append(f, name...)
	if len(e.Data) > 0 {
		f = append(f, `,"data":`...)
		f = append(f, e.Data...)
	}
	f = append(f, '}')
	return f, nil
}

func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	if ev.Name == "" {
		return Event{}, ErrEmptyEvent
	}
	return ev, nil
}
