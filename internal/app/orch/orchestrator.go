package orch

import (
	"context"
	"time"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/dkeye/Rendezvous/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the signaling relay. Its handlers run on the sender's read
// goroutine; every directory and group operation they use is atomic on its own.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Groups   *app.Groups
	Policy   app.Policy
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func New(rooms *app.RoomManager, policy app.Policy, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    rooms,
		Groups:   app.NewGroups(),
		Policy:   policy,
		Metrics:  m,
		Now:      time.Now,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Connect registers a live connection. cancel must stop its pumps.
func (o *Orchestrator) Connect(conn core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Bind(conn, cancel)
	o.Metrics.ConnOpened()
}

// Disconnect runs the close handling of both protocols. Calling it twice is safe.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	if !o.Registry.Unbind(id) {
		return
	}
	o.Metrics.ConnClosed()
	o.DisconnectRooms(id)
	o.DisconnectCall(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnected")
}

// Shutdown cancels every live connection.
func (o *Orchestrator) Shutdown() {
	o.Registry.CancelAll()
}

func (o *Orchestrator) sendTo(to core.ConnID, ev core.Event) bool {
	conn, ok := o.Registry.Get(to)
	if !ok {
		o.Metrics.Dropped(metrics.DropNoTarget)
		log.Debug().Str("module", "orch").Str("to", string(to)).Str("event", ev.Name).Msg("target gone")
		return false
	}
	o.deliver([]core.SignalConnection{conn}, ev)
	return true
}

// toGroup fans ev out to the room's subscribers, except the sender.
func (o *Orchestrator) toGroup(room domain.RoomID, except core.ConnID, ev core.Event) {
	ids := o.Groups.Members(room, except)
	conns := make([]core.SignalConnection, 0, len(ids))
	for _, id := range ids {
		if c, ok := o.Registry.Get(id); ok {
			conns = append(conns, c)
		}
	}
	o.deliver(conns, ev)
}

func (o *Orchestrator) toOthers(except core.ConnID, ev core.Event) {
	o.deliver(o.Registry.Others(except), ev)
}

func (o *Orchestrator) toAll(ev core.Event) {
	o.deliver(o.Registry.All(), ev)
}

func (o *Orchestrator) deliver(conns []core.SignalConnection, ev core.Event) core.PublishResult {
	res := core.PublishResult{}
	if len(conns) == 0 {
		return res
	}
	frame, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", ev.Name).Msg("encode frame")
		return res
	}
	for _, c := range conns {
		if err := c.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, c.ID())
			continue
		}
		res.SentTo++
	}
	o.Metrics.Sent(ev.Name, res.SentTo)
	o.onDropped(res, ev.Name)
	log.Debug().Str("module", "orch").Str("event", ev.Name).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("fan-out")
	return res
}

func (o *Orchestrator) onDropped(res core.PublishResult, event string) {
	for _, id := range res.Dropped {
		o.Metrics.Dropped(metrics.DropBackpressure)
		if o.Policy == nil {
			continue
		}
		switch o.Policy.OnBackPressure(id, event) {
		case app.KickConn:
			log.Warn().Str("module", "orch").Str("conn", string(id)).Str("event", event).Msg("slow consumer kicked")
			o.Registry.Cancel(id)
		case app.DropFrame, app.NoAction:
			log.Warn().Str("module", "orch").Str("conn", string(id)).Str("event", event).Msg("frame dropped")
		}
	}
}

func (o *Orchestrator) event(name string, data any) (core.Event, bool) {
	ev, err := core.NewEvent(name, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", name).Msg("build event")
		return core.Event{}, false
	}
	return ev, true
}
