package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type handlerFunc func(ctl *SignalWSController, from core.ConnID, data json.RawMessage)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(ctl.cfg.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump owns the connection's lifetime: when it returns the connection is
// gone and both protocols run their close handling.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		cancel()
		ctl.Orch.Disconnect(c.id)
		c.Close()
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		ctl.handleSignal(c, data)
	}
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	m := ctl.Orch.Metrics
	ev, err := core.DecodeEvent(data)
	if err != nil {
		m.Dropped(metrics.DropBadFrame)
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad frame")
		return
	}
	if !c.limiter.Allow() {
		m.Dropped(metrics.DropRateLimited)
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Str("event", ev.Name).Msg("rate limited")
		return
	}

	h, ok := roomHandlers[ev.Name]
	if !ok {
		h, ok = callHandlers[ev.Name]
	}
	if !ok {
		m.Dropped(metrics.DropUnknownEvent)
		log.Warn().Str("module", "signal").Str("event", ev.Name).Msg("unknown signal")
		return
	}
	m.Received(ev.Name)
	h(ctl, c.id, ev.Data)
}

// decode unmarshals an event payload; a bad payload drops the event.
func decode(event string, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		log.Warn().Str("module", "signal").Str("event", event).Msg("missing payload")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("event", event).Msg("bad payload")
		return false
	}
	return true
}
