package ws

import (
	"context"
	"net"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, id domain.ConnID, c *Conn) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-c.out.ready:
			if !ok {
				return
			}
			for _, data := range c.out.drain() {
				if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
					log.Error().Err(err).Str("module", "adapters.ws").Str("conn_id", string(id)).Msg("writePump set deadline")
					c.interruptRead()
					return
				}
				// a peer that stops reading fails here once WriteWait passes
				if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Warn().Err(err).Str("module", "adapters.ws").Str("conn_id", string(id)).Int("pending", c.out.len()).Msg("writePump write error")
					c.interruptRead()
					return
				}
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.opts.WriteWait)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("conn_id", string(id)).Msg("writePump ping error")
				c.interruptRead()
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *Conn) {
	c.ws.SetReadLimit(c.opts.ReadLimit)
	_ = c.extendReadDeadline(ctx)
	c.ws.SetPongHandler(func(string) error {
		return c.extendReadDeadline(ctx)
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			logReadError(id, err)
			return
		}
		ctl.Orch.HandleMessage(id, string(data))
	}
}

func logReadError(id domain.ConnID, err error) {
	var ev *zerolog.Event
	var ne net.Error
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure):
		ev = log.Info()
	case errors.As(err, &ne) && ne.Timeout():
		// read deadline hit: missed pongs or shutdown
		ev = log.Info()
	default:
		ev = log.Warn()
	}
	ev.Err(err).Str("module", "adapters.ws").Str("conn_id", string(id)).Msg("readPump closing")
}
