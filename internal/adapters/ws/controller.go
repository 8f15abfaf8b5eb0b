// Package ws runs chat connections over gorilla/websocket.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	Orch *orch.Orchestrator

	opts     Options
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

func NewController(o *orch.Orchestrator, opts Options) *Controller {
	return &Controller{
		Orch: o,
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConn upgrades the request and starts the connection's pumps.
// The connection lives until the peer leaves, the transport fails or ctx ends.
func (ctl *Controller) HandleConn(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ws, err := ctl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}

	conn := NewConn(ws, ctl.opts)
	id := ctl.Orch.Connect(conn)
	log.Info().Str("module", "adapters.ws").Str("conn_id", string(id)).Str("remote", r.RemoteAddr).Msg("new WS connection")

	connCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-connCtx.Done()
		conn.interruptRead()
	}()

	ctl.wg.Add(2)
	go func() {
		defer ctl.wg.Done()
		ctl.writePump(connCtx, id, conn)
	}()
	go func() {
		defer ctl.wg.Done()
		ctl.readPump(connCtx, id, conn)
		ctl.Orch.Disconnect(id)
		cancel()
		conn.Close()
	}()
}

// Wait blocks until every connection has been torn down or ctx ends.
func (ctl *Controller) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ctl.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
