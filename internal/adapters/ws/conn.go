package ws

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var ErrConnClosed = errors.New("connection closed")

var _ core.Connection = (*Conn)(nil)

// Options are the per-connection transport limits.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func OptionsFrom(cfg *config.Config) Options {
	return Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait(),
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}
}

// Conn is a WebSocket endpoint. Outbound text goes through an outbox
// drained by writePump; close frames bypass it via WriteControl.
type Conn struct {
	ws    *websocket.Conn
	opts  Options
	out   *outbox
	state atomic.Int32
}

func NewConn(ws *websocket.Conn, opts Options) *Conn {
	c := &Conn{
		ws:   ws,
		opts: opts,
		out:  newOutbox(opts.SendBuffer),
	}
	c.state.Store(int32(domain.StateConnecting))
	ws.SetCloseHandler(c.onPeerClose)
	return c
}

func (c *Conn) State() domain.ConnState {
	return domain.ConnState(c.state.Load())
}

func (c *Conn) MarkOpen() {
	c.state.CompareAndSwap(int32(domain.StateConnecting), int32(domain.StateOpen))
}

// Send queues text for writePump. It never drops: a peer that stops reading
// is torn down by the write deadline instead.
func (c *Conn) Send(text string) error {
	if !c.out.push([]byte(text)) {
		return ErrConnClosed
	}
	return nil
}

func (c *Conn) CloseWith(code int, reason string) error {
	if !c.state.CompareAndSwap(int32(domain.StateOpen), int32(domain.StateClosing)) {
		return ErrConnClosed
	}
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait)); err != nil {
		return errors.Wrap(err, "failed to write close frame")
	}
	return nil
}

func (c *Conn) Close() {
	if !c.out.close() {
		return
	}
	c.state.Store(int32(domain.StateClosed))
	_ = c.ws.Close()
}

// onPeerClose answers a close frame from the client, like gorilla's default
// handler, and records that the client started the close handshake.
func (c *Conn) onPeerClose(code int, _ string) error {
	c.state.CompareAndSwap(int32(domain.StateOpen), int32(domain.StateClosing))
	msg := websocket.FormatCloseMessage(code, "")
	err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return errors.Wrap(err, "failed to answer close frame")
	}
	return nil
}

// interruptRead unblocks a pending ReadMessage.
func (c *Conn) interruptRead() {
	_ = c.ws.SetReadDeadline(time.Now())
}

// extendReadDeadline moves the read deadline PongWait ahead, unless ctx has
// ended, in which case the read stays interrupted.
func (c *Conn) extendReadDeadline(ctx context.Context) error {
	if err := c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait)); err != nil {
		return err
	}
	// ctx may have ended after interruptRead ran; undo our extension
	if ctx.Err() != nil {
		c.interruptRead()
	}
	return nil
}
