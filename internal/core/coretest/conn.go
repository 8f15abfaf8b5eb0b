// Package coretest provides an in-memory core.Connection for tests.
package coretest

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/pkg/errors"
)

var _ core.Connection = (*Conn)(nil)

var ErrSendFailed = errors.New("coretest: send failed")

// CloseFrame records a CloseWith call.
type CloseFrame struct {
	Code   int
	Reason string
}

type Conn struct {
	mu       sync.Mutex
	state    domain.ConnState
	sent     []string
	closes   []CloseFrame
	failSend bool
	closed   int
}

func NewConn() *Conn { return &Conn{state: domain.StateConnecting} }

// NewOpenConn returns a connection that is already Open.
func NewOpenConn() *Conn { return &Conn{state: domain.StateOpen} }

func (c *Conn) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) SetState(s domain.ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Conn) MarkOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.StateConnecting {
		c.state = domain.StateOpen
	}
}

// FailSends makes every later Send return ErrSendFailed.
func (c *Conn) FailSends() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSend = true
}

func (c *Conn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return ErrSendFailed
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *Conn) CloseWith(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes = append(c.closes, CloseFrame{Code: code, Reason: reason})
	if c.state == domain.StateOpen {
		c.state = domain.StateClosing
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = domain.StateClosed
	c.closed++
}

// Sent returns a copy of every text frame sent so far.
func (c *Conn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *Conn) CloseFrames() []CloseFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CloseFrame(nil), c.closes...)
}
