// Package domain holds connection identity and state, and the chat text put on the wire.
package domain

import "github.com/google/uuid"

type ConnID string

// NewConnID returns a fresh random identifier for a connection.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Close frame sent to a connection the server tears down while it is still open.
const (
	CloseNormalCode   = 1000
	CloseNormalReason = "Normal closure"
)
