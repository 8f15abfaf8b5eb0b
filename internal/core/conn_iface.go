package core

import "github.com/dkeye/Relay/internal/domain"

// Connection abstracts a live text-message transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	State() domain.ConnState
	// MarkOpen moves a Connecting endpoint to Open once it is registered.
	MarkOpen()
	// Send queues one text frame. It never blocks on the network.
	Send(text string) error
	// CloseWith sends a close frame and moves the endpoint to Closing.
	CloseWith(code int, reason string) error
	// Close releases the transport. Safe to call more than once.
	Close()
}
