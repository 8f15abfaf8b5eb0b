package app

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Entry is one registered connection as seen by a snapshot.
type Entry struct {
	ID   domain.ConnID
	Conn core.Connection
}

// Registry maps connection IDs to live connection handles.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.Connection
	newID func() domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]core.Connection),
		newID: domain.NewConnID,
	}
}

// Register stores conn under a freshly generated ID and returns it.
func (r *Registry) Register(conn core.Connection) domain.ConnID {
	id := r.newID()
	r.mu.Lock()
	r.conns[id] = conn
	n := len(r.conns)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("conn_id", string(id)).Int("total", n).Msg("registered connection")
	return id
}

// Deregister removes id. Removing an unknown id is a no-op.
func (r *Registry) Deregister(id domain.ConnID) {
	r.mu.Lock()
	_, ok := r.conns[id]
	delete(r.conns, id)
	n := len(r.conns)
	r.mu.Unlock()
	if ok {
		log.Info().Str("module", "app.registry").Str("conn_id", string(id)).Int("total", n).Msg("deregistered connection")
	}
}

func (r *Registry) Lookup(id domain.ConnID) (core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot copies the current entries so callers can do I/O without the lock.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.conns))
	for id, c := range r.conns {
		out = append(out, Entry{ID: id, Conn: c})
	}
	return out
}
