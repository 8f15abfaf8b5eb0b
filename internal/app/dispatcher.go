package app

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type Dispatcher struct {
	Registry *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{Registry: reg}
}

// Broadcast sends text to every open connection except from.
// A failed send is logged and does not stop delivery to the others.
func (d *Dispatcher) Broadcast(from domain.ConnID, text string) core.PublishResult {
	res := core.PublishResult{}
	for _, e := range d.Registry.Snapshot() {
		if e.ID == from {
			continue
		}
		if e.Conn.State() != domain.StateOpen {
			res.Skipped++
			continue
		}
		if err := e.Conn.Send(text); err != nil {
			log.Warn().Err(err).Str("module", "app.dispatcher").Str("conn_id", string(e.ID)).Msg("broadcast send failed")
			res.Failed = append(res.Failed, e.ID)
			continue
		}
		res.SentTo++
	}
	log.Debug().
		Str("module", "app.dispatcher").
		Str("from", string(from)).
		Int("sent_to", res.SentTo).
		Int("skipped", res.Skipped).
		Int("failed", len(res.Failed)).
		Msg("broadcast result")
	return res
}
