package orch

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect registers a freshly upgraded connection and opens it.
// Nobody is told about the newcomer.
func (o *Orchestrator) Connect(conn core.Connection) domain.ConnID {
	id := o.Registry.Register(conn)
	conn.MarkOpen()
	log.Info().Str("module", "orch").Str("conn_id", string(id)).Msg("user connected")
	return id
}

// HandleMessage echoes text to its sender and relays it to everyone else.
func (o *Orchestrator) HandleMessage(id domain.ConnID, text string) {
	conn, ok := o.Registry.Lookup(id)
	if !ok || conn.State() != domain.StateOpen {
		log.Warn().Str("module", "orch").Str("conn_id", string(id)).Msg("message from connection that is not open, dropped")
		return
	}
	log.Info().Str("module", "orch").Str("conn_id", string(id)).Str("text", text).Msg("message received")

	msg := domain.Message{From: id, Text: text}
	if err := conn.Send(msg.Echo()); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn_id", string(id)).Msg("echo send failed")
	}
	o.logUndelivered(id, o.Dispatcher.Broadcast(id, msg.Relayed()))
}

// Disconnect tears id down: close frame if still open, departure notice, removal.
// Unknown ids are ignored so a departure is announced once.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	conn, ok := o.Registry.Lookup(id)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn_id", string(id)).Msg("disconnect for unknown connection")
		return
	}
	if conn.State() == domain.StateOpen {
		if err := conn.CloseWith(domain.CloseNormalCode, domain.CloseNormalReason); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("conn_id", string(id)).Msg("close frame failed")
		}
	}

	o.logUndelivered(id, o.Dispatcher.Broadcast(id, domain.DepartureNotice(id)))
	o.Registry.Deregister(id)
	log.Info().Str("module", "orch").Str("conn_id", string(id)).Msg("user disconnected")
}

func (o *Orchestrator) logUndelivered(from domain.ConnID, res core.PublishResult) {
	if len(res.Failed) == 0 {
		return
	}
	ids := make([]string, len(res.Failed))
	for i, id := range res.Failed {
		ids[i] = string(id)
	}
	log.Warn().
		Str("module", "orch").
		Str("conn_id", string(from)).
		Int("sent_to", res.SentTo).
		Strs("undelivered", ids).
		Msg("broadcast partly failed")
}
