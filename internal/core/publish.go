package core

import "github.com/dkeye/Relay/internal/domain"

// PublishResult reports delivery stats to the orchestrator.
type PublishResult struct {
	SentTo  int
	Skipped int
	Failed  []domain.ConnID
}
