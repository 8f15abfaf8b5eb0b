package orch

import "github.com/dkeye/Relay/internal/app"

// Orchestrator turns connection events into registry and dispatcher calls.
type Orchestrator struct {
	Registry   *app.Registry
	Dispatcher *app.Dispatcher
}

func New(reg *app.Registry) *Orchestrator {
	return &Orchestrator{
		Registry:   reg,
		Dispatcher: app.NewDispatcher(reg),
	}
}
