package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProcessFired  EventType = "process_fired"
	EventCellEvaluated EventType = "cell_evaluated"
	EventStepComplete  EventType = "step_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Step      int       `json:"step"`
}

// ProcessEvent is emitted each time the orchestrator executes an operation.
type ProcessEvent struct {
	EventBase
	Operation Operation     `json:"operation"`
	Repeat    int           `json:"repeat"` // 0-based index within a macrostep repeat run
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// CellEvent is emitted after a cell's gene state was evaluated.
// Emitted from the post-step pass, never from inside the per-cell loop.
type CellEvent struct {
	EventBase
	CellID    string       `json:"cell_id"`
	Flips     int          `json:"flips"`
	Changes   []GeneChange `json:"changes,omitempty"`
	Phenotype Phenotype    `json:"phenotype"`
}

// StepEvent carries the population-wide reduction of an intracellular sub-step.
type StepEvent struct {
	EventBase
	Summary StepSummary `json:"summary"`
}

// LifecycleHooks defines callbacks for simulation observability.
type LifecycleHooks struct {
	OnProcessFired  func(context.Context, *ProcessEvent)
	OnCellEvaluated func(context.Context, *CellEvent)
	OnStepComplete  func(context.Context, *StepEvent)
}
