// Package pipeline implements the run's DAG scheduler, the six-round LLM
// lifecycle (runner, validator, quality checker, compressor, cache), and
// the pipeline assembler that wires them into a job graph for one run.
package pipeline

import (
	"context"
	"time"
)

// StepStatus is the terminal or in-flight state of one scheduled step.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
	StatusSkipped   StepStatus = "skipped"
)

// StepResult is what the scheduler records for one executed (or skipped)
// step.
type StepResult struct {
	Status   StepStatus
	Data     any
	Err      error
	Reason   string // populated for Skipped: which upstream failure caused it
	Duration time.Duration
}

// StepDefinition is one node in the job graph (§3 data model). Deps
// references only step ids that must already be StatusCompleted before
// Execute runs.
type StepDefinition struct {
	ID      string
	Name    string
	Deps    []string
	Execute func(ctx context.Context, rc *RunContext) (any, error)
}

// RunContext is read-only shared state every step's Execute function can
// consult. The scheduler populates Results as steps complete so a
// dependent step can read its declared dependencies' output by id.
type RunContext struct {
	// RunID uniquely identifies this pipeline run (a fresh google/uuid
	// generated once per Execute call). Steps thread it through for log
	// correlation and cache-write provenance; it is never part of a cache
	// key, since the round cache's content-addressing must stay stable
	// across runs (§4.11).
	RunID   string
	Results map[string]StepResult
}

// Dep returns the completed result of a declared dependency step, or false
// if it hasn't run (or was skipped).
func (rc *RunContext) Dep(id string) (StepResult, bool) {
	r, ok := rc.Results[id]
	return r, ok && r.Status == StatusCompleted
}

// EventType identifies one lifecycle event the scheduler emits.
type EventType string

const (
	EventStepStart    EventType = "stepStart"
	EventStepComplete EventType = "stepComplete"
	EventStepFail     EventType = "stepFail"
	EventStepSkip     EventType = "stepSkip"
	EventStepRetry    EventType = "stepRetry"
)

// Event is one entry in the scheduler's typed progress stream, consumable
// by an external renderer. The core never draws UI (spec §6).
type Event struct {
	Type   EventType
	StepID string
	Detail string
	RunID  string
	At     time.Time
}

// EventSink receives scheduler events. A nil sink is valid: events are
// simply dropped. Implementations must not block for long — the scheduler
// sends synchronously between step transitions.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

// NopSink discards every event.
var NopSink EventSink = EventSinkFunc(func(Event) {})
