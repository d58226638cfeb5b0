package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Scheduler executes a set of StepDefinitions honoring declared
// dependencies, with deterministic ordering and bounded concurrency (§4.1).
// A failing step never aborts the run: its transitive dependents are
// marked Skipped with a referential reason, and every other branch of the
// graph keeps running.
type Scheduler struct {
	steps       map[string]StepDefinition
	order       []string // registration order, breaks ties in the ready queue
	concurrency int
	sink        EventSink
}

// NewScheduler returns a Scheduler with the given concurrency cap (steps
// ready to run at once). A cap <= 0 defaults to 1.
func NewScheduler(concurrency int, sink EventSink) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	if sink == nil {
		sink = NopSink
	}
	return &Scheduler{
		steps:       make(map[string]StepDefinition),
		concurrency: concurrency,
		sink:        sink,
	}
}

// AddSteps registers steps, rejecting duplicate ids.
func (s *Scheduler) AddSteps(steps ...StepDefinition) error {
	for _, st := range steps {
		if _, exists := s.steps[st.ID]; exists {
			return fmt.Errorf("pipeline: duplicate step id %q", st.ID)
		}
		s.steps[st.ID] = st
		s.order = append(s.order, st.ID)
	}
	return nil
}

// Validate returns every structural error found: references to unknown
// step ids, and cycles. It never mutates the graph.
func (s *Scheduler) Validate() []error {
	var errs []error

	for id, st := range s.steps {
		for _, dep := range st.Deps {
			if _, ok := s.steps[dep]; !ok {
				errs = append(errs, fmt.Errorf("step %q declares unknown dependency %q", id, dep))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// Kahn's algorithm: repeatedly remove nodes with in-degree zero. If the
	// graph cannot be fully reduced, the remainder is a cycle.
	inDegree := make(map[string]int, len(s.steps))
	dependents := make(map[string][]string, len(s.steps))
	for id, st := range s.steps {
		inDegree[id] += len(st.Deps)
		for _, dep := range st.Deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]string, 0, len(s.steps))
	for _, id := range s.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	removed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		removed++
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if removed != len(s.steps) {
		var cyclic []string
		for id, deg := range inDegree {
			if deg > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		errs = append(errs, fmt.Errorf("pipeline: cycle detected among steps: %v", cyclic))
	}

	return errs
}

// completion is what a worker reports back to the single-threaded
// dispatcher loop after a step's Execute returns.
type completion struct {
	id       string
	status   StepStatus
	data     any
	err      error
	duration time.Duration
}

// Execute runs every registered step, respecting dependencies, until the
// graph is exhausted. It returns the full result set even on partial
// failure; Execute itself only returns a non-nil error for a validation
// failure (the caller should call Validate first, but Execute re-checks
// to stay safe against misuse).
//
// All bookkeeping (ready queue, in-degree counts, result map) is owned by
// a single dispatcher goroutine; worker goroutines only run Execute and
// report back over a channel, so no locks are needed for scheduler state.
func (s *Scheduler) Execute(ctx context.Context) (map[string]StepResult, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("pipeline: invalid graph: %v", errs)
	}
	if len(s.steps) == 0 {
		return map[string]StepResult{}, nil
	}

	runID := uuid.NewString()
	rc := &RunContext{RunID: runID, Results: make(map[string]StepResult, len(s.steps))}

	dependents := make(map[string][]string, len(s.steps))
	remaining := make(map[string]int, len(s.steps))
	// Built in registration order so that dependents becoming ready at the
	// same time join the ready queue in registration order.
	for _, id := range s.order {
		st := s.steps[id]
		remaining[id] = len(st.Deps)
		for _, dep := range st.Deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var readyQueue []string
	for _, id := range s.order {
		if remaining[id] == 0 {
			readyQueue = append(readyQueue, id)
		}
	}

	results := make(chan completion)
	inFlight := make(map[string]bool, len(s.steps))
	settled := 0

	startStep := func(id string) {
		st := s.steps[id]
		inFlight[id] = true
		s.sink.Emit(Event{Type: EventStepStart, StepID: id, RunID: runID, At: time.Now()})
		go func() {
			start := time.Now()
			data, err := st.Execute(ctx, rc)
			status := StatusCompleted
			if err != nil {
				status = StatusFailed
			}
			results <- completion{id: id, status: status, data: data, err: err, duration: time.Since(start)}
		}()
	}

	// dispatchNext starts as many ready steps as the concurrency cap allows.
	running := 0
	dispatchNext := func() {
		for running < s.concurrency && len(readyQueue) > 0 {
			id := readyQueue[0]
			readyQueue = readyQueue[1:]
			startStep(id)
			running++
		}
	}

	// markSkipped cascades a failure/skip to every transitive dependent,
	// depth-first, visiting each step's dependents in registration order.
	var markSkipped func(id, reason string)
	markSkipped = func(id, reason string) {
		if _, already := rc.Results[id]; already {
			return
		}
		res := StepResult{Status: StatusSkipped, Reason: reason}
		rc.Results[id] = res
		settled++
		s.sink.Emit(Event{Type: EventStepSkip, StepID: id, Detail: reason, RunID: runID, At: time.Now()})
		for _, dep := range dependents[id] {
			markSkipped(dep, fmt.Sprintf("upstream step %q did not complete", id))
		}
	}

	// handleCompletion folds one worker's report into rc.Results and, when
	// the run has not been cancelled, enqueues newly-ready dependents.
	handleCompletion := func(c completion, cancelled bool) {
		running--
		delete(inFlight, c.id)
		res := StepResult{Status: c.status, Data: c.data, Err: c.err, Duration: c.duration}
		rc.Results[c.id] = res
		settled++

		if c.status == StatusFailed {
			s.sink.Emit(Event{Type: EventStepFail, StepID: c.id, Detail: c.err.Error(), RunID: runID, At: time.Now()})
			if !cancelled {
				for _, dep := range dependents[c.id] {
					markSkipped(dep, fmt.Sprintf("upstream step %q failed: %v", c.id, c.err))
				}
			}
		} else {
			s.sink.Emit(Event{Type: EventStepComplete, StepID: c.id, RunID: runID, At: time.Now()})
			if !cancelled {
				for _, dep := range dependents[c.id] {
					if _, already := rc.Results[dep]; already {
						continue
					}
					remaining[dep]--
					if remaining[dep] == 0 {
						readyQueue = append(readyQueue, dep)
					}
				}
			}
		}
	}

	dispatchNext()

	// On cancellation the scheduler stops dispatching new steps but keeps
	// draining `results` until every already-started goroutine reports
	// back, so the returned result set always reflects settled work and no
	// worker goroutine is ever abandoned (§5 "awaits in-flight steps to
	// settle").
	cancelled := false
	for settled < len(s.steps) {
		if cancelled && running == 0 {
			break
		}
		if cancelled {
			handleCompletion(<-results, true)
			continue
		}
		select {
		case <-ctx.Done():
			cancelled = true
			readyQueue = nil
		case c := <-results:
			handleCompletion(c, false)
			dispatchNext()
		}
	}

	if cancelled {
		return rc.Results, ctx.Err()
	}
	return rc.Results, nil
}
