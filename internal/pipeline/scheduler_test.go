package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func step(id string, deps []string, fn func(ctx context.Context, rc *RunContext) (any, error)) StepDefinition {
	return StepDefinition{ID: id, Name: id, Deps: deps, Execute: fn}
}

func okStep(id string, deps []string) StepDefinition {
	return step(id, deps, func(ctx context.Context, rc *RunContext) (any, error) {
		return id, nil
	})
}

func TestValidateDetectsUnknownDependency(t *testing.T) {
	s := NewScheduler(1, nil)
	if err := s.AddSteps(okStep("a", []string{"missing"})); err != nil {
		t.Fatalf("AddSteps: %v", err)
	}
	errs := s.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a validation error for an unknown dependency, got none")
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	s := NewScheduler(1, nil)
	if err := s.AddSteps(
		okStep("a", []string{"b"}),
		okStep("b", []string{"a"}),
	); err != nil {
		t.Fatalf("AddSteps: %v", err)
	}
	errs := s.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a cycle validation error, got none")
	}
}

func TestExecuteRespectsDependencyOrder(t *testing.T) {
	var order []string
	record := func(id string) func(ctx context.Context, rc *RunContext) (any, error) {
		return func(ctx context.Context, rc *RunContext) (any, error) {
			order = append(order, id)
			return id, nil
		}
	}

	s := NewScheduler(1, nil)
	if err := s.AddSteps(
		step("a", nil, record("a")),
		step("b", []string{"a"}, record("b")),
		step("c", []string{"b"}, record("c")),
	); err != nil {
		t.Fatalf("AddSteps: %v", err)
	}

	results, err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if results[id].Status != StatusCompleted {
			t.Fatalf("step %q: got status %q, want completed", id, results[id].Status)
		}
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("execution order = %v, want %v", order, want)
	}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

func TestExecuteSkipsTransitiveDependentsOnFailure(t *testing.T) {
	failErr := errors.New("boom")

	s := NewScheduler(2, nil)
	if err := s.AddSteps(
		step("root", nil, func(ctx context.Context, rc *RunContext) (any, error) {
			return nil, failErr
		}),
		okStep("child", []string{"root"}),
		okStep("grandchild", []string{"child"}),
		okStep("independent", nil),
	); err != nil {
		t.Fatalf("AddSteps: %v", err)
	}

	results, err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if results["root"].Status != StatusFailed {
		t.Fatalf("root status = %q, want failed", results["root"].Status)
	}
	if results["child"].Status != StatusSkipped {
		t.Fatalf("child status = %q, want skipped", results["child"].Status)
	}
	if results["grandchild"].Status != StatusSkipped {
		t.Fatalf("grandchild status = %q, want skipped", results["grandchild"].Status)
	}
	if results["independent"].Status != StatusCompleted {
		t.Fatalf("independent status = %q, want completed", results["independent"].Status)
	}
}

func TestExecuteDrainsInFlightStepsOnCancellation(t *testing.T) {
	started := make(chan struct{}, 2)
	var settledCount atomic.Int32

	s := NewScheduler(2, nil)
	if err := s.AddSteps(
		step("slow-a", nil, func(ctx context.Context, rc *RunContext) (any, error) {
			started <- struct{}{}
			<-ctx.Done()
			settledCount.Add(1)
			return nil, ctx.Err()
		}),
		step("slow-b", nil, func(ctx context.Context, rc *RunContext) (any, error) {
			started <- struct{}{}
			<-ctx.Done()
			settledCount.Add(1)
			return nil, ctx.Err()
		}),
	); err != nil {
		t.Fatalf("AddSteps: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var results map[string]StepResult
	var execErr error
	go func() {
		results, execErr = s.Execute(ctx)
		close(done)
	}()

	<-started
	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after cancellation; in-flight steps were not drained")
	}

	if !errors.Is(execErr, context.Canceled) {
		t.Fatalf("Execute error = %v, want context.Canceled", execErr)
	}
	if settledCount.Load() != 2 {
		t.Fatalf("settled goroutines = %d, want 2 (Execute must await in-flight steps)", settledCount.Load())
	}
	if len(results) != 2 {
		t.Fatalf("partial result set has %d entries, want 2", len(results))
	}
	for id, res := range results {
		if res.Status != StatusFailed {
			t.Fatalf("step %q status = %q, want failed (cancelled)", id, res.Status)
		}
	}
}
