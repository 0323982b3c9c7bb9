package usecase

import (
	"context"
	"log"
)

// SideEffectRunner collects the best-effort tail of an operation
// (notifications, audit entries, queue publishes) and runs it after the
// primary mutation has succeeded. A failing step is logged and reported back
// as a value; it never propagates as an error, so ingestion cannot fail
// because a downstream sink did.
type SideEffectRunner struct {
	steps []sideEffectStep
}

type sideEffectStep struct {
	Name string
	Fn   func(context.Context) error
}

type SideEffectFailure struct {
	Name string
	Err  error
}

func (r *SideEffectRunner) Add(name string, fn func(context.Context) error) {
	r.steps = append(r.steps, sideEffectStep{name, fn})
}

func (r *SideEffectRunner) Flush(ctx context.Context) []SideEffectFailure {
	var failures []SideEffectFailure

	for _, step := range r.steps {
		if err := step.Fn(ctx); err != nil {
			log.Printf("⚠️ side effect '%s' failed: %v", step.Name, err)
			failures = append(failures, SideEffectFailure{Name: step.Name, Err: err})
		}
	}

	r.steps = nil
	return failures
}
