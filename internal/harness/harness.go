package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/eventlog"
	"github.com/roach88/devstage/internal/session"
	"github.com/roach88/devstage/internal/store"
	"github.com/roach88/devstage/internal/testutil"
)

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	Passed   bool
	Errors   []string

	// State is the snapshot after the last step.
	State engine.State

	// Code and Snippet are rendered from State.
	Code    string
	Snippet string
}

func newResult(name string) *Result {
	return &Result{Scenario: name, Passed: true}
}

// addError records a failure and marks the result as failed.
func (r *Result) addError(format string, args ...any) {
	r.Passed = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run executes a scenario and returns its result.
//
// Each run gets a fresh in-memory backend, a sequence id generator and a
// deterministic clock. opts are applied after those defaults and may
// replace them.
//
// A returned error means the scenario could not run at all (the
// component failed to load, for example). A failing step or assertion is
// reported through Result.Errors instead. Steps stop at the first
// failure; assertions are still evaluated against the state reached.
func Run(scenario *Scenario, opts ...engine.Option) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	cfg, err := component.LoadFile(scenario.Component)
	if err != nil {
		return nil, fmt.Errorf("failed to load component: %w", err)
	}
	if err := component.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid component: %w", err)
	}

	engineOpts := []engine.Option{
		engine.WithBackend(store.NewMemory()),
		engine.WithIDGenerator(eventlog.NewSequenceGenerator()),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	initial, err := scenario.Initial.partial()
	if err != nil {
		return nil, fmt.Errorf("invalid initial state: %w", err)
	}
	if initial != nil {
		engineOpts = append(engineOpts, engine.WithInitialState(*initial))
	}
	engineOpts = append(engineOpts, opts...)

	ctx := context.Background()
	sess, err := session.New(ctx, cfg, engineOpts...)
	if err != nil {
		return nil, err
	}
	defer sess.Close(ctx)

	result := newResult(scenario.Name)
	for i, step := range scenario.Steps {
		act, err := step.action()
		if err == nil {
			err = act(sess)
		}
		if err != nil {
			result.addError("step %d (%s): %v", i+1, step.Op, err)
			break
		}
	}

	result.State = sess.Snapshot()
	result.Code = sess.Code()
	result.Snippet = sess.Snippet()

	for i, a := range scenario.Assertions {
		if err := evaluate(a, result); err != nil {
			result.addError("assertion %d (%s): %v", i+1, a.Type, err)
		}
	}
	return result, nil
}
