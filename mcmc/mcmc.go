// Package mcmc is an execution harness for iterative stochastic sampling
// procedures. It owns the sequential sampling loops (bounded-count and
// convergence-driven) and the multi-chain ensemble coordinator; the concrete
// model, the per-step computation, and the final chain representation stay
// with the caller.
package mcmc

import (
	"github.com/pkg/errors"

	"github.com/skellam/mcrun/rand"
)

// A Model describes the target distribution or problem being sampled. The
// harness never inspects it; steppers may mutate it in place as a side
// effect.
type Model interface{}

// A Sampler holds algorithm-specific mutable state (tuning parameters and
// the like), mutated in place across steps.
type Sampler interface{}

// A Transition is the opaque per-step output of a Stepper. The harness treats
// every transition as immutable once produced.
type Transition interface{}

// A Chain is the bundled final output of one run. The default bundle is the
// *Transitions container itself; see Bundler.
type Chain interface{}

type noneTransition struct{}

// None is the defined previous-transition sentinel passed to the very first
// Step of a run. Steppers always receive it instead of a nil value.
var None Transition = noneTransition{}

// IsNone returns true if tr is the first-step sentinel.
func IsNone(tr Transition) bool {
	_, ok := tr.(noneTransition)
	return ok
}

// A Stepper produces one transition from the previous one. Samplers implement
// Stepper to register a step computation; a sampler that does not is rejected
// with ErrNotImplemented on the first step attempt. Steppers may mutate the
// model and their own state in place.
type Stepper interface {
	Step(gen *rand.Generator, m Model, iteration int, prev Transition, cfg *Config) (Transition, error)
}

// An Initializer is the optional setup hook invoked once before a run's first
// step. It may mutate the model and sampler only.
type Initializer interface {
	Init(gen *rand.Generator, m Model, cfg *Config) error
}

// A Finalizer is the optional teardown hook invoked once with a run's final
// transition container, before bundling.
type Finalizer interface {
	Finish(gen *rand.Generator, m Model, ts *Transitions, cfg *Config) error
}

// A Cloner returns an independent deep copy of itself. Models and samplers
// used in ensemble runs must implement Cloner so that every concurrency slot
// can own an exclusive replica.
type Cloner interface {
	Clone() interface{}
}

// A Callback observes every internal step of a sampling loop. n is the
// requested sample count (0 for convergence-driven runs) and k the 1-based
// internal iteration. Callbacks may inspect state but must not mutate the
// transition container.
type Callback func(gen *rand.Generator, m Model, s Sampler, n, k int, tr Transition, cfg *Config)

// A DonePredicate decides when a convergence-driven run stops. It receives
// the full accumulated container, so stopping rules may be computed over the
// whole history. Predicates that consult wall-clock or other external state
// make the final iteration count non-reproducible even under a fixed seed;
// that is a property of such predicates, not an error.
type DonePredicate func(gen *rand.Generator, m Model, s Sampler, ts *Transitions, iteration int, cfg *Config) bool

// step dispatches one Step Protocol call, distinguishing a missing
// implementation from a runtime failure inside a valid one.
func step(gen *rand.Generator, m Model, s Sampler, k int, prev Transition, cfg *Config) (Transition, error) {
	st, ok := s.(Stepper)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "Sampler %T has no step computation for model %T", s, m)
	}

	tr, err := st.Step(gen, m, k, prev, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Step %d failed", k)
	}

	return tr, nil
}

// initialize runs the optional setup hook.
func initialize(gen *rand.Generator, m Model, s Sampler, cfg *Config) error {
	hook, ok := s.(Initializer)
	if !ok {
		return nil
	}
	return errors.Wrap(hook.Init(gen, m, cfg), "Sampler setup failed")
}

// finalize runs the optional teardown hook with the finished container.
func finalize(gen *rand.Generator, m Model, s Sampler, ts *Transitions, cfg *Config) error {
	hook, ok := s.(Finalizer)
	if !ok {
		return nil
	}
	return errors.Wrap(hook.Finish(gen, m, ts, cfg), "Sampler teardown failed")
}
