package mcmc

import (
	"github.com/pkg/errors"

	"github.com/skellam/mcrun/rand"
)

// Sample runs the bounded sampling loop: it drives the sampler's step
// computation until n transitions have been retained and returns the bundled
// result. With discardInitial d and thinning t the loop executes
// d + (n-1)*t + 1 internal steps; the callback fires after every internal
// step, while only retained steps reach the container and the progress sink.
func Sample(gen *rand.Generator, m Model, s Sampler, n int, cfg *Config) (Chain, error) {
	cfg = cfg.normalized()

	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Sample count must be >= 1, got %d", n)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := initialize(gen, m, s, cfg); err != nil {
		return nil, err
	}

	total := cfg.DiscardInitial + (n-1)*cfg.Thinning + 1
	ts := NewTransitions(n)
	sink := cfg.sink()

	prev := None
	out := 0
	for k := 1; k <= total; k++ {
		tr, err := step(gen, m, s, k, prev, cfg)
		if err != nil {
			return nil, err
		}

		if cfg.Callback != nil {
			cfg.Callback(gen, m, s, n, k, tr, cfg)
		}

		// Retention: past burn-in and on the thinning stride
		if k > cfg.DiscardInitial && (k-cfg.DiscardInitial-1)%cfg.Thinning == 0 {
			out++
			ts.Set(out, tr)
			sink.Report(float64(out) / float64(n))
		}

		prev = tr
	}

	if err := finalize(gen, m, s, ts, cfg); err != nil {
		return nil, err
	}

	return bundle(gen, m, s, n, ts, cfg)
}

// SampleUntil runs the convergence-driven sampling loop. The first step
// always executes; before every subsequent step the predicate is consulted
// with the full accumulated container, and the loop stops as soon as it
// returns true. Thinning and discard do not apply; every transition is
// retained. The progress sink only learns of completion (fraction 1.0),
// since the total length is unknown while the loop runs.
func SampleUntil(gen *rand.Generator, m Model, s Sampler, isDone DonePredicate, cfg *Config) (Chain, error) {
	cfg = cfg.normalized()

	if isDone == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "SampleUntil requires a done predicate")
	}

	if err := initialize(gen, m, s, cfg); err != nil {
		return nil, err
	}

	ts := NewGrowable()
	sink := cfg.sink()

	tr, err := step(gen, m, s, 1, None, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Callback != nil {
		cfg.Callback(gen, m, s, 0, 1, tr, cfg)
	}
	ts.Append(tr)

	k := 1
	for !isDone(gen, m, s, ts, k, cfg) {
		k++

		next, err := step(gen, m, s, k, tr, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Callback != nil {
			cfg.Callback(gen, m, s, 0, k, next, cfg)
		}
		ts.Append(next)

		tr = next
	}

	sink.Report(1.0)

	if err := finalize(gen, m, s, ts, cfg); err != nil {
		return nil, err
	}

	return bundle(gen, m, s, ts.Len(), ts, cfg)
}
