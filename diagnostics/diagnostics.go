// Package diagnostics provides convergence statistics over scalar chain
// histories plus predicate builders for convergence-driven sampling runs.
package diagnostics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/skellam/mcrun/buffer"
	"github.com/skellam/mcrun/mcmc"
	"github.com/skellam/mcrun/rand"
)

// PotentialScaleReduction returns the split-Rhat statistic over the given
// chains of scalar draws. Each chain is split in half, so m chains yield 2m
// sequences; values near 1 indicate the chains are sampling the same
// distribution. All chains must share one even length >= 4.
func PotentialScaleReduction(chains [][]float64) (float64, error) {
	if len(chains) < 1 {
		return 0, errors.Errorf("Can not diagnose 0 chains")
	}

	full := len(chains[0])
	if full < 4 || full%2 != 0 {
		return 0, errors.Errorf("Chain length must be even and >= 4, got %d", full)
	}

	half := full / 2
	seqs := make([][]float64, 0, len(chains)*2)
	for _, c := range chains {
		if len(c) != full {
			return 0, errors.Errorf("Can not diagnose chains of mismatched lengths %d != %d", len(c), full)
		}
		seqs = append(seqs, c[:half], c[half:])
	}

	n := float64(half)
	m := float64(len(seqs))

	means := make([]float64, len(seqs))
	within := 0.0
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
		within += stat.Variance(s, nil)
	}
	within /= m

	between := n * stat.Variance(means, nil)

	if within == 0 {
		// Degenerate constant chains: either identical (converged) or not
		if between == 0 {
			return 1, nil
		}
		return math.Inf(1), nil
	}

	varPlus := (n-1)/n*within + between/n
	return math.Sqrt(varPlus / within), nil
}

// Geweke returns the z-score comparing the means of the oldest and newest
// halves of the window. Scores near 0 suggest the windowed history is
// stationary.
func Geweke(w *buffer.Window) (float64, error) {
	if w == nil || !w.Full() {
		return 0, errors.Errorf("Window not yet full")
	}

	first := drain(w.FirstHalf())
	second := drain(w.SecondHalf())

	m1, v1 := stat.MeanVariance(first, nil)
	m2, v2 := stat.MeanVariance(second, nil)

	denom := math.Sqrt(v1/float64(len(first)) + v2/float64(len(second)))
	if denom == 0 {
		if m1 == m2 {
			return 0, nil
		}
		return math.Inf(1), nil
	}

	return (m1 - m2) / denom, nil
}

func drain(iter *buffer.WindowIterator) []float64 {
	var vals []float64
	for iter.Next() {
		vals = append(vals, iter.Value())
	}
	return vals
}

// Extract pulls the scalar being monitored out of an opaque transition.
type Extract func(tr mcmc.Transition) float64

// FixedIterations returns a DonePredicate that stops after exactly n
// transitions have been produced.
func FixedIterations(n int) mcmc.DonePredicate {
	return func(gen *rand.Generator, m mcmc.Model, s mcmc.Sampler, ts *mcmc.Transitions, iteration int, cfg *mcmc.Config) bool {
		return ts.Len() >= n
	}
}

// GewekeDone returns a DonePredicate that feeds the extracted scalar into a
// sliding window and stops once the window is full and the Geweke z-score
// magnitude drops below threshold. The returned predicate owns its window
// and must not be shared across concurrent runs.
func GewekeDone(window int, threshold float64, extract Extract) mcmc.DonePredicate {
	w := buffer.NewWindow(window)
	seen := 0
	return func(gen *rand.Generator, m mcmc.Model, s mcmc.Sampler, ts *mcmc.Transitions, iteration int, cfg *mcmc.Config) bool {
		for seen < ts.Len() {
			seen++
			w.Add(extract(ts.Get(seen)))
		}

		z, err := Geweke(w)
		if err != nil {
			return false
		}
		return math.Abs(z) < threshold
	}
}
