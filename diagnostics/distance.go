package diagnostics

import (
	"math"

	"github.com/pkg/errors"
)

// Distribution distances for comparing empirical histograms, e.g. a chain's
// early and late marginal estimates. Inputs are non-negative counts or
// weights; each function normalizes internally.

const eps = 1e-12

func normalize(p []float64) []float64 {
	tot := 0.0
	for _, v := range p {
		tot += v
	}
	if tot < eps {
		tot = eps
	}

	norm := make([]float64, len(p))
	for i, v := range p {
		norm[i] = v / tot
	}
	return norm
}

// Hellinger returns the Hellinger-style distance between two histograms:
// sum((sqrt(p) - sqrt(q))**2) / sqrt(2)
func Hellinger(p []float64, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, errors.Errorf("Histogram size mismatch %d != %d", len(p), len(q))
	}

	pn := normalize(p)
	qn := normalize(q)

	errSum := 0.0
	for i, v := range pn {
		d := math.Sqrt(v) - math.Sqrt(qn[i])
		errSum += d * d // squared, so always positive
	}
	return errSum / math.Sqrt2, nil
}

// klDivergence returns the Kullback–Leibler divergence, which is
// non-symmetric! This is strictly a subroutine for JS Divergence, so there
// is no error checking and the arrays are assumed normalized (sum == 1.0)
// klDivergence(P, Q) <==> D_{KL}(P || Q)
func klDivergence(p []float64, q []float64) float64 {
	diverge := 0.0
	for i, p1 := range p {
		diverge += p1 * math.Log2(p1/q[i])
	}
	return diverge
}

// JSDivergence returns the Jensen-Shannon divergence, a symmetric
// generalization of the KL divergence.
func JSDivergence(p []float64, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, errors.Errorf("Histogram size mismatch %d != %d", len(p), len(q))
	}

	pn := normalize(p)
	qn := normalize(q)

	mid := make([]float64, len(pn))
	for i, v := range pn {
		mid[i] = (v + qn[i]) * 0.5
	}

	return 0.5 * (klDivergence(pn, mid) + klDivergence(qn, mid)), nil
}
