package mcmc

import "fmt"

// Transitions accumulates the ordered per-step output of one chain, indexed
// by iteration number starting at 1. Index order always equals production
// order. Bounded runs pre-size the container and write at fixed indices so
// the backing array is never reallocated; convergence-driven runs grow it
// one append at a time.
type Transitions struct {
	steps []Transition
	fixed bool
}

// NewTransitions returns a container pre-sized for exactly n transitions,
// to be filled in order via Set.
func NewTransitions(n int) *Transitions {
	return &Transitions{
		steps: make([]Transition, 0, n),
		fixed: true,
	}
}

// NewGrowable returns an empty append-only container for runs whose final
// length is not known ahead of time.
func NewGrowable() *Transitions {
	return &Transitions{}
}

// Len returns the number of transitions stored so far.
func (t *Transitions) Len() int {
	return len(t.steps)
}

// Set stores the transition for iteration i on a pre-sized container. The
// container enforces production order: i must be exactly Len()+1. Misuse is
// a caller bug, so Set panics rather than returning an error.
func (t *Transitions) Set(i int, tr Transition) {
	if !t.fixed {
		panic("Set called on growable transition container")
	}
	if i != len(t.steps)+1 {
		panic(fmt.Sprintf("Out of order transition write: index %d with %d stored", i, len(t.steps)))
	}
	t.steps = append(t.steps, tr)
}

// Append stores the next transition on a growable container.
func (t *Transitions) Append(tr Transition) {
	if t.fixed {
		panic("Append called on pre-sized transition container")
	}
	t.steps = append(t.steps, tr)
}

// Get returns the transition for iteration i (1-based). Panics if i is out
// of range.
func (t *Transitions) Get(i int) Transition {
	if i < 1 || i > len(t.steps) {
		panic(fmt.Sprintf("Transition index %d out of range 1..%d", i, len(t.steps)))
	}
	return t.steps[i-1]
}

// All returns the stored transitions in production order. The returned slice
// is the container's backing storage; callers must treat it as read-only.
func (t *Transitions) All() []Transition {
	return t.steps
}
