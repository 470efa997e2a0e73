package mcmc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel causes for the harness error taxonomy. Wrapped errors carry
// context; errors.Cause (or errors.Is) recovers the sentinel.
var (
	// ErrInvalidArgument reports a bad run argument, e.g. a non-positive
	// sample count. It is returned before any step executes.
	ErrInvalidArgument = errors.New("Invalid argument")

	// ErrNotImplemented reports a missing extension point: a sampler with no
	// step computation for its model, a model or sampler that cannot be
	// cloned for ensemble runs, or an unregistered chain type.
	ErrNotImplemented = errors.New("Not implemented")
)

// ChainError reports the failure of one chain during an ensemble run. The
// coordinator waits for every in-flight peer before surfacing it, and no
// partial per-chain results are returned alongside it.
type ChainError struct {
	Index int   // 1-based chain number
	Err   error // the failure escaping the chain's sampling loop
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	return fmt.Sprintf("Chain %d failed: %v", e.Index, e.Err)
}

// Cause returns the underlying chain failure (pkg/errors causer).
func (e *ChainError) Cause() error {
	return e.Err
}

// Unwrap returns the underlying chain failure (errors.Is/As support).
func (e *ChainError) Unwrap() error {
	return e.Err
}
