package mcmc

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/skellam/mcrun/rand"
)

// ChainType selects the Result Bundler conversion applied to a finished run.
type ChainType string

// Unconstrained is the default ChainType: the identity bundle, which returns
// the transition container unchanged.
const Unconstrained ChainType = "unconstrained"

// A Bundler converts the raw transitions of a finished run into the caller's
// final chain representation. n is the retained transition count.
type Bundler interface {
	Bundle(gen *rand.Generator, m Model, s Sampler, n int, ts *Transitions, cfg *Config) (Chain, error)
}

// BundlerFunc adapts a function to the Bundler interface.
type BundlerFunc func(gen *rand.Generator, m Model, s Sampler, n int, ts *Transitions, cfg *Config) (Chain, error)

// Bundle calls f.
func (f BundlerFunc) Bundle(gen *rand.Generator, m Model, s Sampler, n int, ts *Transitions, cfg *Config) (Chain, error) {
	return f(gen, m, s, n, ts, cfg)
}

var (
	bundlersMu sync.RWMutex
	bundlers   = map[ChainType]Bundler{}
)

// RegisterBundler installs the conversion for a ChainType, replacing any
// previous registration. Registering Unconstrained overrides the identity
// transform.
func RegisterBundler(ct ChainType, b Bundler) {
	bundlersMu.Lock()
	defer bundlersMu.Unlock()
	bundlers[ct] = b
}

// bundle resolves the configured ChainType and applies its conversion. The
// unregistered default is the identity transform for Unconstrained and
// ErrNotImplemented for anything else.
func bundle(gen *rand.Generator, m Model, s Sampler, n int, ts *Transitions, cfg *Config) (Chain, error) {
	bundlersMu.RLock()
	b, ok := bundlers[cfg.ChainType]
	bundlersMu.RUnlock()

	if !ok {
		if cfg.ChainType == Unconstrained {
			return ts, nil
		}
		return nil, errors.Wrapf(ErrNotImplemented, "No bundler registered for chain type %q", cfg.ChainType)
	}

	ch, err := b.Bundle(gen, m, s, n, ts, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Bundler for chain type %q failed", cfg.ChainType)
	}

	return ch, nil
}
