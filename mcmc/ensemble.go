package mcmc

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/skellam/mcrun/rand"
)

// Mode selects the concurrency substrate the ensemble coordinator runs on.
// The coordination algorithm is identical across modes; they differ only in
// slot count and in how finished chains travel back to the coordinator.
type Mode int

const (
	// Serial runs all chains one after another on a single slot.
	Serial Mode = iota

	// Threaded fans chains out over one slot per CPU. Results land directly
	// in shared memory.
	Threaded

	// Distributed fans chains out over a fixed worker pool (Config.Workers)
	// whose results travel back over a message channel instead of shared
	// memory.
	Distributed
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Serial:
		return "serial"
	case Threaded:
		return "threaded"
	case Distributed:
		return "distributed"
	default:
		return "unknown"
	}
}

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "serial":
		return Serial, nil
	case "threaded":
		return Threaded, nil
	case "distributed":
		return Distributed, nil
	default:
		return Serial, errors.Wrapf(ErrInvalidArgument, "Unknown ensemble mode %q", s)
	}
}

// replica is the exclusive generator/model/sampler copy owned by one
// concurrency slot. Slots are reused across chains when nchains exceeds the
// slot count; the generator is reseeded before every chain so no state leaks
// between chains sharing a slot.
type replica struct {
	gen *rand.Generator
	m   Model
	s   Sampler
}

// chainResult carries one finished chain over the Distributed transport.
type chainResult struct {
	index int
	chain Chain
}

// SampleEnsemble fans one logical run out into nchains independent chains of
// n samples each and merges the bundled results, ordered by chain number
// regardless of completion order. Seeds for all chains are drawn from the
// master generator in a single batch before any dispatch, so seed assignment
// is a pure function of the master state and nchains, independent of the
// concurrency degree and of the mode. On any chain failure the in-flight
// peers still run to completion, then the failure of the lowest-numbered
// failed chain is returned and no partial results are exposed.
func SampleEnsemble(gen *rand.Generator, m Model, s Sampler, mode Mode, n, nchains int, cfg *Config) ([]Chain, error) {
	cfg = cfg.normalized()

	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Sample count must be >= 1, got %d", n)
	}
	if nchains < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "Chain count must be >= 1, got %d", nchains)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Reproducibility requires the full seed batch to be drawn strictly
	// before dispatch.
	seeds := make([]int64, nchains)
	for i := range seeds {
		seeds[i] = gen.Int63()
	}

	slots := slotCount(mode, cfg)
	if slots > nchains {
		slots = nchains
	}

	replicas, err := newReplicas(gen, m, s, slots)
	if err != nil {
		return nil, err
	}

	// Chains never report per-step progress; only whole-chain completion
	// feeds the aggregator below.
	chainCfg := *cfg
	chainCfg.Progress = Bool(false)

	results := make([]Chain, nchains)
	errs := make([]error, nchains)

	// In Threaded (and Serial) mode a finished chain is written straight
	// into shared memory. Distributed mode sends it over a channel drained
	// by a collector, standing in for a message transport.
	deliver := func(idx int, ch Chain) {
		results[idx] = ch
	}
	var collected chan struct{}
	var out chan chainResult
	if mode == Distributed {
		out = make(chan chainResult, nchains)
		collected = make(chan struct{})
		go func() {
			defer close(collected)
			for r := range out {
				results[r.index] = r.chain
			}
		}()
		deliver = func(idx int, ch Chain) {
			out <- chainResult{index: idx, chain: ch}
		}
	}

	// Multi-producer completion signals with a single draining consumer:
	// exactly one signal per chain, success or failure.
	done := make(chan struct{}, nchains)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		sink := cfg.sink()
		for completed := 1; completed <= nchains; completed++ {
			<-done
			sink.Report(float64(completed) / float64(nchains))
		}
	}()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for _, rep := range replicas {
		wg.Add(1)
		go func(rep *replica) {
			defer wg.Done()
			for idx := range jobs {
				rep.gen.Seed(seeds[idx])
				ch, err := Sample(rep.gen, rep.m, rep.s, n, &chainCfg)
				if err != nil {
					errs[idx] = &ChainError{Index: idx + 1, Err: err}
				} else {
					deliver(idx, ch)
				}
				done <- struct{}{}
			}
		}(rep)
	}

	for i := 0; i < nchains; i++ {
		jobs <- i
	}
	close(jobs)

	// Join: every dispatched chain finishes (or fails) before anything
	// surfaces to the caller. Cancellation mid-run is not attempted.
	wg.Wait()
	<-aggregated
	if out != nil {
		close(out)
		<-collected
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// slotCount returns the number of concurrency slots for the mode.
func slotCount(mode Mode, cfg *Config) int {
	switch mode {
	case Threaded:
		return runtime.NumCPU()
	case Distributed:
		if cfg.Workers > 0 {
			return cfg.Workers
		}
		return runtime.NumCPU()
	default:
		return 1
	}
}

// newReplicas deep-copies the generator, model, and sampler once per slot.
// Every mode clones, including Serial, so ensemble runs never mutate the
// caller's model or sampler.
func newReplicas(gen *rand.Generator, m Model, s Sampler, slots int) ([]*replica, error) {
	mc, ok := m.(Cloner)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "Model %T cannot be cloned for ensemble sampling", m)
	}
	sc, ok := s.(Cloner)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "Sampler %T cannot be cloned for ensemble sampling", s)
	}

	reps := make([]*replica, slots)
	for i := range reps {
		reps[i] = &replica{
			gen: gen.Clone(),
			m:   mc.Clone(),
			s:   sc.Clone(),
		}
	}

	return reps, nil
}
