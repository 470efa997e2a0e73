package mcmc

import (
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skellam/mcrun/progress"
	"github.com/skellam/mcrun/rand"
)

// valueSampler emits one generator draw per step, so a chain's output is a
// pure function of its seed. The short first-step sleep shuffles completion
// order under concurrent modes without touching the draw stream.
type valueSampler struct{}

func (s *valueSampler) Clone() interface{} {
	cp := *s
	return &cp
}

func (s *valueSampler) Step(gen *rand.Generator, m Model, iteration int, prev Transition, cfg *Config) (Transition, error) {
	v := gen.Int63n(1000000)
	if iteration == 1 {
		time.Sleep(time.Duration(v%3) * time.Millisecond)
	}
	return v, nil
}

// failSampler behaves like valueSampler but fails the chain whose first draw
// matches trigger. Clones share the step counter so tests can count work
// across all replicas.
type failSampler struct {
	trigger int64
	err     error
	steps   *int64
}

func (s *failSampler) Clone() interface{} {
	cp := *s
	return &cp
}

func (s *failSampler) Step(gen *rand.Generator, m Model, iteration int, prev Transition, cfg *Config) (Transition, error) {
	atomic.AddInt64(s.steps, 1)
	v := gen.Int63n(1000000)
	if iteration == 1 && v == s.trigger {
		return nil, s.err
	}
	return v, nil
}

// uncloneable has no Clone method.
type uncloneable struct{}

func (s *uncloneable) Step(gen *rand.Generator, m Model, iteration int, prev Transition, cfg *Config) (Transition, error) {
	return iteration, nil
}

func chainValues(t *testing.T, chains []Chain) [][]int64 {
	vals := make([][]int64, len(chains))
	for i, ch := range chains {
		ts, ok := ch.(*Transitions)
		require.True(t, ok)
		vals[i] = make([]int64, ts.Len())
		for k := 1; k <= ts.Len(); k++ {
			vals[i][k-1] = ts.Get(k).(int64)
		}
	}
	return vals
}

// chainSeeds replays the master generator's pre-dispatch seed batch.
func chainSeeds(t *testing.T, masterSeed int64, nchains int) []int64 {
	gen := newTestGen(t, masterSeed)
	seeds := make([]int64, nchains)
	for i := range seeds {
		seeds[i] = gen.Int63()
	}
	return seeds
}

func TestEnsembleDeterministicAcrossModes(t *testing.T) {
	assert := assert.New(t)

	run := func(mode Mode, cfg *Config) [][]int64 {
		gen := newTestGen(t, 42)
		chains, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, mode, 10, 5, cfg)
		assert.NoError(err)
		assert.Len(chains, 5)
		return chainValues(t, chains)
	}

	off := &Config{Progress: Bool(false)}
	serial := run(Serial, off)
	threaded := run(Threaded, off)
	distributed := run(Distributed, off)
	twoWorkers := run(Distributed, &Config{Progress: Bool(false), Workers: 2})

	// Same master seed means the same per-chain seeds and thus identical
	// merged output, regardless of mode or concurrency degree
	assert.Equal(serial, threaded)
	assert.Equal(serial, distributed)
	assert.Equal(serial, twoWorkers)

	// And it must be repeatable run over run
	assert.Equal(threaded, run(Threaded, off))
}

func TestEnsembleChainOrderMatchesSeeds(t *testing.T) {
	assert := assert.New(t)

	const nchains = 6
	seeds := chainSeeds(t, 42, nchains)

	gen := newTestGen(t, 42)
	chains, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, Threaded, 4, nchains, &Config{Progress: Bool(false)})
	assert.NoError(err)

	vals := chainValues(t, chains)
	for i := 0; i < nchains; i++ {
		// Chain i carries the output of the run seeded with seed i, no
		// matter which chain finished first
		ref := newTestGen(t, seeds[i])
		assert.Equal(ref.Int63n(1000000), vals[i][0])
	}

	// The master generator advanced by exactly the seed batch
	replay := newTestGen(t, 42)
	for i := 0; i < nchains; i++ {
		replay.Int63()
	}
	assert.Equal(replay.Int63(), gen.Int63())
}

func TestEnsembleFailurePropagation(t *testing.T) {
	assert := assert.New(t)

	const n = 6
	const nchains = 5
	seeds := chainSeeds(t, 42, nchains)

	// Target chain 3: its first draw is a pure function of seed 3
	ref := newTestGen(t, seeds[2])
	trigger := ref.Int63n(1000000)

	boom := pkgerrors.New("Chain blew up")
	var steps int64
	samp := &failSampler{trigger: trigger, err: boom, steps: &steps}

	gen := newTestGen(t, 42)
	chains, err := SampleEnsemble(gen, &testModel{}, samp, Threaded, n, nchains, &Config{Progress: Bool(false)})

	// Exactly one propagated failure and no chain results
	assert.Nil(chains)
	assert.Error(err)

	ce, ok := err.(*ChainError)
	assert.True(ok)
	assert.Equal(3, ce.Index)
	assert.Equal(boom, pkgerrors.Cause(err))

	// Peers ran to completion before the failure surfaced: four full chains
	// plus the failing chain's single step
	assert.Equal(int64(4*n+1), atomic.LoadInt64(&steps))
}

func TestEnsembleProgressAggregation(t *testing.T) {
	assert := assert.New(t)

	const nchains = 4
	var fractions []float64
	cfg := &Config{
		Progress:     Bool(true),
		ProgressSink: progress.Func(func(f float64) { fractions = append(fractions, f) }),
	}

	gen := newTestGen(t, 7)
	chains, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, Threaded, 25, nchains, cfg)
	assert.NoError(err)
	assert.Len(chains, nchains)

	// One signal per finished chain, never per step, and 100% exactly once
	assert.Equal([]float64{0.25, 0.5, 0.75, 1.0}, fractions)
}

func TestEnsembleSlotReuse(t *testing.T) {
	assert := assert.New(t)

	// More chains than slots forces slot reuse with per-chain reseeding
	cfg := &Config{Progress: Bool(false), Workers: 2}

	gen := newTestGen(t, 42)
	dist, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, Distributed, 5, 9, cfg)
	assert.NoError(err)

	gen = newTestGen(t, 42)
	serial, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, Serial, 5, 9, &Config{Progress: Bool(false)})
	assert.NoError(err)

	assert.Equal(chainValues(t, serial), chainValues(t, dist))
}

func TestEnsembleRequiresCloner(t *testing.T) {
	assert := assert.New(t)

	gen := newTestGen(t, 1)
	off := &Config{Progress: Bool(false)}

	chains, err := SampleEnsemble(gen, struct{}{}, &valueSampler{}, Threaded, 5, 2, off)
	assert.Nil(chains)
	assert.Equal(ErrNotImplemented, pkgerrors.Cause(err))

	chains, err = SampleEnsemble(gen, &testModel{}, &uncloneable{}, Threaded, 5, 2, off)
	assert.Nil(chains)
	assert.Equal(ErrNotImplemented, pkgerrors.Cause(err))
}

func TestEnsembleInvalidArgs(t *testing.T) {
	assert := assert.New(t)

	gen := newTestGen(t, 1)
	off := &Config{Progress: Bool(false)}

	chains, err := SampleEnsemble(gen, &testModel{}, &valueSampler{}, Serial, 0, 2, off)
	assert.Nil(chains)
	assert.Equal(ErrInvalidArgument, pkgerrors.Cause(err))

	chains, err = SampleEnsemble(gen, &testModel{}, &valueSampler{}, Serial, 5, 0, off)
	assert.Nil(chains)
	assert.Equal(ErrInvalidArgument, pkgerrors.Cause(err))
}

func TestModeNames(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("serial", Serial.String())
	assert.Equal("threaded", Threaded.String())
	assert.Equal("distributed", Distributed.String())

	m, err := ParseMode("distributed")
	assert.NoError(err)
	assert.Equal(Distributed, m)

	_, err = ParseMode("bogus")
	assert.Equal(ErrInvalidArgument, pkgerrors.Cause(err))
}
