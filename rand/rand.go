package rand

import (
	mrand "math/rand"

	"github.com/seehuhn/mt19937"
)

// A Generator is a seedable Mersenne Twister PRNG exposing the usual
// math/rand surface. Each sampling chain owns exactly one Generator; a
// Generator is never shared across concurrently executing chains.
type Generator struct {
	seed int64
	src  *mt19937.MT19937
	rnd  *mrand.Rand
}

// NewGenerator returns a new PRNG based on the given seed.
func NewGenerator(seed int64) (*Generator, error) {
	src := mt19937.New()
	src.Seed(seed)

	g := &Generator{
		seed: seed,
		src:  src,
		rnd:  mrand.New(src),
	}

	return g, nil
}

// Seed reseeds the generator in place. Ensemble slots reuse one Generator
// across the chains assigned to them and reseed it before every chain so no
// state leaks from one chain into the next.
func (g *Generator) Seed(seed int64) {
	g.seed = seed
	g.rnd.Seed(seed)
}

// Clone returns an independent Generator positioned at this generator's most
// recent seed. Callers that need the clone to diverge from the parent must
// reseed it (the ensemble coordinator always does).
func (g *Generator) Clone() *Generator {
	cp, _ := NewGenerator(g.seed)
	return cp
}

// LastSeed returns the seed most recently applied via NewGenerator or Seed.
func (g *Generator) LastSeed() int64 {
	return g.seed
}

// Int63 provides the same interface as Go's math/rand.
func (g *Generator) Int63() int64 {
	return g.rnd.Int63()
}

// Int63n returns a uniform value in [0, n). Panics if n <= 0.
func (g *Generator) Int63n(n int64) int64 {
	return g.rnd.Int63n(n)
}

// Int31 returns a uniform 31-bit value.
func (g *Generator) Int31() int32 {
	return g.rnd.Int31()
}

// Int31n returns a uniform value in [0, n). Panics if n <= 0.
func (g *Generator) Int31n(n int32) int32 {
	return g.rnd.Int31n(n)
}

// Intn returns a uniform value in [0, n). Panics if n <= 0.
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

// Float64 returns a uniform value in [0.0, 1.0).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// NormFloat64 returns a standard-normal value.
func (g *Generator) NormFloat64() float64 {
	return g.rnd.NormFloat64()
}
