// Package generate produces random test data.
package generate

import (
	"fmt"
	"math/rand/v2"
)

// Generator draws from its own source so callers can seed it.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// RandomDecimals returns n floats drawn uniformly from [min, max).
func (g *Generator) RandomDecimals(n int, min, max float64) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("generate: negative count %d", n)
	}
	if min > max {
		return nil, fmt.Errorf("generate: min %v greater than max %v", min, max)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = min + g.float()*(max-min)
	}
	return out, nil
}

func (g *Generator) float() float64 {
	if g.rng == nil {
		return rand.Float64()
	}
	return g.rng.Float64()
}

// RandomDecimals draws from the global source.
func RandomDecimals(n int, min, max float64) ([]float64, error) {
	return (&Generator{}).RandomDecimals(n, min, max)
}
