package synth

import (
	"math/rand/v2"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// WhiteNoise outputs uniform noise in [-1, 1).
type WhiteNoise struct {
	param.NoParams
	rng *rand.Rand
}

// NewWhiteNoise seeds a fresh generator.
func NewWhiteNoise() *WhiteNoise {
	return NewSeededWhiteNoise(rand.Uint64(), rand.Uint64())
}

// NewSeededWhiteNoise returns a reproducible generator.
func NewSeededWhiteNoise(seed1, seed2 uint64) *WhiteNoise {
	return &WhiteNoise{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (n *WhiteNoise) Init(float64) {}

func (n *WhiteNoise) Sample() sample.Sound {
	return sample.MonoSound(n.next())
}

func (n *WhiteNoise) next() float64 {
	return 2*n.rng.Float64() - 1
}
