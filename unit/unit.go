// Package unit defines the capabilities of the nodes a mixer owns.
package unit

import (
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// Synth produces one frame per tick. Init is called once, when the synth
// is inserted in the tree, with the duration of one frame in seconds.
// Returning a Done sound removes the synth from its mixer.
type Synth interface {
	param.Parametrized
	Init(frameTime float64)
	Sample() sample.Sound
}

// Efx transforms one frame per tick. Returning a Done sound silences the
// whole mixer it belongs to for that tick.
type Efx interface {
	param.Parametrized
	Init(frameTime float64)
	Sample(in sample.Value) sample.Sound
}
