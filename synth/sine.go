// Package synth holds the unit generators.
package synth

import (
	"math"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// SineParams are the live parameters of a Sine.
type SineParams struct {
	Frequency param.Value
	Amplitude param.Value
}

// DefaultSineParams is a 440 Hz sine at full scale.
func DefaultSineParams() SineParams {
	return SineParams{
		Frequency: param.Default(440),
		Amplitude: param.Default(1),
	}
}

// Sine is a sine oscillator. Its phase is the elapsed time, so frequency
// changes are not phase continuous.
type Sine struct {
	params    SineParams
	time      float64
	frameTime float64
}

func NewSine(p SineParams) *Sine {
	return &Sine{params: p}
}

func (s *Sine) Params() param.Set {
	return param.Set{
		{Name: "frequency", Value: &s.params.Frequency},
		{Name: "amplitude", Value: &s.params.Amplitude},
	}
}

func (s *Sine) Init(frameTime float64) { s.frameTime = frameTime }

func (s *Sine) Sample() sample.Sound {
	x := s.params.Amplitude.Get() * math.Sin(2*math.Pi*s.params.Frequency.Get()*s.time)
	s.time += s.frameTime
	return sample.MonoSound(x)
}
