package efx

import (
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// EnvelopeParams describe an attack/decay/release envelope. Times are in
// seconds. They are read once, when the envelope is inserted.
type EnvelopeParams struct {
	AttackSeconds  param.Value
	AttackValue    param.Value
	DecaySeconds   param.Value
	DecayValue     param.Value
	ReleaseSeconds param.Value
}

func DefaultEnvelopeParams() EnvelopeParams {
	return EnvelopeParams{
		AttackSeconds:  param.Default(0.01),
		AttackValue:    param.Default(1),
		DecaySeconds:   param.Default(0),
		DecayValue:     param.Default(1),
		ReleaseSeconds: param.Default(1),
	}
}

type point struct {
	x, y float64
}

type line struct {
	start, end point
}

func (l line) slope() float64 {
	if l.end.x == l.start.x {
		return 0
	}
	return (l.end.y - l.start.y) / (l.end.x - l.start.x)
}

func (l line) at(x float64) float64 {
	return l.start.y + l.slope()*(x-l.start.x)
}

// Envelope scales its input along attack, decay and release ramps and
// then reports Done, which removes the mixer it gates.
type Envelope struct {
	params                 EnvelopeParams
	attack, decay, release line
	frameTime, time        float64
}

func NewEnvelope(p EnvelopeParams) *Envelope { return &Envelope{params: p} }

func (e *Envelope) Params() param.Set {
	return param.Set{
		{Name: "attack_seconds", Value: &e.params.AttackSeconds},
		{Name: "attack_value", Value: &e.params.AttackValue},
		{Name: "decay_seconds", Value: &e.params.DecaySeconds},
		{Name: "decay_value", Value: &e.params.DecayValue},
		{Name: "release_seconds", Value: &e.params.ReleaseSeconds},
	}
}

func (e *Envelope) Init(frameTime float64) {
	e.frameTime = frameTime
	e.attack = line{
		point{0, 0},
		point{e.params.AttackSeconds.Get(), e.params.AttackValue.Get()},
	}
	e.decay = line{
		e.attack.end,
		point{e.attack.end.x + e.params.DecaySeconds.Get(), e.params.DecayValue.Get()},
	}
	e.release = line{
		e.decay.end,
		point{e.decay.end.x + e.params.ReleaseSeconds.Get(), 0},
	}
}

// Gain returns the envelope level at t seconds and whether it is over.
func (e *Envelope) Gain(t float64) (float64, bool) {
	switch {
	case t < e.attack.end.x:
		return e.attack.at(t), false
	case t < e.decay.end.x:
		return e.decay.at(t), false
	case t < e.release.end.x:
		return e.release.at(t), false
	}
	return 0, true
}

func (e *Envelope) Sample(in sample.Value) sample.Sound {
	g, done := e.Gain(e.time)
	if done {
		return sample.Sound{}
	}
	e.time += e.frameTime
	return sample.Of(in.Scale(g))
}
