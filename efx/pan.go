package efx

import (
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

// PanParams hold the pan position in [0, 1]: the share of the signal sent
// to the right channel, the rest going left.
type PanParams struct {
	Pan param.Value
}

func DefaultPanParams() PanParams {
	return PanParams{Pan: param.Default(0.5)}
}

// Pan turns its input into a stereo frame.
type Pan struct {
	params PanParams
}

func NewPan(p PanParams) *Pan { return &Pan{params: p} }

func (p *Pan) Params() param.Set {
	return param.Set{{Name: "pan", Value: &p.params.Pan}}
}

func (p *Pan) Init(float64) {}

func (p *Pan) Sample(in sample.Value) sample.Sound {
	right := p.params.Pan.Get()
	left := 1 - right
	if in.IsStereo() {
		r, l := in.Channels()
		return sample.StereoSound(r*right, l*left)
	}
	x := in.Mono()
	return sample.StereoSound(x*right, x*left)
}
