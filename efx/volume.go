// Package efx holds the effects a mixer chains over its output.
package efx

import (
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
)

type VolumeParams struct {
	Volume param.Value
}

func DefaultVolumeParams() VolumeParams {
	return VolumeParams{Volume: param.Default(1)}
}

// Volume scales every channel.
type Volume struct {
	params VolumeParams
}

func NewVolume(p VolumeParams) *Volume { return &Volume{params: p} }

func (v *Volume) Params() param.Set {
	return param.Set{{Name: "volume", Value: &v.params.Volume}}
}

func (v *Volume) Init(float64) {}

func (v *Volume) Sample(in sample.Value) sample.Sound {
	return sample.Of(in.Scale(v.params.Volume.Get()))
}
