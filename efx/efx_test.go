package efx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/pbus"
	"git.disy.net/goetz/moomoot/sample"
)

func TestVolume(t *testing.T) {
	v := NewVolume(VolumeParams{Volume: param.Constant(0.5)})
	v.Init(1)

	assert.Equal(t, sample.MonoSound(0.25), v.Sample(sample.Mono(0.5)))
	assert.Equal(t, sample.StereoSound(1, 2), v.Sample(sample.Stereo(2, 4)))
	assert.Equal(t, 1.0, NewVolume(DefaultVolumeParams()).params.Volume.Get())
}

func TestPan(t *testing.T) {
	tests := []struct {
		name string
		pan  float64
		in   sample.Value
		want sample.Sound
	}{
		{"mono center", 0.5, sample.Mono(1), sample.StereoSound(0.5, 0.5)},
		{"mono zero", 0, sample.Mono(1), sample.StereoSound(0, 1)},
		{"mono one", 1, sample.Mono(1), sample.StereoSound(1, 0)},
		{"stereo", 0.25, sample.Stereo(4, 8), sample.StereoSound(1, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPan(PanParams{Pan: param.Constant(tt.pan)})
			p.Init(1)
			assert.Equal(t, tt.want, p.Sample(tt.in))
		})
	}
}

func TestPanOnBus(t *testing.T) {
	p := NewPan(PanParams{Pan: param.Bus("noize_pan")})
	buses := pbus.NewSystem()
	p.Params().Connect(buses)

	require.NoError(t, buses.Publish("noize_pan", 1))
	assert.Equal(t, sample.StereoSound(2, 0), p.Sample(sample.Mono(2)))
}

func TestEnvelope(t *testing.T) {
	e := NewEnvelope(EnvelopeParams{
		AttackSeconds:  param.Constant(2),
		AttackValue:    param.Constant(1),
		DecaySeconds:   param.Constant(2),
		DecayValue:     param.Constant(0.5),
		ReleaseSeconds: param.Constant(1),
	})
	e.Init(1)

	// one frame per second: 0, 0.5 attack; 1, 0.75 decay; 0.5 release
	want := []float64{0, 0.5, 1, 0.75, 0.5}
	for i, w := range want {
		got := e.Sample(sample.Mono(2))
		require.True(t, got.IsFrame(), "frame %d", i)
		assert.InDelta(t, 2*w, got.Value.Mono(), 1e-12, "frame %d", i)
	}
	assert.True(t, e.Sample(sample.Mono(2)).IsDone())
}

func TestEnvelopeZeroLengthSegments(t *testing.T) {
	p := DefaultEnvelopeParams()
	p.AttackSeconds = param.Constant(0)
	p.ReleaseSeconds = param.Constant(2)
	e := NewEnvelope(p)
	e.Init(1)

	g, done := e.Gain(0)
	assert.False(t, done)
	assert.Equal(t, 1.0, g)
	_, done = e.Gain(2)
	assert.True(t, done)
}
