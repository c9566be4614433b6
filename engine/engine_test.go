package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.disy.net/goetz/moomoot/efx"
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/sample"
	"git.disy.net/goetz/moomoot/tree"
)

type level struct {
	value param.Value
}

func newLevel(v float64) *level { return &level{value: param.Default(v)} }

func (l *level) Params() param.Set    { return param.Set{{Name: "level", Value: &l.value}} }
func (l *level) Init(float64)         {}
func (l *level) Sample() sample.Sound { return sample.MonoSound(l.value.Get()) }

type once struct {
	param.NoParams
	done bool
}

func (o *once) Init(float64) {}

func (o *once) Sample() sample.Sound {
	if o.done {
		return sample.Sound{}
	}
	o.done = true
	return sample.MonoSound(1)
}

func buffers(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	return out
}

func TestProcessAppliesCommandsFirst(t *testing.T) {
	e := New(44100)
	e.AddMixer(tree.RootID, "m")
	e.AddSynth("m", newLevel(0.25))
	e.AddSynth("m", newLevel(0.25))

	out := buffers(1, 4)
	e.Process(out)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, out[0])

	s := e.Stats()
	assert.Equal(t, uint64(1), s.Ticks)
	assert.Equal(t, uint64(4), s.Frames)
	assert.Equal(t, uint64(3), s.Commands)
	assert.Equal(t, 2, s.Mixers)
	assert.Equal(t, 2, s.Synths)
}

func TestCommandsApplyInOrder(t *testing.T) {
	e := New(44100)
	e.DeclareBus("x", 0)
	e.AddSynth(tree.RootID, newLevel(0), param.Assignment{Name: "level", Value: param.Bus("x")})
	e.SetBusValue("x", 0.5)
	e.SetBusValue("x", 0.75)

	out := buffers(1, 1)
	e.Process(out)
	assert.Equal(t, float32(0.75), out[0][0])

	e.SetBusValue("x", 0.125)
	e.Process(out)
	assert.Equal(t, float32(0.125), out[0][0])
}

func TestStereoOutput(t *testing.T) {
	e := New(44100)
	e.AddMixer(tree.RootID, "m")
	e.AddSynth("m", newLevel(1))
	e.AddEfx("m", efx.NewPan(efx.PanParams{Pan: param.Constant(0.25)}))

	out := buffers(3, 2)
	out[2][0], out[2][1] = 9, 9
	e.Process(out)
	assert.Equal(t, []float32{0.75, 0.75}, out[0], "left")
	assert.Equal(t, []float32{0.25, 0.25}, out[1], "right")
	assert.Equal(t, []float32{0, 0}, out[2])

	mono := buffers(1, 1)
	e.Process(mono)
	assert.Equal(t, float32(0.5), mono[0][0])
}

func TestSilenceIsZero(t *testing.T) {
	e := New(44100)
	out := buffers(2, 3)
	out[0][1] = 1
	e.Process(out)
	assert.Equal(t, []float32{0, 0, 0}, out[0])
	assert.Equal(t, []float32{0, 0, 0}, out[1])
}

func TestFailedCommandIsDropped(t *testing.T) {
	e := New(44100)
	e.AddSynth("ghost", newLevel(1))
	e.AddSynth(tree.RootID, newLevel(1), param.Assignment{Name: "pitch", Value: param.Constant(1)})
	e.SetBusValue("nowhere", 1)
	e.AddSynth(tree.RootID, newLevel(0.5))

	out := buffers(1, 1)
	e.Process(out)
	assert.Equal(t, float32(0.5), out[0][0])

	var errs []error
	for range 3 {
		errs = append(errs, <-e.Errors())
	}
	var ce *CommandError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, AddSynth, ce.Kind)
	assert.Equal(t, "ghost", ce.Target)
	assert.ErrorIs(t, errs[0], tree.ErrNoSuchMixer{ID: "ghost"})
	assert.ErrorIs(t, errs[1], param.ErrNoSuchParam{Name: "pitch"})
	assert.EqualError(t, errs[2], `engine: set-bus-value "nowhere": pbus: no such channel "nowhere"`)

	s := e.Stats()
	assert.Equal(t, uint64(3), s.CommandErrors)
	assert.Equal(t, uint64(1), s.Commands)
	assert.Equal(t, 1, s.Synths)
}

func TestErrorOverflowIsCounted(t *testing.T) {
	e := New(44100, WithErrorBuffer(1))
	e.AddMixer("ghost", "a")
	e.AddMixer("ghost", "b")
	e.Process(nil)

	require.Len(t, e.Errors(), 1)
	s := e.Stats()
	assert.Equal(t, uint64(2), s.CommandErrors)
	assert.Equal(t, uint64(1), s.DroppedErrors)
	assert.Equal(t, uint64(1), s.Ticks)
	assert.Zero(t, s.Frames)
}

func TestTransientVoiceIsCounted(t *testing.T) {
	e := New(44100)
	id := e.AddTransientMixer(tree.RootID)
	e.AddSynth(id, &once{})

	out := buffers(1, 1)
	e.Process(out)
	assert.Equal(t, float32(1), out[0][0])
	assert.Equal(t, 1, e.Stats().Voices)

	e.Process(out)
	assert.Equal(t, float32(0), out[0][0])
	s := e.Stats()
	assert.Zero(t, s.Voices)
	assert.Equal(t, 1, s.Mixers)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(48000, WithLogger(l))
	e.AddMixer(tree.RootID, "m")

	assert.Contains(t, buf.String(), "kind=add-mixer")
	assert.Contains(t, buf.String(), "parent=root")
	assert.Equal(t, 48000.0, e.SampleRate())
}

func TestVoiceIsAppliedWhole(t *testing.T) {
	e := New(44100)
	out := buffers(1, 4)

	// the audio side runs between every control call
	e.Process(out)
	first := e.AddVoice(tree.RootID,
		[]tree.SynthPart{{Synth: newLevel(1)}},
		[]tree.EfxPart{{Efx: efx.NewVolume(efx.DefaultVolumeParams()), Params: []param.Assignment{{Name: "volume", Value: param.Constant(0.5)}}}},
	)
	e.Process(out)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, out[0])

	second := e.AddVoice(tree.RootID, []tree.SynthPart{{Synth: newLevel(0.25)}}, nil)
	e.Process(out)
	assert.Equal(t, []float32{0.75, 0.75, 0.75, 0.75}, out[0])
	assert.NotEqual(t, first, second)

	s := e.Stats()
	assert.Equal(t, 2, s.Voices)
	assert.Equal(t, 2, s.Synths)
	assert.Equal(t, 1, s.Effects)
	assert.Zero(t, s.CommandErrors)
	assert.Empty(t, e.Errors())
}

func TestFailedVoiceAppliesNothing(t *testing.T) {
	e := New(44100)
	e.AddVoice(tree.RootID,
		[]tree.SynthPart{{Synth: newLevel(1)}},
		[]tree.EfxPart{{Efx: efx.NewPan(efx.DefaultPanParams()), Params: []param.Assignment{{Name: "width", Value: param.Constant(1)}}}},
	)
	e.AddVoice("ghost", []tree.SynthPart{{Synth: newLevel(1)}}, nil)

	out := buffers(1, 2)
	e.Process(out)
	assert.Equal(t, []float32{0, 0}, out[0])

	var ce *CommandError
	require.ErrorAs(t, <-e.Errors(), &ce)
	assert.Equal(t, AddVoice, ce.Kind)
	assert.ErrorIs(t, ce, param.ErrNoSuchParam{Name: "width"})
	assert.ErrorIs(t, <-e.Errors(), tree.ErrNoSuchMixer{ID: "ghost"})

	s := e.Stats()
	assert.Equal(t, Stats{Ticks: 1, Frames: 2, CommandErrors: 2, Mixers: 1}, s)
}
