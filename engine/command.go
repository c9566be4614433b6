package engine

import (
	"fmt"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/tree"
	"git.disy.net/goetz/moomoot/unit"
)

// Kind tells which tree mutation a Command asks for.
type Kind uint8

const (
	AddMixer Kind = iota + 1
	AddSynth
	AddEfx
	SetBusValue
	DeclareBus
	// AddVoice attaches a mixer together with its synths and effects.
	AddVoice
)

func (k Kind) String() string {
	switch k {
	case AddMixer:
		return "add-mixer"
	case AddSynth:
		return "add-synth"
	case AddEfx:
		return "add-efx"
	case SetBusValue:
		return "set-bus-value"
	case DeclareBus:
		return "declare-bus"
	case AddVoice:
		return "add-voice"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is one tree mutation handed over to the audio goroutine. The
// units and mixers it carries are built by the sender and owned by the
// tree once applied.
type Command struct {
	Kind    Kind
	Parent  string
	Mixer   *tree.Mixer
	Synth   unit.Synth
	Efx     unit.Efx
	Params  []param.Assignment
	Channel string
	Value   float64
	// Synths and Effects fill Mixer for AddVoice, Effects for AddMixer.
	Synths  []tree.SynthPart
	Effects []tree.EfxPart
}

// CommandError reports a command the audio goroutine could not apply. The
// command was dropped as a whole.
type CommandError struct {
	Kind Kind
	// Target is the parent mixer or the bus channel.
	Target string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("engine: %s %q: %v", e.Kind, e.Target, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func (c Command) apply(t *tree.Tree) error {
	var err error
	target := c.Parent
	switch c.Kind {
	case AddMixer:
		err = t.AttachWith(c.Parent, c.Mixer, nil, c.Effects)
	case AddSynth:
		err = t.AddSynth(c.Parent, c.Synth, c.Params...)
	case AddEfx:
		err = t.AddEfx(c.Parent, c.Efx, c.Params...)
	case SetBusValue:
		target = c.Channel
		err = t.SetBusValue(c.Channel, c.Value)
	case DeclareBus:
		t.DeclareBus(c.Channel, c.Value)
	case AddVoice:
		err = t.AttachWith(c.Parent, c.Mixer, c.Synths, c.Effects)
	default:
		err = fmt.Errorf("unknown command kind %d", c.Kind)
	}
	if err != nil {
		return &CommandError{Kind: c.Kind, Target: target, Err: err}
	}
	return nil
}
