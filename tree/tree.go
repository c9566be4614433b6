// Package tree holds the mixer tree sampled by the audio thread.
//
// A Tree is not safe for concurrent use. Every mutation is expected to run
// on the goroutine that samples it, usually by way of an engine command.
package tree

import (
	"fmt"

	"github.com/google/uuid"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/pbus"
	"git.disy.net/goetz/moomoot/sample"
	"git.disy.net/goetz/moomoot/unit"
)

// RootID addresses the root mixer of every tree.
const RootID = "root"

// ErrNoSuchMixer is returned by mutations addressing an unknown mixer.
type ErrNoSuchMixer struct {
	ID string
}

func (e ErrNoSuchMixer) Error() string {
	return fmt.Sprintf("tree: no such mixer %q", e.ID)
}

type Tree struct {
	root      *Mixer
	buses     *pbus.System
	frameTime float64
}

// New returns a tree holding only the persistent root mixer.
func New(sampleRate float64) *Tree {
	return &Tree{
		root:      NewMixer(RootID),
		buses:     pbus.NewSystem(),
		frameTime: 1 / sampleRate,
	}
}

// Buses returns the bus system parameters are connected to.
func (t *Tree) Buses() *pbus.System { return t.buses }

// FrameTime returns the duration of one frame in seconds.
func (t *Tree) FrameTime() float64 { return t.frameTime }

// find looks id up depth first. The first match wins.
func (t *Tree) find(id string) (*Mixer, error) {
	if m := t.root.find(id); m != nil {
		return m, nil
	}
	return nil, ErrNoSuchMixer{ID: id}
}

// Has reports whether a mixer named id is in the tree.
func (t *Tree) Has(id string) bool {
	_, err := t.find(id)
	return err == nil
}

// AddMixer inserts a new persistent mixer under parent.
func (t *Tree) AddMixer(parent, id string) error {
	return t.Attach(parent, NewMixer(id))
}

// AddTransientMixer inserts a transient mixer with a fresh id under parent
// and returns the id.
func (t *Tree) AddTransientMixer(parent string) (string, error) {
	m := NewTransientMixer(uuid.NewString())
	if err := t.Attach(parent, m); err != nil {
		return "", err
	}
	return m.id, nil
}

// Attach inserts an already built mixer under parent. Ids are not checked
// for uniqueness.
func (t *Tree) Attach(parent string, m *Mixer) error {
	p, err := t.find(parent)
	if err != nil {
		return err
	}
	p.mixers = append(p.mixers, m)
	return nil
}

// AddSynth applies overrides to s, connects its parameters and appends it
// to the mixer parent. Nothing happens if any step fails.
func (t *Tree) AddSynth(parent string, s unit.Synth, overrides ...param.Assignment) error {
	p, err := t.find(parent)
	if err != nil {
		return err
	}
	if err := t.prepare(s, overrides); err != nil {
		return err
	}
	s.Init(t.frameTime)
	p.synths = append(p.synths, s)
	return nil
}

// AddEfx is AddSynth for effects. The effect goes last in the chain.
func (t *Tree) AddEfx(parent string, e unit.Efx, overrides ...param.Assignment) error {
	p, err := t.find(parent)
	if err != nil {
		return err
	}
	if err := t.prepare(e, overrides); err != nil {
		return err
	}
	e.Init(t.frameTime)
	p.effects = append(p.effects, e)
	return nil
}

// SynthPart is a synth waiting for insertion along with its overrides.
type SynthPart struct {
	Synth  unit.Synth
	Params []param.Assignment
}

// EfxPart is an effect waiting for insertion along with its overrides.
type EfxPart struct {
	Efx    unit.Efx
	Params []param.Assignment
}

// AttachWith fills m with synths and effects and inserts it under parent
// in one step. Every override is checked before anything gets connected,
// so on error neither the tree nor the buses change.
func (t *Tree) AttachWith(parent string, m *Mixer, synths []SynthPart, effects []EfxPart) error {
	p, err := t.find(parent)
	if err != nil {
		return err
	}
	for _, s := range synths {
		if err := s.Synth.Params().Check(s.Params); err != nil {
			return err
		}
	}
	for _, e := range effects {
		if err := e.Efx.Params().Check(e.Params); err != nil {
			return err
		}
	}
	for _, s := range synths {
		// checked above
		_ = t.prepare(s.Synth, s.Params)
		s.Synth.Init(t.frameTime)
		m.synths = append(m.synths, s.Synth)
	}
	for _, e := range effects {
		_ = t.prepare(e.Efx, e.Params)
		e.Efx.Init(t.frameTime)
		m.effects = append(m.effects, e.Efx)
	}
	p.mixers = append(p.mixers, m)
	return nil
}

func (t *Tree) prepare(u param.Parametrized, overrides []param.Assignment) error {
	params := u.Params()
	if err := params.Assign(overrides); err != nil {
		return err
	}
	params.Connect(t.buses)
	return nil
}

// SetBusValue publishes v on channel.
func (t *Tree) SetBusValue(channel string, v float64) error {
	return t.buses.Publish(channel, v)
}

// DeclareBus creates channel at initial unless it exists already.
func (t *Tree) DeclareBus(channel string, initial float64) {
	t.buses.Declare(channel, initial)
}

// Census counts the nodes of the whole tree, root included.
func (t *Tree) Census() Census {
	var c Census
	t.root.census(&c)
	return c
}

// MixerCount returns the number of mixers, root included.
func (t *Tree) MixerCount() int { return t.Census().Mixers }

// Sample produces one frame. The root is never pruned.
func (t *Tree) Sample() sample.Sound { return t.root.Sample() }
