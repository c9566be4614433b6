package tree

import (
	"git.disy.net/goetz/moomoot/sample"
	"git.disy.net/goetz/moomoot/unit"
)

// Mixer sums its synths and sub-mixers and runs the result through its
// effect chain. A transient mixer reports Done once nothing underneath it
// contributes, which removes it from its parent.
type Mixer struct {
	id        string
	transient bool
	synths    []unit.Synth
	mixers    []*Mixer
	effects   []unit.Efx
}

// NewMixer returns an empty persistent mixer.
func NewMixer(id string) *Mixer { return &Mixer{id: id} }

// NewTransientMixer returns an empty mixer that is pruned once its subtree
// is exhausted.
func NewTransientMixer(id string) *Mixer { return &Mixer{id: id, transient: true} }

func (m *Mixer) ID() string      { return m.id }
func (m *Mixer) Transient() bool { return m.transient }

type sampler interface {
	Sample() sample.Sound
}

// sampleAndPrune samples every element of xs, drops those reporting Done
// and returns the kept elements along with the sum of their sounds. The
// backing array of xs is reused.
func sampleAndPrune[S sampler](xs []S) ([]S, sample.Sound) {
	var sum sample.Sound
	kept := xs[:0]
	for _, x := range xs {
		s := x.Sample()
		if s.IsDone() {
			continue
		}
		kept = append(kept, x)
		sum = sum.Add(s)
	}
	clear(xs[len(kept):])
	return kept, sum
}

// Sample produces one tick of the mixer output.
func (m *Mixer) Sample() sample.Sound {
	var synths, mixers sample.Sound
	m.synths, synths = sampleAndPrune(m.synths)
	m.mixers, mixers = sampleAndPrune(m.mixers)

	out := synths.Add(mixers)
	if !out.IsFrame() {
		if m.transient {
			return sample.Sound{}
		}
		return sample.SilenceSound
	}

	v := out.Value
	for _, e := range m.effects {
		s := e.Sample(v)
		switch s.State {
		case sample.Done:
			// the whole tick is dropped, not only the tail of the chain
			return sample.Sound{}
		case sample.Silence:
			// muted for this tick, the mixer stays
			return sample.SilenceSound
		}
		v = s.Value
	}
	return sample.Of(v)
}

func (m *Mixer) find(id string) *Mixer {
	if m.id == id {
		return m
	}
	for _, sub := range m.mixers {
		if found := sub.find(id); found != nil {
			return found
		}
	}
	return nil
}

// Census counts the nodes of a subtree.
type Census struct {
	Mixers     int
	Transients int
	Synths     int
	Effects    int
}

func (m *Mixer) census(c *Census) {
	c.Mixers++
	if m.transient {
		c.Transients++
	}
	c.Synths += len(m.synths)
	c.Effects += len(m.effects)
	for _, sub := range m.mixers {
		sub.census(c)
	}
}
