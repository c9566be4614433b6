package main

import (
	"fmt"
	"slices"
	"sync"

	"git.disy.net/goetz/moomoot/efx"
	"git.disy.net/goetz/moomoot/engine"
	"git.disy.net/goetz/moomoot/formula"
	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/synth"
	"git.disy.net/goetz/moomoot/tree"
	"git.disy.net/goetz/moomoot/unit"
)

// paramValue turns a config value into a parameter. Numbers are constants,
// strings are formulas over bus channels.
func paramValue(v interface{}) (param.Value, error) {
	switch v := v.(type) {
	case float64:
		return param.Constant(v), nil
	case int:
		return param.Constant(float64(v)), nil
	case string:
		return formula.Parse(v)
	}
	return param.Value{}, fmt.Errorf("parameter must be number or formula, was: %T", v)
}

func (u UnitConfig) kind() (string, error) {
	tval, ok := u["type"]
	if !ok {
		return "", fmt.Errorf("unit config has no type")
	}
	t, ok := tval.(string)
	if !ok {
		return "", fmt.Errorf("type must be string value")
	}
	return t, nil
}

// assignments returns the overrides of u in name order, checked against
// the parameters of p.
func (u UnitConfig) assignments(p param.Parametrized) ([]param.Assignment, error) {
	names := make([]string, 0, len(u))
	for name := range u {
		if name != "type" {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var as []param.Assignment
	for _, name := range names {
		v, err := paramValue(u[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		as = append(as, param.Assignment{Name: name, Value: v})
	}
	if err := p.Params().Check(as); err != nil {
		return nil, err
	}
	return as, nil
}

func (u UnitConfig) makeSynth() (unit.Synth, []param.Assignment, error) {
	t, err := u.kind()
	if err != nil {
		return nil, nil, err
	}
	var s unit.Synth
	switch t {
	case "noise":
		s = synth.NewWhiteNoise()
	case "sine":
		s = synth.NewSine(synth.DefaultSineParams())
	case "string":
		s = synth.NewKarplusStrong(synth.DefaultKarplusStrongParams())
	default:
		return nil, nil, fmt.Errorf("unknown type: %s", t)
	}
	as, err := u.assignments(s)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", t, err)
	}
	return s, as, nil
}

func (u UnitConfig) makeEfx() (tree.EfxPart, error) {
	t, err := u.kind()
	if err != nil {
		return tree.EfxPart{}, err
	}
	var e unit.Efx
	switch t {
	case "volume":
		e = efx.NewVolume(efx.DefaultVolumeParams())
	case "pan":
		e = efx.NewPan(efx.DefaultPanParams())
	default:
		return tree.EfxPart{}, fmt.Errorf("unknown type: %s", t)
	}
	as, err := u.assignments(e)
	if err != nil {
		return tree.EfxPart{}, fmt.Errorf("%s: %w", t, err)
	}
	return tree.EfxPart{Efx: e, Params: as}, nil
}

func makeEffects(configs []UnitConfig) ([]tree.EfxPart, error) {
	effects := make([]tree.EfxPart, 0, len(configs))
	for i, c := range configs {
		e, err := c.makeEfx()
		if err != nil {
			return nil, fmt.Errorf("efx %d: %w", i, err)
		}
		effects = append(effects, e)
	}
	return effects, nil
}

func (c AdrConfig) envelope() *efx.Envelope {
	return efx.NewEnvelope(efx.EnvelopeParams{
		AttackSeconds:  param.Constant(c.AttackSeconds),
		AttackValue:    param.Constant(c.AttackValue),
		DecaySeconds:   param.Constant(c.DecaySeconds),
		DecayValue:     param.Constant(c.DecayValue),
		ReleaseSeconds: param.Constant(c.ReleaseSeconds),
	})
}

// voice is one note, built on the control side and handed to the engine
// as a transient mixer.
type voice struct {
	mixer string
	synth tree.SynthPart
	efx   []tree.EfxPart
}

func (c VoiceConfig) makeVoice() (*voice, error) {
	s, as, err := c.Oscillator.makeSynth()
	if err != nil {
		return nil, err
	}
	effects, err := makeEffects(c.Efx)
	if err != nil {
		return nil, err
	}
	if c.Envelope != nil {
		effects = append(effects, tree.EfxPart{Efx: c.Envelope.envelope()})
	}
	mixer := c.Mixer
	if mixer == "" {
		mixer = tree.RootID
	}
	return &voice{mixer: mixer, synth: tree.SynthPart{Synth: s, Params: as}, efx: effects}, nil
}

// play queues the voice and returns the id of its mixer.
func (v *voice) play(e *engine.Engine) string {
	return e.AddVoice(v.mixer, []tree.SynthPart{v.synth}, v.efx)
}

type voiceConfigs struct {
	sync.Mutex
	specs map[string]VoiceConfig
}

func (c *voiceConfigs) makeVoice(name string) (*voice, error) {
	c.Lock()
	defer c.Unlock()

	spec, ok := c.specs[name]
	if !ok {
		return nil, fmt.Errorf("can't find spec for name: %s", name)
	}
	voice, err := spec.makeVoice()
	if err != nil {
		return nil, fmt.Errorf("can't create voice: %s: %w", name, err)
	}
	return voice, nil
}

// validateVoices builds every voice of configs once.
func validateVoices(configs map[string]VoiceConfig) error {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := configs[name].makeVoice(); err != nil {
			return fmt.Errorf("voice %s: %w", name, err)
		}
	}
	return nil
}

func (c *voiceConfigs) set(configs map[string]VoiceConfig) {
	c.Lock()
	defer c.Unlock()
	c.specs = configs
}
