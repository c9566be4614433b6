package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Written on first run, converted to YAML for a YAML config path.
const defaultConfig = `
{
	"maxVoices": 50,
	"watchConfig": true,
	"buses": {
		"pitch": 220,
		"pan": 0.5
	},
	"mixers": [
		{ "id": "voices", "parent": "root", "efx": [ { "type": "volume", "volume": 0.3 } ] },
		{ "id": "strings", "parent": "voices", "efx": [ { "type": "pan", "pan": "pan" } ] }
	],
	"voices": {
		"geiger": {
			"osc": { "type": "noise" },
			"env": {
				"attackSeconds": 1,
				"attackValue": 1,
				"decaySeconds": 0,
				"decayValue": 1,
				"releaseSeconds": 1
			}
		},
		"phone": {
			"osc": { "type": "sine", "frequency": 425 },
			"env": {
				"attackSeconds": 0.5,
				"attackValue": 1,
				"decaySeconds": 0,
				"decayValue": 1,
				"releaseSeconds": 1
			}
		},
		"pluck": {
			"mixer": "strings",
			"osc": { "type": "string", "base_freq": "pitch", "feedback_gain": 0.996 }
		}
	},
	"triggers": [
		{ "regex": "hey", "voice": "geiger" },
		{ "regex": "ho", "voice": "phone" },
		{ "regex": "pluck", "voice": "pluck" }
	]
}
`

type AdrConfig struct {
	AttackSeconds  float64 `json:"attackSeconds" yaml:"attackSeconds"`
	AttackValue    float64 `json:"attackValue" yaml:"attackValue"`
	DecaySeconds   float64 `json:"decaySeconds" yaml:"decaySeconds"`
	DecayValue     float64 `json:"decayValue" yaml:"decayValue"`
	ReleaseSeconds float64 `json:"releaseSeconds" yaml:"releaseSeconds"`
}

type StaticConfig struct {
	MaxVoices   int  `json:"maxVoices" yaml:"maxVoices"`
	WatchConfig bool `json:"watchConfig" yaml:"watchConfig"`
}

type Trigger struct {
	Regex string `json:"regex" yaml:"regex"`
	Voice string `json:"voice" yaml:"voice"`
}

// UnitConfig describes a synth or effect: its "type" plus parameter
// overrides, each a number or a formula.
type UnitConfig map[string]interface{}

type MixerConfig struct {
	ID     string       `json:"id" yaml:"id"`
	Parent string       `json:"parent" yaml:"parent"`
	Efx    []UnitConfig `json:"efx" yaml:"efx"`
}

type VoiceConfig struct {
	// Mixer is the parent of the voice mixers, root if empty.
	Mixer      string       `json:"mixer" yaml:"mixer"`
	Oscillator UnitConfig   `json:"osc" yaml:"osc"`
	Efx        []UnitConfig `json:"efx" yaml:"efx"`
	// Envelope goes last in the chain and ends the voice.
	Envelope *AdrConfig `json:"env" yaml:"env"`
}

type DynamicConfig struct {
	Mixers   []MixerConfig          `json:"mixers" yaml:"mixers"`
	Buses    map[string]float64     `json:"buses" yaml:"buses"`
	Triggers []Trigger              `json:"triggers" yaml:"triggers"`
	Voices   map[string]VoiceConfig `json:"voices" yaml:"voices"`
	// Play lists voices started once the patch is applied.
	Play []string `json:"play" yaml:"play"`
}

type Config struct {
	StaticConfig  `yaml:",inline"`
	DynamicConfig `yaml:",inline"`
}

func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = writeDefaultConfig(p)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	var c Config
	if isYAML(p) {
		err = yaml.Unmarshal(data, &c)
	} else {
		err = json.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	return &c, nil
}

func isYAML(p string) bool {
	ext := filepath.Ext(p)
	return ext == ".yaml" || ext == ".yml"
}

func writeDefaultConfig(p string) error {
	data := []byte(defaultConfig)
	if isYAML(p) {
		var c Config
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		var err error
		if data, err = yaml.Marshal(&c); err != nil {
			return err
		}
	}
	return os.WriteFile(p, data, 0644)
}
