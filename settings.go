package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"git.disy.net/goetz/moomoot/sink"
)

// Settings are the process level knobs, read from the environment once at
// startup. The patch itself lives in the config file.
type Settings struct {
	SampleRate int `env:"MOOMOOT_SAMPLE_RATE" envDefault:"44100"`
	Channels   int `env:"MOOMOOT_CHANNELS" envDefault:"2"`
	// FramesPerBuffer lets the audio backend decide when zero.
	FramesPerBuffer int `env:"MOOMOOT_FRAMES_PER_BUFFER" envDefault:"0"`
	// Backend is one of portaudio, oto or wav.
	Backend     string        `env:"MOOMOOT_BACKEND" envDefault:"portaudio"`
	WavPath     string        `env:"MOOMOOT_WAV_PATH" envDefault:"moomoot.wav"`
	WavDuration time.Duration `env:"MOOMOOT_WAV_DURATION" envDefault:"10s"`
	LogLevel    string        `env:"MOOMOOT_LOG_LEVEL" envDefault:"info"`
	// LogFormat is text or json.
	LogFormat string `env:"MOOMOOT_LOG_FORMAT" envDefault:"text"`
}

// LoadSettings reads the settings from the environment. Variables from
// envFiles are added first without overriding the environment; without
// envFiles a .env file in the working directory is used if present.
func LoadSettings(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		// the default .env file is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Settings{}, fmt.Errorf("can't load env file: %w", err)
	}
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("can't parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, was: %d", s.SampleRate)
	}
	if s.Channels < 1 {
		return fmt.Errorf("need at least one channel, was: %d", s.Channels)
	}
	switch s.Backend {
	case "portaudio", "oto", "wav":
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", s.LogFormat)
	}
	if _, err := s.level(); err != nil {
		return err
	}
	return nil
}

func (s Settings) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("bad log level: %w", err)
	}
	return l, nil
}

// Logger returns the logger described by s, writing to w.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	// validated by LoadSettings
	level, _ := s.level()
	opts := &slog.HandlerOptions{Level: level}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Sink returns the configured backend pulling from src.
func (s Settings) Sink(src sink.Source) sink.Sink {
	switch s.Backend {
	case "oto":
		return sink.Oto{Source: src, SampleRate: s.SampleRate, Channels: s.Channels}
	case "wav":
		return sink.WAV{
			Source:     src,
			Path:       s.WavPath,
			SampleRate: s.SampleRate,
			Channels:   s.Channels,
			Duration:   s.WavDuration,
			Block:      s.FramesPerBuffer,
		}
	default:
		return sink.PortAudio{
			Source:          src,
			SampleRate:      float64(s.SampleRate),
			Channels:        s.Channels,
			FramesPerBuffer: s.FramesPerBuffer,
		}
	}
}
