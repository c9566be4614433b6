// Package sink plays or records the frames rendered by a Source.
package sink

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by device sinks in builds without audio
// support.
var ErrUnavailable = errors.New("sink: audio output not available in this build")

// Source renders one block of non-interleaved frames, one slice per
// channel. *engine.Engine is a Source.
type Source interface {
	Process(out [][]float32)
}

// Sink pulls blocks from its Source until ctx is done or, for finite
// sinks, until everything is rendered.
type Sink interface {
	Run(ctx context.Context) error
}

// PortAudio plays on the default PortAudio output device.
type PortAudio struct {
	Source     Source
	SampleRate float64
	Channels   int
	// FramesPerBuffer lets PortAudio choose when zero.
	FramesPerBuffer int
}

// Oto plays through the platform audio API of the oto library.
type Oto struct {
	Source     Source
	SampleRate int
	Channels   int
}
