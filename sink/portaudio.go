//go:build !headless

package sink

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

func (p PortAudio) Run(ctx context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("can't init portaudio: %w", err)
	}
	// ignore Terminate error
	defer portaudio.Terminate()

	frames := p.FramesPerBuffer
	if frames == 0 {
		frames = portaudio.FramesPerBufferUnspecified
	}
	stream, err := portaudio.OpenDefaultStream(0, p.Channels, p.SampleRate, frames, p.Source.Process)
	if err != nil {
		return fmt.Errorf("can't open default stream: %w", err)
	}
	// ignore Close error
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return fmt.Errorf("can't start stream: %w", err)
	}

	<-ctx.Done()
	if err := stream.Stop(); err != nil {
		return fmt.Errorf("can't stop stream: %w", err)
	}
	return nil
}
