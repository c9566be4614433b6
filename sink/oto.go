//go:build !headless

package sink

import (
	"context"
	"fmt"

	"github.com/ebitengine/oto/v3"
)

func (o Oto) Run(ctx context.Context) error {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.SampleRate,
		ChannelCount: o.Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("can't create oto context: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(NewInterleaver(o.Source, o.Channels))
	player.Play()

	<-ctx.Done()
	if err := player.Close(); err != nil {
		return fmt.Errorf("can't close oto player: %w", err)
	}
	return nil
}
