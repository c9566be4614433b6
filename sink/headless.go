//go:build headless

package sink

import "context"

func (PortAudio) Run(context.Context) error { return ErrUnavailable }

func (Oto) Run(context.Context) error { return ErrUnavailable }
