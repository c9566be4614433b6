// Package engine drives a mixer tree from an audio callback. Control
// goroutines describe mutations as commands; the audio goroutine applies
// them at the start of every block and then renders it.
package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"git.disy.net/goetz/moomoot/param"
	"git.disy.net/goetz/moomoot/tree"
	"git.disy.net/goetz/moomoot/unit"
)

const defaultErrorBuffer = 64

type Engine struct {
	tree       *tree.Tree
	queue      *queue
	sampleRate float64
	log        *slog.Logger
	errs       chan error

	ticks, frames      atomic.Uint64
	applied, failed    atomic.Uint64
	dropped            atomic.Uint64
	mixers, transients atomic.Int64
	synths, effects    atomic.Int64
}

type Option func(*Engine)

// WithLogger sets the logger of the control side.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithErrorBuffer sets how many failed commands are kept for Errors
// before further ones are only counted.
func WithErrorBuffer(n int) Option {
	return func(e *Engine) { e.errs = make(chan error, n) }
}

func New(sampleRate float64, opts ...Option) *Engine {
	e := &Engine{
		tree:       tree.New(sampleRate),
		queue:      newQueue(),
		sampleRate: sampleRate,
		log:        slog.Default(),
		errs:       make(chan error, defaultErrorBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mixers.Store(1)
	return e
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Errors delivers the commands that failed to apply. Nothing is retried:
// a failed command is logged by whoever reads this channel and dropped.
func (e *Engine) Errors() <-chan error { return e.errs }

func (e *Engine) send(c Command) {
	e.log.Debug("queue command", "kind", c.Kind, "parent", c.Parent, "channel", c.Channel)
	e.queue.push(c)
}

// AddMixer queues the insertion of a persistent mixer with its effect
// chain.
func (e *Engine) AddMixer(parent, id string, effects ...tree.EfxPart) {
	e.send(Command{Kind: AddMixer, Parent: parent, Mixer: tree.NewMixer(id), Effects: effects})
}

// AddTransientMixer queues the insertion of a transient mixer and returns
// the id it will be known by. A transient mixer still empty when a block
// is rendered is pruned right away; AddVoice queues one with content.
func (e *Engine) AddTransientMixer(parent string) string {
	m := tree.NewTransientMixer(uuid.NewString())
	e.send(Command{Kind: AddMixer, Parent: parent, Mixer: m})
	return m.ID()
}

// AddVoice queues a transient mixer holding synths and effects as a
// single command, so the audio goroutine never sees it half built. It
// returns the id of the mixer.
func (e *Engine) AddVoice(parent string, synths []tree.SynthPart, effects []tree.EfxPart) string {
	m := tree.NewTransientMixer(uuid.NewString())
	e.send(Command{Kind: AddVoice, Parent: parent, Mixer: m, Synths: synths, Effects: effects})
	return m.ID()
}

// AddSynth queues s for insertion in mixer parent. s must not be used by
// the caller afterwards.
func (e *Engine) AddSynth(parent string, s unit.Synth, params ...param.Assignment) {
	e.send(Command{Kind: AddSynth, Parent: parent, Synth: s, Params: params})
}

// AddEfx queues fx for insertion at the end of the chain of mixer parent.
func (e *Engine) AddEfx(parent string, fx unit.Efx, params ...param.Assignment) {
	e.send(Command{Kind: AddEfx, Parent: parent, Efx: fx, Params: params})
}

// SetBusValue queues a publish on channel. It is applied in order with
// the other commands.
func (e *Engine) SetBusValue(channel string, v float64) {
	e.send(Command{Kind: SetBusValue, Channel: channel, Value: v})
}

// DeclareBus queues the creation of channel at initial.
func (e *Engine) DeclareBus(channel string, initial float64) {
	e.send(Command{Kind: DeclareBus, Channel: channel, Value: initial})
}

func (e *Engine) drain() {
	for {
		c, ok := e.queue.pop()
		if !ok {
			return
		}
		if err := c.apply(e.tree); err != nil {
			e.failed.Add(1)
			select {
			case e.errs <- err:
			default:
				e.dropped.Add(1)
			}
			continue
		}
		e.applied.Add(1)
	}
}

// Process is the audio callback. It applies every queued command, then
// fills out with one frame per slot. out[0] is the left channel and out[1]
// the right one; a single channel gets the mono mix, further channels are
// zeroed.
func (e *Engine) Process(out [][]float32) {
	e.drain()
	if len(out) > 0 {
		for i := range out[0] {
			var right, left, mono float64
			if s := e.tree.Sample(); s.IsFrame() {
				right, left = s.Value.Channels()
				mono = s.Value.Mono()
			}
			switch len(out) {
			case 1:
				out[0][i] = float32(mono)
			default:
				out[0][i] = float32(left)
				out[1][i] = float32(right)
				for _, ch := range out[2:] {
					ch[i] = 0
				}
			}
		}
		e.frames.Add(uint64(len(out[0])))
	}
	e.ticks.Add(1)

	c := e.tree.Census()
	e.mixers.Store(int64(c.Mixers))
	e.transients.Store(int64(c.Transients))
	e.synths.Store(int64(c.Synths))
	e.effects.Store(int64(c.Effects))
}

// Stats is a snapshot of the engine counters. The tree shape is the one
// left by the last Process call.
type Stats struct {
	Ticks         uint64
	Frames        uint64
	Commands      uint64
	CommandErrors uint64
	DroppedErrors uint64
	Mixers        int
	Voices        int
	Synths        int
	Effects       int
}

// Stats may be called from any goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:         e.ticks.Load(),
		Frames:        e.frames.Load(),
		Commands:      e.applied.Load(),
		CommandErrors: e.failed.Load(),
		DroppedErrors: e.dropped.Load(),
		Mixers:        int(e.mixers.Load()),
		Voices:        int(e.transients.Load()),
		Synths:        int(e.synths.Load()),
		Effects:       int(e.effects.Load()),
	}
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("ticks", s.Ticks),
		slog.Uint64("frames", s.Frames),
		slog.Uint64("commands", s.Commands),
		slog.Uint64("command_errors", s.CommandErrors),
		slog.Int("mixers", s.Mixers),
		slog.Int("voices", s.Voices),
		slog.Int("synths", s.Synths),
	)
}
