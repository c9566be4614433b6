package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"git.disy.net/goetz/moomoot/engine"
	"git.disy.net/goetz/moomoot/tree"
)

var errTooManyVoices = errors.New("too many voices")

type trigger struct {
	regex *regexp.Regexp
	voice string
}

type triggers struct {
	sync.Mutex
	triggers []trigger
}

func compileTriggers(triggers []Trigger) ([]trigger, error) {
	compiled := make([]trigger, 0, len(triggers))
	for _, t := range triggers {
		r, err := regexp.Compile(t.Regex)
		if err != nil {
			return nil, fmt.Errorf("trigger %q: %w", t.Regex, err)
		}
		compiled = append(compiled, trigger{r, t.Voice})
	}
	return compiled, nil
}

func (ts *triggers) set(compiled []trigger) {
	ts.Lock()
	defer ts.Unlock()
	ts.triggers = compiled
}

func (ts *triggers) firstMatch(s []byte) string {
	ts.Lock()
	defer ts.Unlock()

	for _, t := range ts.triggers {
		if t.regex.Match(s) {
			return t.voice
		}
	}
	return ""
}

// busLine matches control lines like "pitch=440".
var busLine = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(\S+)\s*$`)

// control owns everything the control side knows about the patch.
type control struct {
	engine    *engine.Engine
	log       *slog.Logger
	maxVoices int
	specs     voiceConfigs
	ts        triggers

	mu     sync.Mutex
	mixers map[string]bool
}

func newControl(e *engine.Engine, log *slog.Logger, maxVoices int) *control {
	return &control{
		engine:    e,
		log:       log,
		maxVoices: maxVoices,
		mixers:    map[string]bool{tree.RootID: true},
	}
}

// apply installs a patch. Buses and mixers only ever get added: a mixer
// dropped from the config keeps playing until restart.
func (c *control) apply(conf DynamicConfig) error {
	// nothing is replaced unless both triggers and voices are valid
	compiled, err := compileTriggers(conf.Triggers)
	if err != nil {
		return err
	}
	if err := validateVoices(conf.Voices); err != nil {
		return err
	}
	c.ts.set(compiled)
	c.specs.set(conf.Voices)

	channels := make([]string, 0, len(conf.Buses))
	for name := range conf.Buses {
		channels = append(channels, name)
	}
	slices.Sort(channels)
	for _, name := range channels {
		c.engine.DeclareBus(name, conf.Buses[name])
		c.engine.SetBusValue(name, conf.Buses[name])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range conf.Mixers {
		if c.mixers[m.ID] {
			continue
		}
		effects, err := makeEffects(m.Efx)
		if err != nil {
			return fmt.Errorf("mixer %s: %w", m.ID, err)
		}
		parent := m.Parent
		if parent == "" {
			parent = tree.RootID
		}
		c.engine.AddMixer(parent, m.ID, effects...)
		c.mixers[m.ID] = true
		c.log.Debug("added mixer", "id", m.ID, "parent", parent)
	}

	for _, name := range conf.Play {
		if err := c.play(name); err != nil {
			return err
		}
	}
	return nil
}

// play starts the voice name unless maxVoices are sounding already. The
// voice count lags one audio block behind.
func (c *control) play(name string) error {
	if c.maxVoices > 0 && c.engine.Stats().Voices >= c.maxVoices {
		return fmt.Errorf("can't play %s: %w", name, errTooManyVoices)
	}
	v, err := c.specs.makeVoice(name)
	if err != nil {
		return err
	}
	id := v.play(c.engine)
	c.log.Debug("play", "voice", name, "mixer", id)
	return nil
}

// handleLine publishes "name=value" lines on the bus name and plays the
// voice of the first trigger matching any other line.
func (c *control) handleLine(line []byte) error {
	if m := busLine.FindSubmatch(line); m != nil {
		v, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			return fmt.Errorf("bad bus value: %w", err)
		}
		c.engine.SetBusValue(string(m[1]), v)
		return nil
	}
	name := c.ts.firstMatch(line)
	if name == "" {
		return nil
	}
	return c.play(name)
}

func scanLines(r io.Reader, echo io.Writer, lines chan<- []byte) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Bytes()
		if echo != nil {
			// ignore len, errors
			fmt.Fprintln(echo, string(line))
		}
		lines <- slices.Clone(line)
	}
	close(lines)
	return s.Err()
}

func (c *control) processLines(ctx context.Context, lines <-chan []byte, errs chan<- error) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := c.handleLine(line); err != nil {
				send(ctx, errs, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *control) reportErrors(ctx context.Context, errs <-chan error) {
	for {
		select {
		case err := <-errs:
			c.log.Error("control", "err", err)
		case err := <-c.engine.Errors():
			c.log.Error("command dropped", "err", err)
		case <-ctx.Done():
			return
		}
	}
}

func run(configFile string, envFiles ...string) error {
	settings, err := LoadSettings(envFiles...)
	if err != nil {
		return err
	}
	log := settings.Logger(os.Stderr)
	config, err := ReadConfig(configFile)
	if err != nil {
		return fmt.Errorf("can't read config: %v because: %w", configFile, err)
	}

	e := engine.New(float64(settings.SampleRate), engine.WithLogger(log))
	c := newControl(e, log, config.MaxVoices)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	errs := make(chan error)
	g.Go(func() error {
		c.reportErrors(ctx, errs)
		return nil
	})

	// apply initial config
	if err := c.apply(config.DynamicConfig); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if config.WatchConfig {
		configs := make(chan *Config)
		if err := Watch(ctx, configFile, configs, errs); err != nil {
			return fmt.Errorf("can't start watcher: %w", err)
		}
		g.Go(func() error {
			for {
				select {
				case conf := <-configs:
					log.Info("new conf", "path", configFile)
					if err := c.apply(conf.DynamicConfig); err != nil {
						send(ctx, errs, err)
					}
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	// scan lines, trigger sounds. The scanner blocks on stdin and is
	// left behind on exit.
	var echo io.Writer
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		echo = os.Stdout
	}
	lines := make(chan []byte, 1)
	go func() {
		if err := scanLines(os.Stdin, echo, lines); err != nil {
			log.Warn("stopped reading stdin", "err", err)
		}
	}()
	g.Go(func() error {
		c.processLines(ctx, lines, errs)
		return nil
	})

	out := settings.Sink(e)
	log.Info("start", "backend", settings.Backend, "sample_rate", settings.SampleRate, "channels", settings.Channels)
	g.Go(func() error {
		// a finite sink ends the whole run
		defer stop()
		return out.Run(ctx)
	})

	err = g.Wait()
	log.Info("exiting", "stats", e.Stats())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	configFile := flag.String("config", "", "Path to config (.json, .yaml), created with defaults if not found.")
	envFile := flag.String("env", "", "Optional file with MOOMOOT_* settings, .env is read if present.")
	flag.Parse()
	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		return
	}
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	if err := run(*configFile, envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
