// chordsctl types chords through the host OS input-injection facility.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chords/internal/backend"
	"chords/internal/config"
	"chords/internal/journal"
	"chords/internal/logging"
	"chords/internal/metrics"
	"chords/pkg/chord"
	"chords/pkg/playback"
)

var (
	configPath  = flag.String("config", "", "path to config file")
	backendName = flag.String("backend", "", "backend: auto, sendinput, uinput, dryrun")
	dryRun      = flag.Bool("dry-run", false, "print batches instead of injecting input")
	delay       = flag.Duration("delay", -1, "wait before playback (overrides config)")
	hold        = flag.Duration("hold", -1, "default hold for typed text (overrides config)")
	showMetrics = flag.Bool("metrics", false, "print playback metrics on exit")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "type":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: chordsctl type <text> [-enter]")
			os.Exit(1)
		}
		err = cmdType(ctx, flag.Args()[1:])
	case "play":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: chordsctl play <script>")
			os.Exit(1)
		}
		err = cmdPlay(ctx, flag.Arg(1))
	case "watch":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: chordsctl watch <script>")
			os.Exit(1)
		}
		err = cmdWatch(ctx, flag.Arg(1))
	case "keys":
		cmdKeys()
	case "history":
		runID := ""
		if flag.NArg() >= 2 {
			runID = flag.Arg(1)
		}
		err = cmdHistory(runID)
	case "demo":
		err = cmdDemo(ctx)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `chordsctl - Type key chords through the OS input facility

Usage: chordsctl [options] <command> [args]

Commands:
  type <text>       Type text (append -enter to press Enter afterwards)
  play <script>     Play a YAML, JSON or TOML chord script
  watch <script>    Play a script every time it changes
  keys              List virtual key names
  history [run-id]  Show recent playbacks, or the batches of one run
  demo              Type "Hello, world!" into this terminal and check it
  help              Show this help message

Options:
  -config <path>    Path to config file
  -backend <name>   auto, sendinput, uinput or dryrun
  -dry-run          Print batches instead of injecting input
  -delay <dur>      Wait before playback
  -hold <dur>       Hold every typed character for this long
  -metrics          Print playback metrics on exit
  -v                Debug logging

Exit status: 0 on success, 2 if nothing was typed, 3 if some keys
may still be held down, 1 for any other error.`)
}

// exitCode distinguishes nothing typed from partially released chords.
func exitCode(err error) int {
	switch {
	case playback.Incomplete(err):
		return 3
	case playback.NothingTyped(err):
		return 2
	default:
		return 1
	}
}

// app wires configuration, logging, backend, journal and metrics together.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	backend  backend.Backend
	journal  *journal.Journal
	registry *metrics.Registry
	metrics  *metrics.PlaybackMetrics
}

func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags lets command-line flags win over the file and environment.
func applyFlags(cfg *config.Config) {
	if *backendName != "" {
		cfg.Backend.Name = *backendName
	}
	if *dryRun {
		cfg.Backend.Name = "dryrun"
	}
	if *delay >= 0 {
		cfg.Playback.StartDelay = delay.String()
	}
	if *hold >= 0 {
		cfg.Playback.DefaultHold = hold.String()
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg, err := cfg.Logging.LoggerConfig()
	if err != nil {
		return nil, err
	}
	logCfg.Component = "chordsctl"
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	logging.SetDefault(log)
	return log, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: metrics.Default(),
	}
	a.metrics = metrics.NewPlaybackMetrics(a.registry)

	var b backend.Backend
	if cfg.Backend.Name == "dryrun" {
		b = backend.NewRecorder(os.Stdout)
	} else {
		b, err = backend.New(cfg.Backend.Name, cfg.Backend)
		if err != nil {
			log.Close()
			return nil, err
		}
	}
	ok, reason := b.Available()
	log.Debug("backend ready", "backend", b.Name(), "available", ok, "reason", reason)

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			b.Close()
			log.Close()
			return nil, err
		}
		a.journal = j
		b = backend.Journaled(b, j, log.WithComponent("journal").Logger)
	}
	a.backend = b
	return a, nil
}

func (a *app) close() {
	if *showMetrics {
		if err := a.registry.WritePrometheus(os.Stderr); err != nil {
			a.log.Warn("write metrics", "error", err)
		}
	}
	if err := a.backend.Close(); err != nil {
		a.log.Warn("close backend", "error", err)
	}
	if a.journal != nil {
		a.journal.Close()
	}
	a.log.Close()
}

// chordOptions returns the options for chords built from text.
func (a *app) chordOptions() ([]chord.Option, error) {
	d, held, err := a.cfg.Playback.Hold()
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, nil
	}
	return []chord.Option{chord.WithDefaultHold(d)}, nil
}

// play runs one chord under a fresh run ID, journaling it when enabled.
func (a *app) play(ctx context.Context, source string, c *chord.Chord, wait time.Duration) error {
	runID := a.log.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := a.log.WithRunID(runID)

	if a.journal != nil {
		if err := a.journal.BeginRun(runID, source, c.Presses()); err != nil {
			log.Warn("journal run failed", "error", err)
		}
	}

	start := time.Now()
	err := c.PlayAfter(ctx, wait, a.backend,
		playback.WithLogger(log.WithComponent("playback").Logger),
		playback.WithMetrics(a.metrics),
	)

	if a.journal != nil {
		if jerr := a.journal.FinishRun(runID, err); jerr != nil {
			log.Warn("journal finish failed", "error", jerr)
		}
	}

	switch {
	case err == nil:
		log.Info("chord played", "source", source, "presses", c.Len(), "duration", time.Since(start))
	case playback.Incomplete(err):
		var pf *playback.PartialFailure
		errors.As(err, &pf)
		log.Warn("chord incomplete, keys may remain down",
			"source", source,
			"failed", len(pf.Failed),
			"canceled", len(pf.Canceled),
		)
	default:
		log.Error("chord failed", "source", source, "error", err)
	}
	return err
}
