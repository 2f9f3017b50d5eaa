package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"chords/internal/config"
	"chords/internal/journal"
	"chords/internal/script"
	"chords/pkg/chord"
	"chords/pkg/keycode"
)

func cmdType(ctx context.Context, args []string) error {
	enter := false
	if last := args[len(args)-1]; last == "-enter" || last == "--enter" {
		enter = true
		args = args[:len(args)-1]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	opts, err := a.chordOptions()
	if err != nil {
		return err
	}
	wait, err := a.cfg.Playback.Delay()
	if err != nil {
		return err
	}

	c := chord.FromString(strings.Join(args, " "), opts...)
	if enter {
		c.PushVirtual(keycode.Enter)
	}
	return a.play(ctx, "type", c, wait)
}

func cmdPlay(ctx context.Context, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return a.playScript(ctx, s)
}

func (a *app) playScript(ctx context.Context, s *script.Script) error {
	opts, err := a.chordOptions()
	if err != nil {
		return err
	}
	c, err := s.Chord(opts...)
	if err != nil {
		return err
	}

	wait, err := a.cfg.Playback.Delay()
	if err != nil {
		return err
	}
	if s.Delay != "" {
		if wait, err = s.StartDelay(); err != nil {
			return err
		}
	}
	return a.play(ctx, "script:"+s.Path, c, wait)
}

// cmdWatch plays the script once, then again on every change. Changes to
// the config file's playback section apply to the next playback.
func cmdWatch(ctx context.Context, path string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var mu sync.Mutex
	if *configPath != "" {
		loader := config.NewLoader(*configPath)
		if _, err := loader.Load(); err != nil {
			return err
		}
		loader.OnChange(func(cfg *config.Config) {
			mu.Lock()
			defer mu.Unlock()
			applyFlags(cfg)
			a.cfg.Playback = cfg.Playback
			a.log.Info("config reloaded", "default_hold", cfg.Playback.DefaultHold)
		})
		if err := loader.Watch(); err != nil {
			return err
		}
		defer loader.Close()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case err := <-loader.Errors():
					a.log.Warn("config reload failed", "error", err)
				}
			}
		}()
	}

	play := func(s *script.Script) error {
		mu.Lock()
		defer mu.Unlock()
		if err := a.playScript(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
			// Keep watching; the next edit may fix it.
			a.log.Error("script playback failed", "path", path, "error", err)
		}
		return nil
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}
	if err := play(s); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", path)
	err = script.Watch(ctx, path, play, script.WatchOptions{Logger: a.log.WithComponent("script").Logger})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func cmdKeys() {
	for _, name := range keycode.Names() {
		vk, _ := keycode.Lookup(name)
		fmt.Printf("%-22s 0x%02X\n", name, uint16(vk))
	}
}

func cmdHistory(runID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Journal.Path); os.IsNotExist(err) {
		fmt.Println("No playbacks recorded.")
		return nil
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	if runID != "" {
		return printBatches(j, runID)
	}

	runs, err := j.Runs(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No playbacks recorded.")
		return nil
	}

	fmt.Println("=== Playback History ===")
	fmt.Printf("%-36s %-20s %-8s %-14s %s\n", "Run", "Started", "Presses", "Outcome", "Source")
	fmt.Println(strings.Repeat("-", 96))
	for _, r := range runs {
		started := time.Unix(0, r.StartedNs).Format("2006-01-02 15:04:05")
		fmt.Printf("%-36s %-20s %-8d %-14s %s\n", r.RunID, started, r.Presses, r.Outcome, r.Source)
	}
	return nil
}

func printBatches(j *journal.Journal, runID string) error {
	run, err := j.Run(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run %q", runID)
	}

	batches, err := j.Batches(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %s, %d presses (%d held)\n", run.RunID, run.Outcome, run.Presses, run.Held)
	if run.Error != "" {
		fmt.Printf("Error: %s\n", run.Error)
	}
	fmt.Println()
	for _, b := range batches {
		offset := time.Duration(b.SentNs - run.StartedNs)
		line := fmt.Sprintf("+%-10s %-32s %s", offset.Round(time.Microsecond), b.Stage, strings.Join(b.Records, ", "))
		if b.Error != "" {
			line += "  ERROR: " + b.Error
		}
		fmt.Println(line)
	}
	return nil
}

const demoText = "Hello, world!"

// cmdDemo types a greeting into this terminal and checks what arrives on stdin.
func cmdDemo(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.backend.Name() == "dryrun" {
		return errors.New("demo needs a real backend: nothing reaches stdin in dry-run mode")
	}

	c := chord.FromString(demoText)
	c.PushVirtual(keycode.Enter)

	played := make(chan error, 1)
	go func() {
		played <- a.play(ctx, "demo", c, time.Second)
	}()

	fmt.Print("Robot ?: ")
	input, err := awaitLine(ctx, played, readLine(os.Stdin), demoTimeout)
	if err != nil {
		return err
	}
	if input != demoText {
		return fmt.Errorf("expected %q, got %q", demoText, input)
	}
	fmt.Printf("Robot said, '%s'\n", input)
	return nil
}

const demoTimeout = 5 * time.Second

type lineResult struct {
	line string
	err  error
}

// readLine reads a single line from r in the background.
func readLine(r io.Reader) <-chan lineResult {
	lines := make(chan lineResult, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		lines <- lineResult{line: strings.TrimSpace(line), err: err}
	}()
	return lines
}

// awaitLine returns the typed line once playback has succeeded. A playback
// error is returned as soon as it happens. After a successful playback the
// line must arrive within timeout.
func awaitLine(ctx context.Context, played <-chan error, lines <-chan lineResult, timeout time.Duration) (string, error) {
	var (
		line     lineResult
		gotLine  bool
		deadline <-chan time.Time
	)
	for {
		select {
		case err := <-played:
			if err != nil {
				return "", err
			}
			if gotLine {
				return line.line, line.err
			}
			played = nil
			t := time.NewTimer(timeout)
			defer t.Stop()
			deadline = t.C
		case line = <-lines:
			if line.err != nil {
				line.err = fmt.Errorf("read input: %w", line.err)
			}
			if played == nil {
				return line.line, line.err
			}
			gotLine = true
			lines = nil
		case <-deadline:
			return "", fmt.Errorf("no input within %s of playback", timeout)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
