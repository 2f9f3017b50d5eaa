package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chords/internal/config"
	"chords/pkg/key"
	"chords/pkg/playback"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&playback.TransmissionError{Stage: playback.Immediate, Err: errors.New("x")}))
	assert.Equal(t, 2, exitCode(context.Canceled))
	assert.Equal(t, 3, exitCode(&playback.PartialFailure{Canceled: []key.Code{key.UnicodeCode('a')}, Cause: context.Canceled}))
	assert.Equal(t, 1, exitCode(errors.New("bad config")))
}

func TestApplyFlags(t *testing.T) {
	defer func(b bool, d, h time.Duration) { *dryRun, *delay, *hold = b, d, h }(*dryRun, *delay, *hold)

	*dryRun = true
	*delay = 2 * time.Second
	*hold = 15 * time.Millisecond

	cfg := config.DefaultConfig()
	applyFlags(cfg)

	assert.Equal(t, "dryrun", cfg.Backend.Name)
	assert.Equal(t, "2s", cfg.Playback.StartDelay)
	assert.Equal(t, "15ms", cfg.Playback.DefaultHold)
	assert.NoError(t, cfg.Validate())
}

func TestAwaitLinePlaybackErrorReturnsAtOnce(t *testing.T) {
	played := make(chan error, 1)
	played <- &playback.TransmissionError{Stage: playback.Immediate, Err: errors.New("denied")}
	lines := make(chan lineResult) // never delivers

	start := time.Now()
	_, err := awaitLine(context.Background(), played, lines, time.Hour)
	assert.True(t, playback.NothingTyped(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestAwaitLineAfterPlayback(t *testing.T) {
	played := make(chan error, 1)
	lines := make(chan lineResult, 1)
	played <- nil
	lines <- lineResult{line: "Hello, world!"}

	line, err := awaitLine(context.Background(), played, lines, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "Hello, world!", line)
}

func TestAwaitLineBeforePlaybackFinishes(t *testing.T) {
	played := make(chan error, 1)
	lines := make(chan lineResult, 1)
	lines <- lineResult{line: "Hello"}

	go func() {
		time.Sleep(10 * time.Millisecond)
		played <- nil
	}()

	line, err := awaitLine(context.Background(), played, lines, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", line)
}

func TestAwaitLineTimeout(t *testing.T) {
	played := make(chan error, 1)
	played <- nil

	_, err := awaitLine(context.Background(), played, make(chan lineResult), 20*time.Millisecond)
	assert.ErrorContains(t, err, "no input within")
}

func TestAwaitLineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := awaitLine(ctx, make(chan error), make(chan lineResult), time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadLine(t *testing.T) {
	res := <-readLine(strings.NewReader("  Hello, world!\nrest"))
	assert.NoError(t, res.err)
	assert.Equal(t, "Hello, world!", res.line)
}
