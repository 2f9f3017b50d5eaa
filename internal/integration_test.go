// Package internal provides end-to-end tests wiring scripts, playback,
// backends and the journal together.
package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chords/internal/backend"
	"chords/internal/journal"
	"chords/internal/logging"
	"chords/internal/metrics"
	"chords/internal/script"
	"chords/pkg/playback"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScriptToJournal(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "hello.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - text: "lool"
  - key: LShift
    hold: 20ms
  - key: Enter
`), 0600))

	s, err := script.Load(path)
	require.NoError(t, err)
	c, err := s.Chord()
	require.NoError(t, err)

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	rec := backend.NewRecorder(nil)
	b := backend.Journaled(rec, j, quietLogger())
	m := metrics.NewPlaybackMetrics(metrics.NewRegistry("it"))

	runID := "it-run-1"
	require.NoError(t, j.BeginRun(runID, "script", c.Presses()))

	ctx := logging.ContextWithRunID(context.Background(), runID)
	playErr := c.Play(ctx, b, playback.WithLogger(quietLogger()), playback.WithMetrics(m))
	require.NoError(t, playErr)
	require.NoError(t, j.FinishRun(runID, playErr))

	// One immediate call plus one deferred release.
	batches := rec.Batches()
	require.Len(t, batches, 2)
	// l,o,o,l,LShift,Enter: 6 downs, 5 immediate ups, 1 collision (o,o).
	assert.Len(t, batches[0].Records, 12)
	assert.GreaterOrEqual(t, batches[1].At.Sub(batches[0].At), 20*time.Millisecond)

	run, err := j.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeOK, run.Outcome)
	assert.Equal(t, 6, run.Presses)
	assert.Equal(t, 1, run.Held)

	stored, err := j.Batches(runID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "immediate batch", stored[0].Stage)
	assert.Equal(t, []string{"up vk:LShift"}, stored[1].Records)

	assert.Equal(t, uint64(2), m.BatchesTotal.Value())
	assert.Equal(t, uint64(13), m.RecordsTotal.Value())
}

func TestCanceledRunIsJournaled(t *testing.T) {
	dir := t.TempDir()

	s, err := script.Parse([]byte(`{"steps": [{"text": "a"}, {"key": "LControl", "hold": "1h"}]}`), script.FormatJSON)
	require.NoError(t, err)
	c, err := s.Chord()
	require.NoError(t, err)

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	runID := "it-run-2"
	require.NoError(t, j.BeginRun(runID, "script", c.Presses()))

	ctx, cancel := context.WithTimeout(logging.ContextWithRunID(context.Background(), runID), 50*time.Millisecond)
	defer cancel()

	b := backend.Journaled(backend.NewRecorder(nil), j, quietLogger())
	playErr := c.Play(ctx, b, playback.WithLogger(quietLogger()))
	require.Error(t, playErr)
	assert.True(t, playback.Incomplete(playErr))
	require.NoError(t, j.FinishRun(runID, playErr))

	run, err := j.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeCanceled, run.Outcome)

	stored, err := j.Batches(runID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "the held release is never sent")
}
