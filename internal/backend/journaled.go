package backend

import (
	"context"
	"log/slog"

	"chords/internal/logging"
	"chords/pkg/key"
	"chords/pkg/playback"
)

// BatchJournal persists transmission calls.
type BatchJournal interface {
	RecordBatch(runID string, stage playback.Stage, batch []key.Record, err error) error
}

type journaled struct {
	Backend
	journal BatchJournal
	log     *slog.Logger
}

// Journaled wraps next so every call made under a run ID (see
// logging.ContextWithRunID) is written to j. Journal failures are logged and
// never fail the transmission.
func Journaled(next Backend, j BatchJournal, log *slog.Logger) Backend {
	if log == nil {
		log = logging.Component("backend")
	}
	return &journaled{Backend: next, journal: j, log: log}
}

func (b *journaled) Transmit(ctx context.Context, batch []key.Record) error {
	err := b.Backend.Transmit(ctx, batch)

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		return err
	}
	stage, _ := playback.StageFromContext(ctx)
	if jerr := b.journal.RecordBatch(runID, stage, batch, err); jerr != nil {
		b.log.WarnContext(ctx, "journal batch failed", "run_id", runID, "error", jerr)
	}
	return err
}
