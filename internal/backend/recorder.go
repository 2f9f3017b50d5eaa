package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"chords/pkg/key"
	"chords/pkg/playback"
)

// Recorded is one batch captured by a Recorder.
type Recorded struct {
	At      time.Time
	Stage   playback.Stage
	Records []key.Record
}

// Recorder is the dryrun backend. It keeps every batch in memory and
// optionally echoes it to a writer instead of touching the OS.
type Recorder struct {
	mu      sync.Mutex
	w       io.Writer
	batches []Recorded
}

// NewRecorder creates a Recorder. w may be nil.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Name returns "dryrun".
func (r *Recorder) Name() string { return "dryrun" }

// Available is always true.
func (r *Recorder) Available() (bool, string) {
	return true, "dryrun records batches without injecting input"
}

// Transmit records batch.
func (r *Recorder) Transmit(ctx context.Context, batch []key.Record) error {
	stage, _ := playback.StageFromContext(ctx)
	rec := Recorded{
		At:      time.Now(),
		Stage:   stage,
		Records: append([]key.Record(nil), batch...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, rec)

	if r.w != nil {
		parts := make([]string, len(batch))
		for i, rr := range batch {
			parts[i] = rr.String()
		}
		fmt.Fprintf(r.w, "[%s] %s\n", stage, strings.Join(parts, ", "))
	}
	return nil
}

// Batches returns a copy of the recorded batches in arrival order.
func (r *Recorder) Batches() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.batches...)
}

// Reset drops all recorded batches.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
}

// Close is a no-op.
func (r *Recorder) Close() error { return nil }
