// Package journal provides SQLite-based history of chord playbacks.
package journal

import (
	"context"
	"errors"

	"chords/pkg/playback"
)

// Outcome summarizes how a playback ended.
type Outcome string

const (
	// OutcomeRunning marks a run that has not finished.
	OutcomeRunning Outcome = "running"
	// OutcomeOK indicates every call succeeded.
	OutcomeOK Outcome = "ok"
	// OutcomeNothingTyped indicates the immediate batch failed.
	OutcomeNothingTyped Outcome = "nothing_typed"
	// OutcomePartial indicates some deferred releases failed.
	OutcomePartial Outcome = "partial"
	// OutcomeCanceled indicates the context ended the playback.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeError is any other failure.
	OutcomeError Outcome = "error"
)

// OutcomeOf classifies the error returned by a playback.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}

	var pf *playback.PartialFailure
	if errors.As(err, &pf) {
		if len(pf.Failed) == 0 {
			return OutcomeCanceled
		}
		return OutcomePartial
	}

	var te *playback.TransmissionError
	if errors.As(err, &te) {
		return OutcomeNothingTyped
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCanceled
	}
	return OutcomeError
}

// Run is one recorded playback.
type Run struct {
	ID         int64
	RunID      string
	Source     string
	Presses    int
	Held       int
	Chord      []string
	StartedNs  int64
	FinishedNs *int64
	Outcome    Outcome
	Error      string
}

// Batch is one transmission call made during a run.
type Batch struct {
	ID      int64
	RunID   string
	Stage   string
	Records []string
	SentNs  int64
	Error   string
}
