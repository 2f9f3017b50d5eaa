package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chords/pkg/key"
)

// Stage identifies which transmission call failed.
type Stage struct {
	Deferred bool
	Code     key.Code
}

// Immediate is the stage of the single immediate batch.
var Immediate = Stage{}

// DeferredRelease returns the stage of the deferred release of code.
func DeferredRelease(code key.Code) Stage {
	return Stage{Deferred: true, Code: code}
}

func (s Stage) String() string {
	if !s.Deferred {
		return "immediate batch"
	}
	return "deferred release of " + s.Code.String()
}

// TransmissionError is returned when the backend rejects a call.
type TransmissionError struct {
	Stage Stage
	Err   error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("transmit %s: %v", e.Stage, e.Err)
}

func (e *TransmissionError) Unwrap() error {
	return e.Err
}

// PartialFailure is returned when the immediate batch went out but some
// deferred releases did not. Keys listed here may still be down at the OS
// level; no compensating releases are sent.
type PartialFailure struct {
	// Failed holds the releases the backend rejected, in chord order.
	Failed []*TransmissionError
	// Canceled holds the keys whose release was dropped by cancellation.
	Canceled []key.Code
	// Cause is the context error when Canceled is non-empty.
	Cause error
}

func (e *PartialFailure) Error() string {
	var parts []string
	if n := len(e.Failed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d release(s) failed", n))
	}
	if n := len(e.Canceled); n > 0 {
		parts = append(parts, fmt.Sprintf("%d release(s) canceled", n))
	}
	msg := "playback incomplete: " + strings.Join(parts, ", ")
	if len(e.Failed) > 0 {
		msg += ": " + e.Failed[0].Error()
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed)+1)
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Incomplete reports whether typing started but some releases were not sent.
func Incomplete(err error) bool {
	var pf *PartialFailure
	return errors.As(err, &pf)
}

// NothingTyped reports whether playback failed before any event reached the
// backend: the immediate batch was rejected or the context was done first.
func NothingTyped(err error) bool {
	if err == nil || Incomplete(err) {
		return false
	}
	var te *TransmissionError
	if errors.As(err, &te) {
		return !te.Stage.Deferred
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
