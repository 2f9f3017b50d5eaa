// Package playback turns a sequence of key presses into ordered, timed
// transmission calls.
//
// All presses without a hold go out in one immediate batch. Each held press
// then gets its own goroutine that waits out the hold and sends a single
// release. Releases are not ordered relative to each other.
//
// Cancelling the context while releases are pending stops them from being
// sent. Nothing already transmitted is undone, so keys may remain down at the
// OS level; the returned PartialFailure lists them.
package playback

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"chords/internal/logging"
	"chords/internal/metrics"
	"chords/pkg/key"
)

// Transmitter delivers a batch of records to the OS in order.
// It may be called concurrently from several release goroutines.
type Transmitter interface {
	Transmit(ctx context.Context, batch []key.Record) error
}

// TransmitterFunc adapts a function to Transmitter.
type TransmitterFunc func(ctx context.Context, batch []key.Record) error

// Transmit calls f.
func (f TransmitterFunc) Transmit(ctx context.Context, batch []key.Record) error {
	return f(ctx, batch)
}

type stageKey struct{}

// StageFromContext returns the stage of the call a Transmitter is serving.
// It is set on every context the Player passes to Transmit.
func StageFromContext(ctx context.Context) (Stage, bool) {
	s, ok := ctx.Value(stageKey{}).(Stage)
	return s, ok
}

// Clock waits out hold durations.
type Clock interface {
	// Wait blocks for d or until ctx is done, returning ctx's error in the
	// latter case.
	Wait(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Player plays presses through a Transmitter.
type Player struct {
	tx      Transmitter
	log     *slog.Logger
	metrics *metrics.PlaybackMetrics
	clock   Clock
	hook    func(State)
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// WithMetrics sets the metrics the player records into.
func WithMetrics(m *metrics.PlaybackMetrics) Option {
	return func(p *Player) { p.metrics = m }
}

// WithClock replaces the timer source used for holds.
func WithClock(c Clock) Option {
	return func(p *Player) { p.clock = c }
}

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(p *Player) { p.hook = fn }
}

// NewPlayer creates a Player transmitting through tx.
func NewPlayer(tx Transmitter, opts ...Option) *Player {
	p := &Player{tx: tx, clock: realClock{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logging.Component("playback")
	}
	if p.metrics == nil {
		p.metrics = metrics.NewPlaybackMetrics(nil)
	}
	return p
}

// Play transmits presses and waits until every release has settled.
//
// An empty sequence makes no calls and returns nil. A failed immediate batch
// returns a *TransmissionError and schedules nothing. Failed or canceled
// releases are collected into a *PartialFailure once all of them settle.
func (p *Player) Play(ctx context.Context, presses []key.Press) error {
	log := p.log
	if id := logging.RunIDFromContext(ctx); id != "" {
		log = log.With("run_id", id)
	}

	if len(presses) == 0 {
		p.enter(ctx, log, StateBuilt)
		p.enter(ctx, log, StateDone)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	plan := NewPlan(presses)
	p.metrics.PlaybacksTotal.Inc()
	p.enter(ctx, log, StateBuilt)

	if err := p.transmit(ctx, Immediate, plan.Immediate); err != nil {
		log.ErrorContext(ctx, "immediate batch failed",
			"records", len(plan.Immediate),
			"error", err,
		)
		p.enter(ctx, log, StateDone)
		return &TransmissionError{Stage: Immediate, Err: err}
	}
	p.enter(ctx, log, StateImmediateSent)

	failure := p.release(ctx, log, plan.Deferred)
	if failure != nil {
		p.enter(ctx, log, StatePartialFailure)
		p.enter(ctx, log, StateDone)
		return failure
	}
	p.enter(ctx, log, StateReleasesSettled)
	p.enter(ctx, log, StateDone)
	return nil
}

type outcome struct {
	failed   *TransmissionError
	canceled bool
}

// release runs one goroutine per deferred release and joins them.
// Returns nil when every release was sent.
func (p *Player) release(ctx context.Context, log *slog.Logger, jobs []Deferred) *PartialFailure {
	if len(jobs) == 0 {
		return nil
	}

	outcomes := make([]outcome, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		p.metrics.DeferredPending.Inc()
		g.Go(func() error {
			defer p.metrics.DeferredPending.Dec()

			if err := p.clock.Wait(ctx, job.Hold); err != nil || ctx.Err() != nil {
				outcomes[i].canceled = true
				return nil
			}
			if err := p.transmit(ctx, DeferredRelease(job.Code), []key.Record{job.Record}); err != nil {
				log.WarnContext(ctx, "deferred release failed",
					"key", job.Code.String(),
					"hold", job.Hold,
					"error", err,
				)
				outcomes[i].failed = &TransmissionError{Stage: DeferredRelease(job.Code), Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	var pf PartialFailure
	for i, o := range outcomes {
		switch {
		case o.failed != nil:
			pf.Failed = append(pf.Failed, o.failed)
		case o.canceled:
			pf.Canceled = append(pf.Canceled, jobs[i].Code)
		}
	}
	if len(pf.Failed) == 0 && len(pf.Canceled) == 0 {
		return nil
	}
	if len(pf.Canceled) > 0 {
		pf.Cause = ctx.Err()
		p.metrics.CanceledReleasesTotal.Add(uint64(len(pf.Canceled)))
		log.WarnContext(ctx, "releases canceled, keys may remain down",
			"canceled", len(pf.Canceled),
		)
	}
	return &pf
}

func (p *Player) transmit(ctx context.Context, stage Stage, batch []key.Record) error {
	start := time.Now()
	err := p.tx.Transmit(context.WithValue(ctx, stageKey{}, stage), batch)
	p.metrics.TransmitSeconds.ObserveDuration(time.Since(start))
	p.metrics.BatchesTotal.Inc()
	if err != nil {
		p.metrics.TransmitFailuresTotal.Inc()
		return err
	}
	p.metrics.RecordsTotal.Add(uint64(len(batch)))
	return nil
}

func (p *Player) enter(ctx context.Context, log *slog.Logger, s State) {
	log.DebugContext(ctx, "playback state", "state", s.String())
	if p.hook != nil {
		p.hook(s)
	}
}
