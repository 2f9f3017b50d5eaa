package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chords/internal/metrics"
	"chords/pkg/key"
	"chords/pkg/keycode"
)

// fakeTransmitter records every call. fail decides per batch whether to error.
type fakeTransmitter struct {
	mu    sync.Mutex
	calls [][]key.Record
	at    []time.Time
	fail  func(batch []key.Record) error
}

func (f *fakeTransmitter) Transmit(_ context.Context, batch []key.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]key.Record(nil), batch...))
	f.at = append(f.at, time.Now())
	if f.fail != nil {
		return f.fail(batch)
	}
	return nil
}

func (f *fakeTransmitter) Calls() [][]key.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]key.Record(nil), f.calls...)
}

// manualClock releases waiters only when advanced.
type manualClock struct {
	mu      sync.Mutex
	now     time.Duration
	waiters []*waiter
}

type waiter struct {
	until time.Duration
	done  chan struct{}
}

func (c *manualClock) Wait(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	w := &waiter{until: c.now + d, done: make(chan struct{})}
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return nil
	}
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if w.until <= c.now {
			close(w.done)
			continue
		}
		kept = append(kept, w)
	}
	c.waiters = kept
}

func newTestPlayer(tx Transmitter, opts ...Option) *Player {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(metrics.NewPlaybackMetrics(metrics.NewRegistry("test"))),
	}
	return NewPlayer(tx, append(base, opts...)...)
}

var (
	a     = key.UnicodeCode('a')
	b     = key.UnicodeCode('b')
	enter = key.VirtualCode(keycode.Enter)
	shift = key.VirtualCode(keycode.LShift)
)

func TestBuildFirstPressHasNoCollision(t *testing.T) {
	step := Build(key.New(a), Previous{})
	assert.Equal(t, []key.Record{key.Down(a), key.Up(a)}, step.Records)
	assert.Nil(t, step.Deferred)

	code, ok := step.Next.Code()
	assert.True(t, ok)
	assert.Equal(t, a, code)
}

func TestBuildHeldPress(t *testing.T) {
	step := Build(key.NewHeld(shift, 50*time.Millisecond), Previous{})
	assert.Equal(t, []key.Record{key.Down(shift)}, step.Records)
	require.NotNil(t, step.Deferred)
	assert.Equal(t, Deferred{Code: shift, Hold: 50 * time.Millisecond, Record: key.Up(shift)}, *step.Deferred)
}

func TestBuildCollision(t *testing.T) {
	tests := []struct {
		name     string
		prev     key.Press
		cur      key.Press
		expected []key.Record
	}{
		{
			name:     "same key unheld",
			prev:     key.New(a),
			cur:      key.New(a),
			expected: []key.Record{key.Up(a), key.Down(a), key.Up(a)},
		},
		{
			name:     "same key current held",
			prev:     key.New(a),
			cur:      key.NewHeld(a, time.Millisecond),
			expected: []key.Record{key.Up(a), key.Down(a)},
		},
		{
			name:     "previous held",
			prev:     key.NewHeld(a, time.Millisecond),
			cur:      key.New(a),
			expected: []key.Record{key.Down(a), key.Up(a)},
		},
		{
			name:     "different key",
			prev:     key.New(a),
			cur:      key.New(b),
			expected: []key.Record{key.Down(b), key.Up(b)},
		},
		{
			name:     "same value different kind",
			prev:     key.New(key.VirtualCode(0x41)),
			cur:      key.New(key.UnicodeCode(0x41)),
			expected: []key.Record{key.Down(key.UnicodeCode(0x41)), key.Up(key.UnicodeCode(0x41))},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			step := Build(tc.cur, After(tc.prev))
			assert.Equal(t, tc.expected, step.Records)
		})
	}
}

func TestPlanRecordCount(t *testing.T) {
	presses := []key.Press{
		key.New(a), key.New(a), key.New(a),
		key.NewHeld(shift, time.Millisecond),
		key.New(b), key.New(enter), key.New(enter),
	}
	plan := NewPlan(presses)

	// 7 downs + 6 unheld ups + 3 collisions (a,a / a,a / enter,enter).
	assert.Len(t, plan.Immediate, 7+6+3)
	assert.Len(t, plan.Deferred, 1)
	assert.False(t, plan.Empty())
	assert.True(t, NewPlan(nil).Empty())
}

func TestPlayEmptyChord(t *testing.T) {
	tx := &fakeTransmitter{}
	var states []State
	p := newTestPlayer(tx, WithStateHook(func(s State) { states = append(states, s) }))

	require.NoError(t, p.Play(context.Background(), nil))
	assert.Empty(t, tx.Calls())
	assert.Equal(t, []State{StateBuilt, StateDone}, states)
}

func TestPlaySinglePress(t *testing.T) {
	tx := &fakeTransmitter{}
	var states []State
	p := newTestPlayer(tx, WithStateHook(func(s State) { states = append(states, s) }))

	require.NoError(t, p.Play(context.Background(), []key.Press{key.New(enter)}))

	calls := tx.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []key.Record{key.Down(enter), key.Up(enter)}, calls[0])
	assert.Equal(t, []State{StateBuilt, StateImmediateSent, StateReleasesSettled, StateDone}, states)
}

func TestPlayRepeatedKey(t *testing.T) {
	tx := &fakeTransmitter{}
	p := newTestPlayer(tx)

	require.NoError(t, p.Play(context.Background(), []key.Press{key.New(a), key.New(a)}))

	calls := tx.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []key.Record{
		key.Down(a), key.Up(a),
		key.Up(a),
		key.Down(a), key.Up(a),
	}, calls[0])
}

func TestPlayHeldPressRealClock(t *testing.T) {
	tx := &fakeTransmitter{}
	p := newTestPlayer(tx)

	start := time.Now()
	require.NoError(t, p.Play(context.Background(), []key.Press{
		key.NewHeld(shift, 50*time.Millisecond),
		key.New(a),
	}))

	calls := tx.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []key.Record{key.Down(shift), key.Down(a), key.Up(a)}, calls[0])
	assert.Equal(t, []key.Record{key.Up(shift)}, calls[1])
	assert.GreaterOrEqual(t, tx.at[1].Sub(start), 50*time.Millisecond)
}

func TestPlayReleasesInHoldOrder(t *testing.T) {
	tx := &fakeTransmitter{}
	clock := &manualClock{}
	p := newTestPlayer(tx, WithClock(clock))

	done := make(chan error, 1)
	go func() {
		done <- p.Play(context.Background(), []key.Press{
			key.NewHeld(shift, 50*time.Millisecond),
			key.NewHeld(a, 10*time.Millisecond),
		})
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 2 }, time.Second, time.Millisecond)
	require.Len(t, tx.Calls(), 1)

	clock.Advance(10 * time.Millisecond)
	require.Eventually(t, func() bool { return len(tx.Calls()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []key.Record{key.Up(a)}, tx.Calls()[1])

	clock.Advance(40 * time.Millisecond)
	require.NoError(t, <-done)

	calls := tx.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []key.Record{key.Up(shift)}, calls[2])
}

func TestPlayZeroHoldIsDeferred(t *testing.T) {
	tx := &fakeTransmitter{}
	p := newTestPlayer(tx)

	require.NoError(t, p.Play(context.Background(), []key.Press{key.NewHeld(a, 0)}))

	calls := tx.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []key.Record{key.Down(a)}, calls[0])
	assert.Equal(t, []key.Record{key.Up(a)}, calls[1])
}

func TestPlayImmediateFailureSchedulesNothing(t *testing.T) {
	boom := errors.New("boom")
	tx := &fakeTransmitter{fail: func([]key.Record) error { return boom }}
	var states []State
	p := newTestPlayer(tx, WithStateHook(func(s State) { states = append(states, s) }))

	err := p.Play(context.Background(), []key.Press{
		key.New(a),
		key.NewHeld(shift, time.Millisecond),
	})
	require.Error(t, err)

	var te *TransmissionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, Immediate, te.Stage)
	assert.ErrorIs(t, err, boom)
	assert.True(t, NothingTyped(err))
	assert.False(t, Incomplete(err))

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, tx.Calls(), 1)
	assert.Equal(t, []State{StateBuilt, StateDone}, states)
}

func TestPlayDeferredFailureIsPartial(t *testing.T) {
	boom := errors.New("boom")
	tx := &fakeTransmitter{fail: func(batch []key.Record) error {
		if len(batch) == 1 && batch[0] == key.Up(shift) {
			return boom
		}
		return nil
	}}
	var states []State
	p := newTestPlayer(tx, WithStateHook(func(s State) { states = append(states, s) }))

	err := p.Play(context.Background(), []key.Press{
		key.NewHeld(shift, time.Millisecond),
		key.NewHeld(a, 2*time.Millisecond),
	})
	require.Error(t, err)

	var pf *PartialFailure
	require.ErrorAs(t, err, &pf)
	require.Len(t, pf.Failed, 1)
	assert.Equal(t, DeferredRelease(shift), pf.Failed[0].Stage)
	assert.Empty(t, pf.Canceled)
	assert.ErrorIs(t, err, boom)
	assert.True(t, Incomplete(err))
	assert.False(t, NothingTyped(err))

	// The sibling release still went out.
	assert.Len(t, tx.Calls(), 3)
	assert.Equal(t, []State{StateBuilt, StateImmediateSent, StatePartialFailure, StateDone}, states)
}

func TestPlayCanceledBeforeStart(t *testing.T) {
	tx := &fakeTransmitter{}
	p := newTestPlayer(tx)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Play(ctx, []key.Press{key.New(a)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, NothingTyped(err))
	assert.Empty(t, tx.Calls())
}

func TestPlayCanceledDuringHold(t *testing.T) {
	tx := &fakeTransmitter{}
	clock := &manualClock{}
	p := newTestPlayer(tx, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, []key.Press{
			key.NewHeld(shift, time.Second),
			key.NewHeld(a, 10*time.Millisecond),
		})
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 2 }, time.Second, time.Millisecond)
	clock.Advance(10 * time.Millisecond)
	require.Eventually(t, func() bool { return len(tx.Calls()) == 2 }, time.Second, time.Millisecond)

	cancel()
	err := <-done
	require.Error(t, err)

	var pf *PartialFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, []key.Code{shift}, pf.Canceled)
	assert.Empty(t, pf.Failed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, Incomplete(err))

	// No compensating release for the canceled key.
	assert.Len(t, tx.Calls(), 2)
}

func TestPlayRecordsMetrics(t *testing.T) {
	tx := &fakeTransmitter{}
	m := metrics.NewPlaybackMetrics(metrics.NewRegistry("test"))
	p := newTestPlayer(tx, WithMetrics(m))

	require.NoError(t, p.Play(context.Background(), []key.Press{
		key.New(a),
		key.NewHeld(shift, 0),
	}))

	assert.Equal(t, uint64(1), m.PlaybacksTotal.Value())
	assert.Equal(t, uint64(2), m.BatchesTotal.Value())
	assert.Equal(t, uint64(4), m.RecordsTotal.Value())
	assert.Equal(t, uint64(0), m.TransmitFailuresTotal.Value())
	assert.Equal(t, int64(0), m.DeferredPending.Value())
	assert.Equal(t, uint64(2), m.TransmitSeconds.Count())
}

func TestPartialFailureMessage(t *testing.T) {
	err := &PartialFailure{
		Canceled: []key.Code{shift},
		Cause:    context.Canceled,
	}
	assert.Equal(t, "playback incomplete: 1 release(s) canceled: context canceled", err.Error())

	err = &PartialFailure{
		Failed: []*TransmissionError{{Stage: DeferredRelease(enter), Err: errors.New("denied")}},
	}
	assert.Equal(t, "playback incomplete: 1 release(s) failed: transmit deferred release of vk:Enter: denied", err.Error())
}

func TestStageFromContext(t *testing.T) {
	var (
		mu     sync.Mutex
		stages []Stage
	)
	tx := TransmitterFunc(func(ctx context.Context, _ []key.Record) error {
		s, ok := StageFromContext(ctx)
		require.True(t, ok)
		mu.Lock()
		stages = append(stages, s)
		mu.Unlock()
		return nil
	})
	p := newTestPlayer(tx)

	require.NoError(t, p.Play(context.Background(), []key.Press{key.New(a), key.NewHeld(shift, 0)}))
	assert.Equal(t, []Stage{Immediate, DeferredRelease(shift)}, stages)

	_, ok := StageFromContext(context.Background())
	assert.False(t, ok)
}
