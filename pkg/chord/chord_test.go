package chord

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chords/internal/metrics"
	"chords/pkg/key"
	"chords/pkg/keycode"
	"chords/pkg/playback"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]key.Record
}

func (r *recorder) Transmit(_ context.Context, batch []key.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, batch)
	return nil
}

func quiet() []playback.Option {
	return []playback.Option{
		playback.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		playback.WithMetrics(metrics.NewPlaybackMetrics(metrics.NewRegistry("test"))),
	}
}

func TestFromUTF16ThenEnter(t *testing.T) {
	c := FromUTF16(utf16.Encode([]rune("Hi")))
	c.PushVirtual(keycode.Enter)

	presses := c.Presses()
	require.Len(t, presses, 3)
	assert.Equal(t, key.UnicodeCode('H'), presses[0].Code())
	assert.Equal(t, key.UnicodeCode('i'), presses[1].Code())
	assert.True(t, presses[2].Code().IsVirtual())
	assert.Equal(t, key.VirtualCode(keycode.Enter), presses[2].Code())
}

func TestFromStringSurrogates(t *testing.T) {
	c := FromString("a😀")
	presses := c.Presses()
	require.Len(t, presses, 3)
	assert.Equal(t, key.UnicodeCode(0xD83D), presses[1].Code())
	assert.Equal(t, key.UnicodeCode(0xDE00), presses[2].Code())
}

func TestDefaultHold(t *testing.T) {
	c := FromString("ab", WithDefaultHold(20*time.Millisecond))
	c.PushVirtual(keycode.Enter)
	c.PushText("c")

	presses := c.Presses()
	require.Len(t, presses, 4)

	for _, i := range []int{0, 1, 3} {
		d, held := presses[i].Hold()
		assert.True(t, held)
		assert.Equal(t, 20*time.Millisecond, d)
	}
	_, held := presses[2].Hold()
	assert.False(t, held, "explicit push keeps its own hold")
}

func TestNoDefaultHold(t *testing.T) {
	for _, p := range FromString("xyz").Presses() {
		_, held := p.Hold()
		assert.False(t, held)
	}
}

func TestPressesCopy(t *testing.T) {
	c := FromString("a")
	presses := c.Presses()
	presses[0] = key.Virtual(keycode.Tab)
	assert.Equal(t, key.UnicodeCode('a'), c.Presses()[0].Code())
}

func TestPlayConsumes(t *testing.T) {
	rec := &recorder{}
	c := New().PushUnicode('a').PushVirtualHeld(keycode.LShift, 0)

	require.NoError(t, c.Play(context.Background(), rec, quiet()...))
	assert.Len(t, rec.calls, 2)

	err := c.Play(context.Background(), rec, quiet()...)
	assert.ErrorIs(t, err, ErrConsumed)
	assert.Len(t, rec.calls, 2)
}

func TestPushAfterPlayIgnored(t *testing.T) {
	rec := &recorder{}
	c := FromString("a")
	require.NoError(t, c.Play(context.Background(), rec, quiet()...))

	c.PushVirtual(keycode.Enter).PushText("bc").Push(key.Unicode('d'))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []key.Press{key.Unicode('a')}, c.Presses())
}

func TestPlayEmpty(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, New().Play(context.Background(), rec, quiet()...))
	assert.Empty(t, rec.calls)
}

func TestPlayAfter(t *testing.T) {
	rec := &recorder{}
	start := time.Now()
	require.NoError(t, FromString("a").PlayAfter(context.Background(), 20*time.Millisecond, rec, quiet()...))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, rec.calls, 1)
}

func TestPlayAfterCanceled(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := FromString("a")
	err := c.PlayAfter(ctx, time.Hour, rec, quiet()...)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
	assert.ErrorIs(t, c.Play(context.Background(), rec), ErrConsumed)
}
