package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chords/internal/config"
	"chords/internal/logging"
	"chords/internal/metrics"
	"chords/pkg/key"
	"chords/pkg/keycode"
	"chords/pkg/playback"
)

func TestNewDryrun(t *testing.T) {
	b, err := New("dryrun", config.DefaultConfig().Backend)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "dryrun", b.Name())
	ok, _ := b.Available()
	assert.True(t, ok)
}

func TestNewUsesConfigName(t *testing.T) {
	cfg := config.DefaultConfig().Backend
	cfg.Name = "dryrun"

	b, err := New("", cfg)
	require.NoError(t, err)
	assert.Equal(t, "dryrun", b.Name())
}

func TestNewUnknown(t *testing.T) {
	_, err := New("xdotool", config.DefaultConfig().Backend)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewForeignPlatform(t *testing.T) {
	name := "sendinput"
	if runtime.GOOS == "windows" {
		name = "uinput"
	}
	_, err := New(name, config.DefaultConfig().Backend)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestRecorderWithPlayer(t *testing.T) {
	var out bytes.Buffer
	rec := NewRecorder(&out)
	p := playback.NewPlayer(rec,
		playback.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		playback.WithMetrics(metrics.NewPlaybackMetrics(metrics.NewRegistry("test"))),
	)

	a := key.UnicodeCode('a')
	shift := key.VirtualCode(keycode.LShift)
	require.NoError(t, p.Play(context.Background(), []key.Press{key.New(a), key.NewHeld(shift, 0)}))

	batches := rec.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, playback.Immediate, batches[0].Stage)
	assert.Equal(t, []key.Record{key.Down(a), key.Up(a), key.Down(shift)}, batches[0].Records)
	assert.Equal(t, playback.DeferredRelease(shift), batches[1].Stage)
	assert.False(t, batches[1].At.Before(batches[0].At))

	assert.Equal(t,
		"[immediate batch] down u:'a', up u:'a', down vk:LShift\n"+
			"[deferred release of vk:LShift] up vk:LShift\n",
		out.String())

	rec.Reset()
	assert.Empty(t, rec.Batches())
}

type memJournal struct {
	mu     sync.Mutex
	runs   []string
	stages []playback.Stage
	errs   []error
	fail   error
}

func (m *memJournal) RecordBatch(runID string, stage playback.Stage, _ []key.Record, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, runID)
	m.stages = append(m.stages, stage)
	m.errs = append(m.errs, err)
	return m.fail
}

type failing struct {
	*Recorder
	err error
}

func (f failing) Transmit(ctx context.Context, batch []key.Record) error {
	_ = f.Recorder.Transmit(ctx, batch)
	return f.err
}

func TestJournaled(t *testing.T) {
	j := &memJournal{}
	boom := errors.New("boom")
	b := Journaled(failing{Recorder: NewRecorder(nil), err: boom}, j, slog.New(slog.NewTextHandler(io.Discard, nil)))

	batch := []key.Record{key.Down(key.UnicodeCode('x'))}

	// Calls outside a run are not journaled.
	assert.ErrorIs(t, b.Transmit(context.Background(), batch), boom)
	assert.Empty(t, j.runs)

	ctx := logging.ContextWithRunID(context.Background(), "run-7")
	assert.ErrorIs(t, b.Transmit(ctx, batch), boom)
	require.Len(t, j.runs, 1)
	assert.Equal(t, "run-7", j.runs[0])
	assert.ErrorIs(t, j.errs[0], boom)
	assert.Equal(t, "dryrun", b.Name())
}

func TestJournalFailureDoesNotFailTransmit(t *testing.T) {
	j := &memJournal{fail: errors.New("disk full")}
	b := Journaled(NewRecorder(nil), j, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := logging.ContextWithRunID(context.Background(), "run-8")
	assert.NoError(t, b.Transmit(ctx, []key.Record{key.Up(key.UnicodeCode('x'))}))
}

func TestInputLayout(t *testing.T) {
	var in input
	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(40), unsafe.Sizeof(in))
		assert.Equal(t, uintptr(8), unsafe.Offsetof(in.Ki))
	} else {
		assert.Equal(t, uintptr(28), unsafe.Sizeof(in))
	}
}

func TestToInput(t *testing.T) {
	tests := []struct {
		name   string
		record key.Record
		vk     uint16
		scan   uint16
		flags  uint32
	}{
		{"virtual down", key.Down(key.VirtualCode(keycode.Enter)), 0x0D, 0x0D, 0},
		{"virtual up", key.Up(key.VirtualCode(keycode.Enter)), 0x0D, 0x0D, keyeventfKeyUp},
		{"unicode down", key.Down(key.UnicodeCode('é')), 0, 0xE9, keyeventfUnicode},
		{"unicode up", key.Up(key.UnicodeCode('é')), 0, 0xE9, keyeventfUnicode | keyeventfKeyUp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, err := toInput(tc.record)
			require.NoError(t, err)
			assert.Equal(t, uint32(inputKeyboard), in.Type)
			assert.Equal(t, tc.vk, in.Ki.Vk)
			assert.Equal(t, tc.scan, in.Ki.Scan)
			assert.Equal(t, tc.flags, in.Ki.Flags)
		})
	}

	_, err := toInputs([]key.Record{key.Down(key.UnicodeCode('a')), {Code: key.Code{Value: 1}}})
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestToStrokes(t *testing.T) {
	tests := []struct {
		name     string
		record   key.Record
		expected []stroke
	}{
		{"virtual", key.Down(key.VirtualCode(keycode.Enter)), []stroke{{code: 28}}},
		{"lower", key.Up(key.UnicodeCode('h')), []stroke{{code: 35, up: true}}},
		{"upper down", key.Down(key.UnicodeCode('H')), []stroke{{code: keycode.EvdevLeftShift}, {code: 35}}},
		{"upper up", key.Up(key.UnicodeCode('H')), []stroke{{code: 35, up: true}, {code: keycode.EvdevLeftShift, up: true}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := toStrokes(tc.record)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}

	_, err := toStrokeBatch([]key.Record{key.Down(key.UnicodeCode('a')), key.Down(key.UnicodeCode(0xD83D))})
	assert.ErrorIs(t, err, ErrUnsupportedKey)

	_, err = toStrokes(key.Down(key.VirtualCode(keycode.LMouseButton)))
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestRecorderConcurrent(t *testing.T) {
	rec := NewRecorder(nil)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.Transmit(context.Background(), []key.Record{key.Up(key.UnicodeCode('z'))})
		}()
	}
	wg.Wait()
	assert.Len(t, rec.Batches(), 10)
}
