//go:build linux

package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bendahl/uinput"
	"golang.org/x/sys/unix"

	"chords/internal/config"
	"chords/pkg/key"
)

const nativeName = "uinput"

var natives = map[string]factory{
	"uinput": newUinput,
}

// uinputBackend types through a virtual keyboard device. uinput has no
// batch call, so the mutex keeps one batch's strokes contiguous.
type uinputBackend struct {
	mu   sync.Mutex
	kbd  uinput.Keyboard
	path string
}

func newUinput(cfg config.BackendConfig) (Backend, error) {
	if err := unix.Access(cfg.UinputDevice, unix.W_OK); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAvailable, cfg.UinputDevice, err)
	}

	kbd, err := uinput.CreateKeyboard(cfg.UinputDevice, []byte(cfg.DeviceName))
	if err != nil {
		return nil, fmt.Errorf("create uinput keyboard: %w", err)
	}

	// The display server needs a moment to pick up the new device.
	if cfg.SettleMs > 0 {
		time.Sleep(time.Duration(cfg.SettleMs) * time.Millisecond)
	}

	return &uinputBackend{kbd: kbd, path: cfg.UinputDevice}, nil
}

func (u *uinputBackend) Name() string { return "uinput" }

func (u *uinputBackend) Available() (bool, string) {
	if err := unix.Access(u.path, unix.W_OK); err != nil {
		return false, fmt.Sprintf("cannot write %s (need to be in 'input' group or run as root): %v", u.path, err)
	}
	return true, fmt.Sprintf("virtual keyboard on %s", u.path)
}

func (u *uinputBackend) Transmit(ctx context.Context, batch []key.Record) error {
	strokes, err := toStrokeBatch(batch)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	for i, s := range strokes {
		if s.up {
			err = u.kbd.KeyUp(s.code)
		} else {
			err = u.kbd.KeyDown(s.code)
		}
		if err != nil {
			return fmt.Errorf("uinput stroke %d of %d: %w", i+1, len(strokes), err)
		}
	}
	return nil
}

func (u *uinputBackend) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.kbd.Close()
}
