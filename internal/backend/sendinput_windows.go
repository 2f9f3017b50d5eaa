//go:build windows

package backend

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"chords/internal/config"
	"chords/pkg/key"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const nativeName = "sendinput"

var natives = map[string]factory{
	"sendinput": newSendInput,
}

// sendInput injects batches with a single SendInput call each, so the OS
// applies the records atomically and in order.
type sendInput struct {
	mu sync.Mutex
}

func newSendInput(config.BackendConfig) (Backend, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	return &sendInput{}, nil
}

func (s *sendInput) Name() string { return "sendinput" }

func (s *sendInput) Available() (bool, string) {
	if err := procSendInput.Find(); err != nil {
		return false, fmt.Sprintf("SendInput not found: %v", err)
	}
	return true, "SendInput (input may be blocked by UIPI for elevated windows)"
}

func (s *sendInput) Transmit(ctx context.Context, batch []key.Record) error {
	if len(batch) == 0 {
		return nil
	}
	inputs, err := toInputs(batch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, _, callErr := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput inserted %d of %d events: %w", n, len(inputs), callErr)
	}
	return nil
}

func (s *sendInput) Close() error { return nil }
