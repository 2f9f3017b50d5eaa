// Package backend delivers key records to the host OS input-injection facility.
//
// Platform support:
//   - Windows: SendInput, one call per batch
//   - Linux: a uinput virtual keyboard (requires write access to /dev/uinput)
//   - Everywhere: the dryrun recorder
package backend

import (
	"errors"
	"fmt"
	"runtime"

	"chords/internal/config"
	"chords/pkg/playback"
)

var (
	// ErrNotAvailable is returned when a backend cannot run on this host.
	ErrNotAvailable = errors.New("backend not available on this platform")
	// ErrUnknownBackend is returned for names outside config.Backends.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrUnsupportedKey is returned when a record has no mapping for the backend.
	ErrUnsupportedKey = errors.New("key not supported by backend")
)

// Backend transmits batches of key records.
type Backend interface {
	playback.Transmitter

	// Name returns the backend name as used in configuration.
	Name() string

	// Available reports whether the backend can inject input with the
	// current permissions, with a human-readable reason.
	Available() (bool, string)

	// Close releases OS resources. The backend must not be used afterwards.
	Close() error
}

type factory func(cfg config.BackendConfig) (Backend, error)

// New creates the named backend. An empty name uses cfg.Name; "auto" picks
// the native backend for this platform.
func New(name string, cfg config.BackendConfig) (Backend, error) {
	if name == "" {
		name = cfg.Name
	}

	switch name {
	case "dryrun":
		return NewRecorder(nil), nil
	case "", "auto":
		if nativeName == "" {
			return nil, fmt.Errorf("%w: no native backend for %s", ErrNotAvailable, runtime.GOOS)
		}
		name = nativeName
	}

	if f, ok := natives[name]; ok {
		return f(cfg)
	}
	for _, known := range config.Backends {
		if name == known {
			return nil, fmt.Errorf("%w: %s on %s", ErrNotAvailable, name, runtime.GOOS)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}
