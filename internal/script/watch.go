package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"chords/internal/logging"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce collapses bursts of writes. Defaults to 100ms.
	Debounce time.Duration
	// Logger receives reload failures. Defaults to the "script" component.
	Logger *slog.Logger
}

// Watch calls fn with the re-parsed script every time the file at path is
// written. Scripts that fail to parse are logged and skipped. Watch blocks
// until ctx is done or fn returns an error; fn runs on the watch goroutine,
// so a slow fn delays the next reload.
func Watch(ctx context.Context, path string, fn func(*Script) error, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = logging.Component("script")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s, err := Load(path)
			if err != nil {
				log.WarnContext(ctx, "script reload failed", "path", path, "error", err)
				continue
			}
			log.DebugContext(ctx, "script reloaded", "path", path, "steps", len(s.Steps))
			if err := fn(s); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WarnContext(ctx, "watch error", "path", path, "error", err)
		}
	}
}
