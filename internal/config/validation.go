package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Backends lists the accepted backend names.
var Backends = []string{"auto", "sendinput", "uinput", "dryrun"}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validatePlayback(&c.Playback)...)
	errs = append(errs, validateBackend(&c.Backend)...)
	errs = append(errs, validateJournal(&c.Journal)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePlayback(p *PlaybackConfig) ValidationErrors {
	var errs ValidationErrors

	check := func(field, value string) {
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid duration %q", value),
			})
			return
		}
		if d < 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "duration cannot be negative",
			})
		}
	}
	check("playback.default_hold", p.DefaultHold)
	check("playback.start_delay", p.StartDelay)

	return errs
}

func validateBackend(b *BackendConfig) ValidationErrors {
	var errs ValidationErrors

	known := false
	for _, name := range Backends {
		if b.Name == name {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, ValidationError{
			Field:   "backend.name",
			Message: fmt.Sprintf("invalid backend: %s (valid: %s)", b.Name, strings.Join(Backends, ", ")),
		})
	}

	if b.Name == "uinput" && b.UinputDevice == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.uinput_device",
			Message: "device path is required for the uinput backend",
		})
	}

	if len(b.DeviceName) > 80 {
		errs = append(errs, ValidationError{
			Field:   "backend.device_name",
			Message: "device name cannot exceed 80 bytes",
		})
	}

	if b.SettleMs < 0 || b.SettleMs > 10000 {
		errs = append(errs, ValidationError{
			Field:   "backend.settle_ms",
			Message: "settle time must be between 0 and 10000ms",
		})
	}

	return errs
}

func validateJournal(j *JournalConfig) ValidationErrors {
	var errs ValidationErrors

	if j.Enabled && expandPath(j.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "path is required when the journal is enabled",
		})
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr", "discard":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both, discard)", l.Output),
		})
	}

	return errs
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
