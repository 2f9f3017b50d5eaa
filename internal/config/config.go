// Package config handles configuration loading, validation, and management for chords.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"chords/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete chordsctl configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Playback configuration for chords built from text.
	Playback PlaybackConfig `toml:"playback" json:"playback" yaml:"playback"`

	// Backend selects and configures the OS injection backend.
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`

	// Journal configuration for the playback history database.
	Journal JournalConfig `toml:"journal" json:"journal" yaml:"journal"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// PlaybackConfig holds playback defaults. Durations are Go duration strings.
type PlaybackConfig struct {
	// DefaultHold is applied to every press synthesized from text.
	// Empty means presses are released in the immediate batch.
	DefaultHold string `toml:"default_hold" json:"default_hold" yaml:"default_hold"`

	// StartDelay is waited before playback starts, giving the user time
	// to focus the target window.
	StartDelay string `toml:"start_delay" json:"start_delay" yaml:"start_delay"`
}

// Hold returns the parsed default hold and whether one is configured.
func (p PlaybackConfig) Hold() (time.Duration, bool, error) {
	if p.DefaultHold == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(p.DefaultHold)
	if err != nil {
		return 0, false, fmt.Errorf("default_hold: %w", err)
	}
	return d, true, nil
}

// Delay returns the parsed start delay, zero when unset.
func (p PlaybackConfig) Delay() (time.Duration, error) {
	if p.StartDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.StartDelay)
	if err != nil {
		return 0, fmt.Errorf("start_delay: %w", err)
	}
	return d, nil
}

// BackendConfig holds injection backend configuration.
type BackendConfig struct {
	// Name is one of "auto", "sendinput", "uinput", "dryrun".
	Name string `toml:"name" json:"name" yaml:"name"`

	// UinputDevice is the uinput control device (Linux only).
	UinputDevice string `toml:"uinput_device" json:"uinput_device" yaml:"uinput_device"`

	// DeviceName is the name the virtual keyboard registers under.
	DeviceName string `toml:"device_name" json:"device_name" yaml:"device_name"`

	// SettleMs is how long to wait after creating a virtual device before
	// the first event, so the display server can pick it up.
	SettleMs int `toml:"settle_ms" json:"settle_ms" yaml:"settle_ms"`
}

// JournalConfig holds playback journal configuration.
type JournalConfig struct {
	// Enabled turns on recording of runs and batches.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stdout", "stderr", "file", "both" or "discard".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is used when Output includes a file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// LoggerConfig converts the section into a logging configuration.
func (l LoggingConfig) LoggerConfig() (*logging.Config, error) {
	cfg := logging.DefaultConfig()

	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.Format)
	if err != nil {
		return nil, err
	}

	cfg.Level = level
	cfg.Format = format
	if l.Output != "" {
		cfg.Output = l.Output
	}
	if l.FilePath != "" {
		cfg.FilePath = l.FilePath
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := DataDir()

	return &Config{
		Version: Version,
		Playback: PlaybackConfig{
			StartDelay: "0s",
		},
		Backend: BackendConfig{
			Name:         "auto",
			UinputDevice: "/dev/uinput",
			DeviceName:   "chords virtual keyboard",
			SettleMs:     200,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    filepath.Join(dir, "journal.db"),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: filepath.Join(LogDir(), "chords.log"),
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
// Environment overrides are applied; the result is not validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// loadConfigFromFile reads and parses a config file based on its extension.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(data, filepath.Ext(path), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, ext string, cfg *Config) error {
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode config (unknown format): %w", err)
		}
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with CHORDS_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Playback overrides
	if v := os.Getenv("CHORDS_DEFAULT_HOLD"); v != "" {
		c.Playback.DefaultHold = v
	}
	if v := os.Getenv("CHORDS_START_DELAY"); v != "" {
		c.Playback.StartDelay = v
	}

	// Backend overrides
	if v := os.Getenv("CHORDS_BACKEND"); v != "" {
		c.Backend.Name = v
	}
	if v := os.Getenv("CHORDS_UINPUT_DEVICE"); v != "" {
		c.Backend.UinputDevice = v
	}

	// Journal overrides
	if v := os.Getenv("CHORDS_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("CHORDS_JOURNAL"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = enabled
		}
	}

	// Logging overrides
	if v := os.Getenv("CHORDS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHORDS_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Version:  c.Version,
		Playback: c.Playback,
		Backend:  c.Backend,
		Journal:  c.Journal,
		Logging:  c.Logging,
	}
}

// EnsureDirectories creates the directories the journal and log file live in.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Logging.FilePath),
	}
	if c.Journal.Enabled {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
