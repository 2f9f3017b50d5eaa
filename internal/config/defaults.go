package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/chords/
//   - Linux:   $XDG_DATA_HOME/chords/ or ~/.local/share/chords/
//   - Windows: %APPDATA%\chords\
//
// CHORDS_DATA_DIR overrides all of them.
func DataDir() string {
	if dir := os.Getenv("CHORDS_DATA_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "chords")
	case "windows":
		return filepath.Join(appData(), "chords")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "chords")
		}
		return filepath.Join(homeDir(), ".local", "share", "chords")
	}
}

// ConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/chords/
//   - Linux:   $XDG_CONFIG_HOME/chords/ or ~/.config/chords/
//   - Windows: %APPDATA%\chords\
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return DataDir()
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "chords")
		}
		return filepath.Join(homeDir(), ".config", "chords")
	}
}

// LogDir returns the platform-specific log directory.
func LogDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Logs", "chords")
	default:
		return filepath.Join(DataDir(), "logs")
	}
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}

func appData() string {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), "AppData", "Roaming")
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{"toml", "json", "yaml", "yml"}
}

// FindConfigFile searches for a config file in the current directory and
// then the config directory. Returns "" if none is found.
func FindConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, ext := range SupportedConfigFormats() {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
