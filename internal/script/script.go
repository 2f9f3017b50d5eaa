// Package script loads chord scripts from YAML, JSON or TOML files.
//
// A script is validated against an embedded JSON Schema before it is decoded:
//
//	delay: 2s
//	default_hold: 10ms
//	steps:
//	  - text: "Hello, world!"
//	  - key: Enter
//	  - key: LShift
//	    hold: 50ms
package script

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"chords/pkg/chord"
	"chords/pkg/key"
	"chords/pkg/keycode"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "schema.json"

var (
	// ErrInvalid is returned when a script does not match the schema.
	ErrInvalid = errors.New("invalid script")
	// ErrUnknownKey is returned for key names missing from the catalog.
	ErrUnknownKey = errors.New("unknown key")
	// ErrUnknownFormat is returned for unsupported file extensions.
	ErrUnknownFormat = errors.New("unknown script format")
)

// Format is a script encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Script is a decoded chord script.
type Script struct {
	Version     int    `json:"version,omitempty"`
	Delay       string `json:"delay,omitempty"`
	DefaultHold string `json:"default_hold,omitempty"`
	Steps       []Step `json:"steps"`

	// Path is the file the script was loaded from, if any.
	Path string `json:"-"`
}

// Step is one entry of a script. Exactly one of Text, Key and Unicode is set.
type Step struct {
	Text    *string `json:"text,omitempty"`
	Key     string  `json:"key,omitempty"`
	Unicode *uint16 `json:"unicode,omitempty"`
	Hold    string  `json:"hold,omitempty"`
	Repeat  int     `json:"repeat,omitempty"`
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	s.Path = path
	return s, nil
}

// Parse decodes and validates a script.
func Parse(data []byte, format Format) (*Script, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}

	// Every format is normalized to JSON so one schema and one decoder apply.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize script: %w", err)
	}

	schema, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return nil, fmt.Errorf("normalize script: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var s Script
	if err := json.Unmarshal(normalized, &s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}

// StartDelay returns the delay before playback, zero when unset.
func (s *Script) StartDelay() (time.Duration, error) {
	return parseDuration("delay", s.Delay)
}

// Chord builds the chord described by the script. opts apply first, so a
// default_hold in the script wins over one passed by the caller.
func (s *Script) Chord(opts ...chord.Option) (*chord.Chord, error) {
	if s.DefaultHold != "" {
		d, err := parseDuration("default_hold", s.DefaultHold)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chord.WithDefaultHold(d))
	}
	c := chord.New(opts...)

	for i, step := range s.Steps {
		hold, err := parseDuration("hold", step.Hold)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		held := step.Hold != ""

		repeat := max(step.Repeat, 1)
		for range repeat {
			switch {
			case step.Text != nil:
				if !held {
					c.PushText(*step.Text)
					continue
				}
				for _, u := range utf16.Encode([]rune(*step.Text)) {
					c.Push(key.UnicodeHeld(u, hold))
				}

			case step.Key != "":
				vk, ok := keycode.Lookup(step.Key)
				if !ok {
					return nil, fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownKey, step.Key)
				}
				if held {
					c.PushVirtualHeld(vk, hold)
				} else {
					c.PushVirtual(vk)
				}

			case step.Unicode != nil:
				if held {
					c.Push(key.UnicodeHeld(*step.Unicode, hold))
				} else {
					c.PushUnicode(*step.Unicode)
				}
			}
		}
	}
	return c, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
