// Package key defines the platform-independent key press model.
//
// A Code identifies a key either as a virtual key (a named physical or
// function key) or as a UTF-16 code unit to be typed as text. The variant
// decides how a backend maps the code onto its OS-level record, so two codes
// with the same numeric value but different kinds are distinct keys.
package key

import (
	"fmt"
	"time"

	"chords/pkg/keycode"
)

// Kind is the variant of a Code.
type Kind uint8

const (
	// KindVirtual codes are virtual-key codes from the keycode catalog.
	KindVirtual Kind = iota + 1
	// KindUnicode codes are UTF-16 code units.
	KindUnicode
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindVirtual:
		return "virtual"
	case KindUnicode:
		return "unicode"
	default:
		return "unknown"
	}
}

// Code is the identity of a key. Codes are comparable with ==.
type Code struct {
	Kind  Kind
	Value uint16
}

// VirtualCode returns the identity of a virtual key.
func VirtualCode(vk keycode.VirtualKey) Code {
	return Code{Kind: KindVirtual, Value: uint16(vk)}
}

// UnicodeCode returns the identity of a UTF-16 code unit.
func UnicodeCode(unit uint16) Code {
	return Code{Kind: KindUnicode, Value: unit}
}

// IsVirtual reports whether c is a virtual key.
func (c Code) IsVirtual() bool { return c.Kind == KindVirtual }

// IsUnicode reports whether c is a UTF-16 code unit.
func (c Code) IsUnicode() bool { return c.Kind == KindUnicode }

func (c Code) String() string {
	switch c.Kind {
	case KindVirtual:
		return "vk:" + keycode.VirtualKey(c.Value).String()
	case KindUnicode:
		if c.Value >= 0x20 && c.Value < 0x7f {
			return fmt.Sprintf("u:%q", rune(c.Value))
		}
		return fmt.Sprintf("u:U+%04X", c.Value)
	default:
		return fmt.Sprintf("invalid:%d", c.Value)
	}
}

// Press is a single key press: a key-down followed by a key-up, with an
// optional hold between the two. Presses are immutable.
type Press struct {
	code Code
	hold time.Duration
	held bool
}

// New returns a press with no hold: the key is released in the same batch it
// is pressed in.
func New(code Code) Press {
	return Press{code: code}
}

// NewHeld returns a press whose release is deferred by d. Negative durations
// are treated as zero; a zero hold is still a deferred release.
func NewHeld(code Code, d time.Duration) Press {
	if d < 0 {
		d = 0
	}
	return Press{code: code, hold: d, held: true}
}

// Unicode returns an unheld press of a UTF-16 code unit.
func Unicode(unit uint16) Press { return New(UnicodeCode(unit)) }

// UnicodeHeld returns a press of a UTF-16 code unit held for d.
func UnicodeHeld(unit uint16, d time.Duration) Press { return NewHeld(UnicodeCode(unit), d) }

// Virtual returns an unheld press of a virtual key.
func Virtual(vk keycode.VirtualKey) Press { return New(VirtualCode(vk)) }

// VirtualHeld returns a press of a virtual key held for d.
func VirtualHeld(vk keycode.VirtualKey, d time.Duration) Press {
	return NewHeld(VirtualCode(vk), d)
}

// Code returns the identity of the pressed key.
func (p Press) Code() Code { return p.code }

// Hold returns the hold duration and whether the press has one.
func (p Press) Hold() (time.Duration, bool) { return p.hold, p.held }

func (p Press) String() string {
	if p.held {
		return fmt.Sprintf("%s hold=%s", p.code, p.hold)
	}
	return p.code.String()
}

// Record is one low-level key event: a down or an up for a Code.
// Backends translate records into their OS structures.
type Record struct {
	Code Code
	Up   bool
}

// Down returns a key-down record for c.
func Down(c Code) Record { return Record{Code: c} }

// Up returns a key-up record for c.
func Up(c Code) Record { return Record{Code: c, Up: true} }

func (r Record) String() string {
	if r.Up {
		return "up " + r.Code.String()
	}
	return "down " + r.Code.String()
}
