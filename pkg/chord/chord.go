// Package chord builds ordered sequences of key presses and plays them.
//
//	c := chord.FromString("Hi")
//	c.PushVirtual(keycode.Enter)
//	err := c.Play(ctx, backend)
//
// A Chord is a flat sequence. Modifier combinations are expressed as a held
// modifier press followed by the keys typed while it is down.
package chord

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf16"

	"chords/pkg/key"
	"chords/pkg/keycode"
	"chords/pkg/playback"
)

// ErrConsumed is returned when a chord is played a second time.
var ErrConsumed = errors.New("chord already played")

// Chord is an ordered, append-only sequence of presses. It is consumed by
// the first call to Play or PlayAfter; pushes after that have no effect.
type Chord struct {
	mu       sync.Mutex
	presses  []key.Press
	hold     time.Duration
	held     bool
	consumed bool
}

// Option configures a chord built from text.
type Option func(*Chord)

// WithDefaultHold gives every press synthesized from text a hold of d.
// Presses pushed explicitly are not affected.
func WithDefaultHold(d time.Duration) Option {
	return func(c *Chord) {
		c.hold = d
		c.held = true
	}
}

// New returns an empty chord.
func New(opts ...Option) *Chord {
	c := &Chord{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromUTF16 returns a chord with one press per code unit.
func FromUTF16(units []uint16, opts ...Option) *Chord {
	c := New(opts...)
	c.pushUnits(units)
	return c
}

// FromString returns a chord typing s. Characters outside the Basic
// Multilingual Plane become two presses, one per surrogate.
func FromString(s string, opts ...Option) *Chord {
	return FromUTF16(utf16.Encode([]rune(s)), opts...)
}

// Push appends p. It does nothing once the chord has been played.
func (c *Chord) Push(p key.Press) *Chord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return c
	}
	c.presses = append(c.presses, p)
	return c
}

// PushVirtual appends an unheld press of vk.
func (c *Chord) PushVirtual(vk keycode.VirtualKey) *Chord {
	return c.Push(key.Virtual(vk))
}

// PushVirtualHeld appends a press of vk held for d.
func (c *Chord) PushVirtualHeld(vk keycode.VirtualKey, d time.Duration) *Chord {
	return c.Push(key.VirtualHeld(vk, d))
}

// PushUnicode appends an unheld press of a UTF-16 code unit.
func (c *Chord) PushUnicode(unit uint16) *Chord {
	return c.Push(key.Unicode(unit))
}

// PushText appends one press per UTF-16 unit of s, using the default hold.
func (c *Chord) PushText(s string) *Chord {
	c.pushUnits(utf16.Encode([]rune(s)))
	return c
}

func (c *Chord) pushUnits(units []uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return
	}
	for _, u := range units {
		if c.held {
			c.presses = append(c.presses, key.UnicodeHeld(u, c.hold))
		} else {
			c.presses = append(c.presses, key.Unicode(u))
		}
	}
}

// Len returns the number of presses.
func (c *Chord) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.presses)
}

// Presses returns a copy of the presses in order.
func (c *Chord) Presses() []key.Press {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]key.Press(nil), c.presses...)
}

func (c *Chord) take() ([]key.Press, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return nil, ErrConsumed
	}
	c.consumed = true
	return c.presses, nil
}

// Play consumes the chord and transmits it through tx.
// See playback.Player.Play for the result semantics.
func (c *Chord) Play(ctx context.Context, tx playback.Transmitter, opts ...playback.Option) error {
	presses, err := c.take()
	if err != nil {
		return err
	}
	return playback.NewPlayer(tx, opts...).Play(ctx, presses)
}

// PlayAfter waits delay, then plays the chord. The chord is consumed even if
// ctx is done before the delay elapses.
func (c *Chord) PlayAfter(ctx context.Context, delay time.Duration, tx playback.Transmitter, opts ...playback.Option) error {
	presses, err := c.take()
	if err != nil {
		return err
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return playback.NewPlayer(tx, opts...).Play(ctx, presses)
}
