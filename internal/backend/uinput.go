package backend

import (
	"fmt"

	"chords/pkg/key"
	"chords/pkg/keycode"
)

// stroke is one evdev key transition.
type stroke struct {
	code int
	up   bool
}

// toStrokes translates a record into evdev transitions. Unicode units are
// typed through the US layout; shifted characters press LeftShift around
// the key on down and release it after the key on up.
func toStrokes(r key.Record) ([]stroke, error) {
	switch r.Code.Kind {
	case key.KindVirtual:
		code, ok := keycode.Evdev(keycode.VirtualKey(r.Code.Value))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, r.Code)
		}
		return []stroke{{code: code, up: r.Up}}, nil

	case key.KindUnicode:
		code, shift, ok := keycode.EvdevRune(rune(r.Code.Value))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, r.Code)
		}
		if !shift {
			return []stroke{{code: code, up: r.Up}}, nil
		}
		if r.Up {
			return []stroke{{code: code, up: true}, {code: keycode.EvdevLeftShift, up: true}}, nil
		}
		return []stroke{{code: keycode.EvdevLeftShift}, {code: code}}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, r.Code)
	}
}

func toStrokeBatch(batch []key.Record) ([]stroke, error) {
	strokes := make([]stroke, 0, len(batch))
	for _, r := range batch {
		s, err := toStrokes(r)
		if err != nil {
			return nil, err
		}
		strokes = append(strokes, s...)
	}
	return strokes, nil
}
