package backend

import (
	"fmt"

	"chords/pkg/key"
)

// Windows INPUT structure constants.
const (
	inputKeyboard = 1

	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// input mirrors INPUT with the keyboard member of the union. The padding
// covers the larger MOUSEINPUT member.
type input struct {
	Type uint32
	Ki   keybdInput
	_    [8]byte
}

// toInput translates one record into its SendInput form.
func toInput(r key.Record) (input, error) {
	in := input{Type: inputKeyboard}

	switch r.Code.Kind {
	case key.KindVirtual:
		in.Ki.Vk = r.Code.Value
		in.Ki.Scan = r.Code.Value
	case key.KindUnicode:
		in.Ki.Scan = r.Code.Value
		in.Ki.Flags = keyeventfUnicode
	default:
		return input{}, fmt.Errorf("%w: %s", ErrUnsupportedKey, r.Code)
	}

	if r.Up {
		in.Ki.Flags |= keyeventfKeyUp
	}
	return in, nil
}

// toInputs translates a whole batch, failing before anything is sent.
func toInputs(batch []key.Record) ([]input, error) {
	inputs := make([]input, len(batch))
	for i, r := range batch {
		in, err := toInput(r)
		if err != nil {
			return nil, err
		}
		inputs[i] = in
	}
	return inputs, nil
}
