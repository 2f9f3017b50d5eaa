// Package keycode is the static catalog of virtual key codes.
//
// Codes follow the Windows virtual-key table, which is also the identity
// space used by key.Virtual presses on every platform. Backends that need a
// different code space translate through Evdev and EvdevRune.
package keycode

import (
	"fmt"
	"sort"
	"strings"
)

// VirtualKey is a platform virtual-key code.
type VirtualKey uint16

// Virtual key codes.
const (
	LMouseButton      VirtualKey = 0x01 // Left mouse button
	RMouseButton      VirtualKey = 0x02 // Right mouse button
	Cancel            VirtualKey = 0x03 // Control-break processing
	MiddleMouseButton VirtualKey = 0x04 // Middle mouse button (three-button mouse)
	XMouseButton1     VirtualKey = 0x05 // X1 mouse button
	XMouseButton2     VirtualKey = 0x06 // X2 mouse button
	Backspace         VirtualKey = 0x08 // BACKSPACE key
	Tab               VirtualKey = 0x09 // TAB key
	Clear             VirtualKey = 0x0C // CLEAR key
	Enter             VirtualKey = 0x0D // ENTER key
	Shift             VirtualKey = 0x10 // SHIFT key
	Control           VirtualKey = 0x11 // CTRL key
	Alt               VirtualKey = 0x12 // ALT key
	Pause             VirtualKey = 0x13 // PAUSE key
	CapsLock          VirtualKey = 0x14 // CAPS LOCK key
	KanaHangulHanguel VirtualKey = 0x15 // IME Kana mode or HANGUL/HANGUEL mode
	Junja             VirtualKey = 0x17 // IME Junja mode
	Final             VirtualKey = 0x18 // IME final mode
	HanjaKanji        VirtualKey = 0x19 // IME Hanja or Kanji mode
	Escape            VirtualKey = 0x1B // ESC key
	Convert           VirtualKey = 0x1C // IME convert
	NonConvert        VirtualKey = 0x1D // IME nonconvert
	Accept            VirtualKey = 0x1E // IME accept
	ModeChange        VirtualKey = 0x1F // IME mode change request
	Space             VirtualKey = 0x20 // SPACEBAR
	PageUp            VirtualKey = 0x21 // PAGE UP key
	PageDown          VirtualKey = 0x22 // PAGE DOWN key
	End               VirtualKey = 0x23 // END key
	Home              VirtualKey = 0x24 // HOME key
	Left              VirtualKey = 0x25 // LEFT ARROW key
	Up                VirtualKey = 0x26 // UP ARROW key
	Right             VirtualKey = 0x27 // RIGHT ARROW key
	Down              VirtualKey = 0x28 // DOWN ARROW key
	Select            VirtualKey = 0x29 // SELECT key
	Print             VirtualKey = 0x2A // PRINT key
	Execute           VirtualKey = 0x2B // EXECUTE key
	PrintScreen       VirtualKey = 0x2C // PRINT SCREEN key
	Insert            VirtualKey = 0x2D // INS key
	Delete            VirtualKey = 0x2E // DEL key
	Help              VirtualKey = 0x2F // HELP key
	N0                VirtualKey = 0x30 // 0 key
	N1                VirtualKey = 0x31 // 1 key
	N2                VirtualKey = 0x32 // 2 key
	N3                VirtualKey = 0x33 // 3 key
	N4                VirtualKey = 0x34 // 4 key
	N5                VirtualKey = 0x35 // 5 key
	N6                VirtualKey = 0x36 // 6 key
	N7                VirtualKey = 0x37 // 7 key
	N8                VirtualKey = 0x38 // 8 key
	N9                VirtualKey = 0x39 // 9 key
	A                 VirtualKey = 0x41 // A key
	B                 VirtualKey = 0x42 // B key
	C                 VirtualKey = 0x43 // C key
	D                 VirtualKey = 0x44 // D key
	E                 VirtualKey = 0x45 // E key
	F                 VirtualKey = 0x46 // F key
	G                 VirtualKey = 0x47 // G key
	H                 VirtualKey = 0x48 // H key
	I                 VirtualKey = 0x49 // I key
	J                 VirtualKey = 0x4A // J key
	K                 VirtualKey = 0x4B // K key
	L                 VirtualKey = 0x4C // L key
	M                 VirtualKey = 0x4D // M key
	N                 VirtualKey = 0x4E // N key
	O                 VirtualKey = 0x4F // O key
	P                 VirtualKey = 0x50 // P key
	Q                 VirtualKey = 0x51 // Q key
	R                 VirtualKey = 0x52 // R key
	S                 VirtualKey = 0x53 // S key
	T                 VirtualKey = 0x54 // T key
	U                 VirtualKey = 0x55 // U key
	V                 VirtualKey = 0x56 // V key
	W                 VirtualKey = 0x57 // W key
	X                 VirtualKey = 0x58 // X key
	Y                 VirtualKey = 0x59 // Y key
	Z                 VirtualKey = 0x5A // Z key
	LWin              VirtualKey = 0x5B // Left Windows key (Natural keyboard)
	RWin              VirtualKey = 0x5C // Right Windows key (Natural keyboard)
	Apps              VirtualKey = 0x5D // Applications key (Natural keyboard)
	Sleep             VirtualKey = 0x5F // Computer Sleep key
	Numpad0           VirtualKey = 0x60 // Numeric keypad 0 key
	Numpad1           VirtualKey = 0x61 // Numeric keypad 1 key
	Numpad2           VirtualKey = 0x62 // Numeric keypad 2 key
	Numpad3           VirtualKey = 0x63 // Numeric keypad 3 key
	Numpad4           VirtualKey = 0x64 // Numeric keypad 4 key
	Numpad5           VirtualKey = 0x65 // Numeric keypad 5 key
	Numpad6           VirtualKey = 0x66 // Numeric keypad 6 key
	Numpad7           VirtualKey = 0x67 // Numeric keypad 7 key
	Numpad8           VirtualKey = 0x68 // Numeric keypad 8 key
	Numpad9           VirtualKey = 0x69 // Numeric keypad 9 key
	Multiply          VirtualKey = 0x6A // Multiply key
	Add               VirtualKey = 0x6B // Add key
	Separator         VirtualKey = 0x6C // Separator key
	Subtract          VirtualKey = 0x6D // Subtract key
	Decimal           VirtualKey = 0x6E // Decimal key
	Divide            VirtualKey = 0x6F // Divide key
	F1                VirtualKey = 0x70 // F1 key
	F2                VirtualKey = 0x71 // F2 key
	F3                VirtualKey = 0x72 // F3 key
	F4                VirtualKey = 0x73 // F4 key
	F5                VirtualKey = 0x74 // F5 key
	F6                VirtualKey = 0x75 // F6 key
	F7                VirtualKey = 0x76 // F7 key
	F8                VirtualKey = 0x77 // F8 key
	F9                VirtualKey = 0x78 // F9 key
	F10               VirtualKey = 0x79 // F10 key
	F11               VirtualKey = 0x7A // F11 key
	F12               VirtualKey = 0x7B // F12 key
	F13               VirtualKey = 0x7C // F13 key
	F14               VirtualKey = 0x7D // F14 key
	F15               VirtualKey = 0x7E // F15 key
	F16               VirtualKey = 0x7F // F16 key
	F17               VirtualKey = 0x80 // F17 key
	F18               VirtualKey = 0x81 // F18 key
	F19               VirtualKey = 0x82 // F19 key
	F20               VirtualKey = 0x83 // F20 key
	F21               VirtualKey = 0x84 // F21 key
	F22               VirtualKey = 0x85 // F22 key
	F23               VirtualKey = 0x86 // F23 key
	F24               VirtualKey = 0x87 // F24 key
	Numlock           VirtualKey = 0x90 // NUM LOCK key
	Scroll            VirtualKey = 0x91 // SCROLL LOCK key
	LShift            VirtualKey = 0xA0 // Left SHIFT key
	RShift            VirtualKey = 0xA1 // Right SHIFT key
	LControl          VirtualKey = 0xA2 // Left CONTROL key
	RControl          VirtualKey = 0xA3 // Right CONTROL key
	LMenu             VirtualKey = 0xA4 // Left MENU key
	RMenu             VirtualKey = 0xA5 // Right MENU key
	BrowserBack       VirtualKey = 0xA6 // Browser Back key
	BrowserForward    VirtualKey = 0xA7 // Browser Forward key
	BrowserRefresh    VirtualKey = 0xA8 // Browser Refresh key
	BrowserStop       VirtualKey = 0xA9 // Browser Stop key
	BrowserSearch     VirtualKey = 0xAA // Browser Search key
	BrowserFavorites  VirtualKey = 0xAB // Browser Favorites key
	BrowserHome       VirtualKey = 0xAC // Browser Start and Home key
	VolumeMute        VirtualKey = 0xAD // Volume Mute key
	VolumeDown        VirtualKey = 0xAE // Volume Down key
	VolumeUp          VirtualKey = 0xAF // Volume Up key
	MediaNextTrack    VirtualKey = 0xB0 // Next Track key
	MediaPrevTrack    VirtualKey = 0xB1 // Previous Track key
	MediaStop         VirtualKey = 0xB2 // Stop Media key
	MediaPlayPause    VirtualKey = 0xB3 // Play/Pause Media key
	LaunchMail        VirtualKey = 0xB4 // Start Mail key
	LaunchMediaSelect VirtualKey = 0xB5 // Select Media key
	LaunchApp1        VirtualKey = 0xB6 // Start Application 1 key
	LaunchApp2        VirtualKey = 0xB7 // Start Application 2 key
	Oem1              VirtualKey = 0xBA // Used for miscellaneous characters, it can vary by keyboard.
	OemPlus           VirtualKey = 0xBB // For any country/region, the '+' key
	OemComma          VirtualKey = 0xBC // For any country/region, the ',' key
	OemMinus          VirtualKey = 0xBD // For any country/region, the '-' key
	OemPeriod         VirtualKey = 0xBE // For any country/region, the '.' key
	Oem2              VirtualKey = 0xBF // Used for miscellaneous characters, it can vary by keyboard.
	Oem3              VirtualKey = 0xC0 // Used for miscellaneous characters, it can vary by keyboard.
	Oem4              VirtualKey = 0xDB // Used for miscellaneous characters, it can vary by keyboard.
	Oem5              VirtualKey = 0xDC // Used for miscellaneous characters, it can vary by keyboard.
	Oem6              VirtualKey = 0xDD // Used for miscellaneous characters, it can vary by keyboard.
	Oem7              VirtualKey = 0xDE // Used for miscellaneous characters, it can vary by keyboard.
	Oem8              VirtualKey = 0xDF // Used for miscellaneous characters, it can vary by keyboard.
	Oem102            VirtualKey = 0xE2 // Either the angle bracket key or the backslash key on the RT 102-key keyboard
	ProcessKey        VirtualKey = 0xE5 // IME PROCESS key
	Packet            VirtualKey = 0xE7 // Used to pass Unicode characters as if they were keystrokes.
	Attn              VirtualKey = 0xF6 // Attn key
	CrSel             VirtualKey = 0xF7 // CrSel key
	ExSel             VirtualKey = 0xF8 // ExSel key
	ErEOF             VirtualKey = 0xF9 // Erase EOF key
	Play              VirtualKey = 0xFA // Play key
	Zoom              VirtualKey = 0xFB // Zoom key
	Pa1               VirtualKey = 0xFD // PA1 key
	OemClear          VirtualKey = 0xFE // Clear key
)

var names = map[VirtualKey]string{
	LMouseButton:      "LMouseButton",
	RMouseButton:      "RMouseButton",
	Cancel:            "Cancel",
	MiddleMouseButton: "MiddleMouseButton",
	XMouseButton1:     "XMouseButton1",
	XMouseButton2:     "XMouseButton2",
	Backspace:         "Backspace",
	Tab:               "Tab",
	Clear:             "Clear",
	Enter:             "Enter",
	Shift:             "Shift",
	Control:           "Control",
	Alt:               "Alt",
	Pause:             "Pause",
	CapsLock:          "CapsLock",
	KanaHangulHanguel: "KanaHangulHanguel",
	Junja:             "Junja",
	Final:             "Final",
	HanjaKanji:        "HanjaKanji",
	Escape:            "Escape",
	Convert:           "Convert",
	NonConvert:        "NonConvert",
	Accept:            "Accept",
	ModeChange:        "ModeChange",
	Space:             "Space",
	PageUp:            "PageUp",
	PageDown:          "PageDown",
	End:               "End",
	Home:              "Home",
	Left:              "Left",
	Up:                "Up",
	Right:             "Right",
	Down:              "Down",
	Select:            "Select",
	Print:             "Print",
	Execute:           "Execute",
	PrintScreen:       "PrintScreen",
	Insert:            "Insert",
	Delete:            "Delete",
	Help:              "Help",
	N0:                "N0",
	N1:                "N1",
	N2:                "N2",
	N3:                "N3",
	N4:                "N4",
	N5:                "N5",
	N6:                "N6",
	N7:                "N7",
	N8:                "N8",
	N9:                "N9",
	A:                 "A",
	B:                 "B",
	C:                 "C",
	D:                 "D",
	E:                 "E",
	F:                 "F",
	G:                 "G",
	H:                 "H",
	I:                 "I",
	J:                 "J",
	K:                 "K",
	L:                 "L",
	M:                 "M",
	N:                 "N",
	O:                 "O",
	P:                 "P",
	Q:                 "Q",
	R:                 "R",
	S:                 "S",
	T:                 "T",
	U:                 "U",
	V:                 "V",
	W:                 "W",
	X:                 "X",
	Y:                 "Y",
	Z:                 "Z",
	LWin:              "LWin",
	RWin:              "RWin",
	Apps:              "Apps",
	Sleep:             "Sleep",
	Numpad0:           "Numpad0",
	Numpad1:           "Numpad1",
	Numpad2:           "Numpad2",
	Numpad3:           "Numpad3",
	Numpad4:           "Numpad4",
	Numpad5:           "Numpad5",
	Numpad6:           "Numpad6",
	Numpad7:           "Numpad7",
	Numpad8:           "Numpad8",
	Numpad9:           "Numpad9",
	Multiply:          "Multiply",
	Add:               "Add",
	Separator:         "Separator",
	Subtract:          "Subtract",
	Decimal:           "Decimal",
	Divide:            "Divide",
	F1:                "F1",
	F2:                "F2",
	F3:                "F3",
	F4:                "F4",
	F5:                "F5",
	F6:                "F6",
	F7:                "F7",
	F8:                "F8",
	F9:                "F9",
	F10:               "F10",
	F11:               "F11",
	F12:               "F12",
	F13:               "F13",
	F14:               "F14",
	F15:               "F15",
	F16:               "F16",
	F17:               "F17",
	F18:               "F18",
	F19:               "F19",
	F20:               "F20",
	F21:               "F21",
	F22:               "F22",
	F23:               "F23",
	F24:               "F24",
	Numlock:           "Numlock",
	Scroll:            "Scroll",
	LShift:            "LShift",
	RShift:            "RShift",
	LControl:          "LControl",
	RControl:          "RControl",
	LMenu:             "LMenu",
	RMenu:             "RMenu",
	BrowserBack:       "BrowserBack",
	BrowserForward:    "BrowserForward",
	BrowserRefresh:    "BrowserRefresh",
	BrowserStop:       "BrowserStop",
	BrowserSearch:     "BrowserSearch",
	BrowserFavorites:  "BrowserFavorites",
	BrowserHome:       "BrowserHome",
	VolumeMute:        "VolumeMute",
	VolumeDown:        "VolumeDown",
	VolumeUp:          "VolumeUp",
	MediaNextTrack:    "MediaNextTrack",
	MediaPrevTrack:    "MediaPrevTrack",
	MediaStop:         "MediaStop",
	MediaPlayPause:    "MediaPlayPause",
	LaunchMail:        "LaunchMail",
	LaunchMediaSelect: "LaunchMediaSelect",
	LaunchApp1:        "LaunchApp1",
	LaunchApp2:        "LaunchApp2",
	Oem1:              "Oem1",
	OemPlus:           "OemPlus",
	OemComma:          "OemComma",
	OemMinus:          "OemMinus",
	OemPeriod:         "OemPeriod",
	Oem2:              "Oem2",
	Oem3:              "Oem3",
	Oem4:              "Oem4",
	Oem5:              "Oem5",
	Oem6:              "Oem6",
	Oem7:              "Oem7",
	Oem8:              "Oem8",
	Oem102:            "Oem102",
	ProcessKey:        "ProcessKey",
	Packet:            "Packet",
	Attn:              "Attn",
	CrSel:             "CrSel",
	ExSel:             "ExSel",
	ErEOF:             "ErEOF",
	Play:              "Play",
	Zoom:              "Zoom",
	Pa1:               "Pa1",
	OemClear:          "OemClear",
}
// byName indexes names case-insensitively, with a few common aliases.
var byName = func() map[string]VirtualKey {
	m := make(map[string]VirtualKey, len(names)+len(aliases))
	for vk, name := range names {
		m[strings.ToLower(name)] = vk
	}
	for alias, vk := range aliases {
		m[alias] = vk
	}
	return m
}()

var aliases = map[string]VirtualKey{
	"return":    Enter,
	"esc":       Escape,
	"ctrl":      Control,
	"lctrl":     LControl,
	"rctrl":     RControl,
	"del":       Delete,
	"ins":       Insert,
	"pgup":      PageUp,
	"pgdn":      PageDown,
	"win":       LWin,
	"lalt":      LMenu,
	"ralt":      RMenu,
	"0":         N0,
	"1":         N1,
	"2":         N2,
	"3":         N3,
	"4":         N4,
	"5":         N5,
	"6":         N6,
	"7":         N7,
	"8":         N8,
	"9":         N9,
	"arrowleft": Left,
	"arrowup":   Up,
}

// String returns the catalog name of the key, or VK(0xNN) when unknown.
func (vk VirtualKey) String() string {
	if name, ok := names[vk]; ok {
		return name
	}
	return fmt.Sprintf("VK(0x%02X)", uint16(vk))
}

// Lookup resolves a symbolic key name. Matching is case-insensitive.
func Lookup(name string) (VirtualKey, bool) {
	vk, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return vk, ok
}

// Names returns all catalog names in sorted order.
func Names() []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
