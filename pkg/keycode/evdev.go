package keycode

// Linux evdev key codes (linux/input-event-codes.h).
const (
	evKeyEsc        = 1
	evKey1          = 2
	evKey0          = 11
	evKeyMinus      = 12
	evKeyEqual      = 13
	evKeyBackspace  = 14
	evKeyTab        = 15
	evKeyLeftBrace  = 26
	evKeyRightBrace = 27
	evKeyEnter      = 28
	evKeyLeftCtrl   = 29
	evKeySemicolon  = 39
	evKeyApostrophe = 40
	evKeyGrave      = 41
	evKeyLeftShift  = 42
	evKeyBackslash  = 43
	evKeyComma      = 51
	evKeyDot        = 52
	evKeySlash      = 53
	evKeyRightShift = 54
	evKeyKPAsterisk = 55
	evKeyLeftAlt    = 56
	evKeySpace      = 57
	evKeyCapsLock   = 58
	evKeyF1         = 59
	evKeyNumLock    = 69
	evKeyScrollLock = 70
	evKeyKPMinus    = 74
	evKeyKPPlus     = 78
	evKeyKPDot      = 83
	evKey102nd      = 86
	evKeyF11        = 87
	evKeyF12        = 88
	evKeyRightCtrl  = 97
	evKeyKPSlash    = 98
	evKeySysRq      = 99
	evKeyRightAlt   = 100
	evKeyHome       = 102
	evKeyUp         = 103
	evKeyPageUp     = 104
	evKeyLeft       = 105
	evKeyRight      = 106
	evKeyEnd        = 107
	evKeyDown       = 108
	evKeyPageDown   = 109
	evKeyInsert     = 110
	evKeyDelete     = 111
	evKeyMute       = 113
	evKeyVolumeDown = 114
	evKeyVolumeUp   = 115
	evKeyPause      = 119
	evKeyKPComma    = 121
	evKeyLeftMeta   = 125
	evKeyRightMeta  = 126
	evKeyCompose    = 127
	evKeyHelp       = 138
	evKeySleep      = 142
	evKeyMail       = 155
	evKeyBookmarks  = 156
	evKeyBack       = 158
	evKeyForward    = 159
	evKeyNextSong   = 163
	evKeyPlayPause  = 164
	evKeyPrevSong   = 165
	evKeyStopCD     = 166
	evKeyHomePage   = 172
	evKeyRefresh    = 173
	evKeyF13        = 183
	evKeyPrint      = 210
	evKeySearch     = 217
)

// QWERTY rows, used to fill the letter range.
var evdevLetters = map[byte]int{
	'Q': 16, 'W': 17, 'E': 18, 'R': 19, 'T': 20, 'Y': 21, 'U': 22, 'I': 23, 'O': 24, 'P': 25,
	'A': 30, 'S': 31, 'D': 32, 'F': 33, 'G': 34, 'H': 35, 'J': 36, 'K': 37, 'L': 38,
	'Z': 44, 'X': 45, 'C': 46, 'V': 47, 'B': 48, 'N': 49, 'M': 50,
}

var evdevNumpad = [10]int{82, 79, 80, 81, 75, 76, 77, 71, 72, 73}

var evdevFixed = map[VirtualKey]int{
	Backspace:        evKeyBackspace,
	Tab:              evKeyTab,
	Enter:            evKeyEnter,
	Shift:            evKeyLeftShift,
	Control:          evKeyLeftCtrl,
	Alt:              evKeyLeftAlt,
	Pause:            evKeyPause,
	CapsLock:         evKeyCapsLock,
	Escape:           evKeyEsc,
	Space:            evKeySpace,
	PageUp:           evKeyPageUp,
	PageDown:         evKeyPageDown,
	End:              evKeyEnd,
	Home:             evKeyHome,
	Left:             evKeyLeft,
	Up:               evKeyUp,
	Right:            evKeyRight,
	Down:             evKeyDown,
	Print:            evKeyPrint,
	PrintScreen:      evKeySysRq,
	Insert:           evKeyInsert,
	Delete:           evKeyDelete,
	Help:             evKeyHelp,
	LWin:             evKeyLeftMeta,
	RWin:             evKeyRightMeta,
	Apps:             evKeyCompose,
	Sleep:            evKeySleep,
	Multiply:         evKeyKPAsterisk,
	Add:              evKeyKPPlus,
	Separator:        evKeyKPComma,
	Subtract:         evKeyKPMinus,
	Decimal:          evKeyKPDot,
	Divide:           evKeyKPSlash,
	F11:              evKeyF11,
	F12:              evKeyF12,
	Numlock:          evKeyNumLock,
	Scroll:           evKeyScrollLock,
	LShift:           evKeyLeftShift,
	RShift:           evKeyRightShift,
	LControl:         evKeyLeftCtrl,
	RControl:         evKeyRightCtrl,
	LMenu:            evKeyLeftAlt,
	RMenu:            evKeyRightAlt,
	BrowserBack:      evKeyBack,
	BrowserForward:   evKeyForward,
	BrowserRefresh:   evKeyRefresh,
	BrowserSearch:    evKeySearch,
	BrowserHome:      evKeyHomePage,
	BrowserFavorites: evKeyBookmarks,
	VolumeMute:       evKeyMute,
	VolumeDown:       evKeyVolumeDown,
	VolumeUp:         evKeyVolumeUp,
	MediaNextTrack:   evKeyNextSong,
	MediaPrevTrack:   evKeyPrevSong,
	MediaStop:        evKeyStopCD,
	MediaPlayPause:   evKeyPlayPause,
	LaunchMail:       evKeyMail,
	Oem1:             evKeySemicolon,
	OemPlus:          evKeyEqual,
	OemComma:         evKeyComma,
	OemMinus:         evKeyMinus,
	OemPeriod:        evKeyDot,
	Oem2:             evKeySlash,
	Oem3:             evKeyGrave,
	Oem4:             evKeyLeftBrace,
	Oem5:             evKeyBackslash,
	Oem6:             evKeyRightBrace,
	Oem7:             evKeyApostrophe,
	Oem102:           evKey102nd,
}

// Evdev translates a virtual key to its Linux evdev code.
func Evdev(vk VirtualKey) (int, bool) {
	switch {
	case vk >= A && vk <= Z:
		return evdevLetters[byte(vk)], true
	case vk == N0:
		return evKey0, true
	case vk >= N1 && vk <= N9:
		return evKey1 + int(vk-N1), true
	case vk >= Numpad0 && vk <= Numpad9:
		return evdevNumpad[vk-Numpad0], true
	case vk >= F1 && vk <= F10:
		return evKeyF1 + int(vk-F1), true
	case vk >= F13 && vk <= F24:
		return evKeyF13 + int(vk-F13), true
	}
	code, ok := evdevFixed[vk]
	return code, ok
}

// EvdevLeftShift is the evdev code used to type shifted characters.
const EvdevLeftShift = evKeyLeftShift

// shifted maps US-layout symbols that need shift to their unshifted key.
var shifted = map[rune]VirtualKey{
	'!': N1, '@': N2, '#': N3, '$': N4, '%': N5,
	'^': N6, '&': N7, '*': N8, '(': N9, ')': N0,
	'_': OemMinus, '+': OemPlus, '{': Oem4, '}': Oem6, '|': Oem5,
	':': Oem1, '"': Oem7, '~': Oem3, '<': OemComma, '>': OemPeriod, '?': Oem2,
}

var plain = map[rune]VirtualKey{
	' ': Space, '\t': Tab, '\n': Enter, '\r': Enter,
	'-': OemMinus, '=': OemPlus, '[': Oem4, ']': Oem6, '\\': Oem5,
	';': Oem1, '\'': Oem7, '`': Oem3, ',': OemComma, '.': OemPeriod, '/': Oem2,
}

// EvdevRune translates a printable rune to an evdev code on a US layout.
// shift reports whether the key must be typed with shift held.
func EvdevRune(r rune) (code int, shift bool, ok bool) {
	var vk VirtualKey
	switch {
	case r >= 'a' && r <= 'z':
		vk = A + VirtualKey(r-'a')
	case r >= 'A' && r <= 'Z':
		vk, shift = A+VirtualKey(r-'A'), true
	case r >= '0' && r <= '9':
		vk = N0 + VirtualKey(r-'0')
	default:
		if v, found := plain[r]; found {
			vk = v
		} else if v, found := shifted[r]; found {
			vk, shift = v, true
		} else {
			return 0, false, false
		}
	}
	code, ok = Evdev(vk)
	return code, shift, ok
}
