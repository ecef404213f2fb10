// Package hotkeys turns raw keyboard events into desktop intents.
//
// The Machine decides synchronously whether an event is consumed; the
// Dispatcher executes the resulting intents one at a time off the hook thread.
package hotkeys

import "github.com/1broseidon/hyprdesk/internal/config"

// Key is a platform-neutral key classification.
type Key int

const (
	KeyUnknown Key = iota
	// KeyModifier is either side of the configured chord modifier.
	KeyModifier
	KeyDigit0
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
	KeyEscape
)

func (k Key) String() string {
	switch {
	case k == KeyModifier:
		return "modifier"
	case k == KeyEscape:
		return "escape"
	case k.IsDigit():
		return string(rune('0' + k.Digit()))
	default:
		return "unknown"
	}
}

// IsDigit reports whether k is a top-row digit.
func (k Key) IsDigit() bool {
	return k >= KeyDigit0 && k <= KeyDigit9
}

// Digit returns the numeric value of a digit key, or -1.
func (k Key) Digit() int {
	if !k.IsDigit() {
		return -1
	}
	return int(k - KeyDigit0)
}

// DigitKey returns the Key for digit d (0-9).
func DigitKey(d int) Key {
	if d < 0 || d > 9 {
		return KeyUnknown
	}
	return KeyDigit0 + Key(d)
}

// KeyEvent is a single key transition as seen by a hook source.
type KeyEvent struct {
	Key     Key
	RawCode uint32
	Down    bool
}

// Windows virtual-key codes used by the low-level keyboard hook.
const (
	vkControl  = 0x11
	vkMenu     = 0x12
	vkEscape   = 0x1B
	vkDigit0   = 0x30
	vkDigit9   = 0x39
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

// TranslateVK classifies a Windows virtual-key code for modifier mod.
// Numpad digits (VK_NUMPAD0-9) are deliberately not digits.
func TranslateVK(vk uint32, mod config.Modifier) Key {
	switch {
	case isModifierVK(vk, mod):
		return KeyModifier
	case vk >= vkDigit0 && vk <= vkDigit9:
		return DigitKey(int(vk - vkDigit0))
	case vk == vkEscape:
		return KeyEscape
	default:
		return KeyUnknown
	}
}

func isModifierVK(vk uint32, mod config.Modifier) bool {
	switch mod {
	case config.ModAlt:
		return vk == vkLMenu || vk == vkRMenu || vk == vkMenu
	case config.ModCtrl:
		return vk == vkLControl || vk == vkRControl || vk == vkControl
	default:
		return vk == vkLWin || vk == vkRWin
	}
}
