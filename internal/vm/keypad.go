package vm

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// Keypad reports the current state of the 16 key input device.
type Keypad interface {
	// KeyDown returns whether key 0x0-0xF is currently held.
	KeyDown(key uint8) bool
}

// KeypadFunc adapts a function to the Keypad interface.
type KeypadFunc func(key uint8) bool

// KeyDown calls f(key).
func (f KeypadFunc) KeyDown(key uint8) bool {
	return f(key)
}

// firstKeyDown polls all keys in ascending order and returns the first held key.
func firstKeyDown(keypad Keypad) (uint8, bool) {
	if keypad == nil {
		return 0, false
	}
	for key := range uint8(KeyCount) {
		if keypad.KeyDown(key) {
			return key, true
		}
	}
	return 0, false
}

func keyDown(keypad Keypad, key uint8) bool {
	if keypad == nil {
		return false
	}
	return keypad.KeyDown(key & 0x0F)
}
