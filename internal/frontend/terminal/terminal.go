// Package terminal implements a frontend that renders to an ANSI terminal.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tm "github.com/buger/goterm"
	"github.com/retroenv/chip8vm/internal/vm"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// keyHoldDuration is how long a key counts as held after the terminal
// reported it. Terminals only report key presses, never releases.
const keyHoldDuration = 150 * time.Millisecond

const escapeKey = 0x1B

// keyMap maps the keyboard layout to the hexadecimal keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var keyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

var errNotTerminal = errors.New("input is not a terminal")

// Frontend renders the display with half block characters, two display rows
// per terminal line.
type Frontend struct {
	logger *log.Logger
	input  *os.File
	raw    *rawMode

	keyBuffer chan byte
	now       func() time.Time
	heldUntil [vm.KeyCount]time.Time
	tone      bool
}

// New returns a terminal frontend that reads keys from the input terminal
// and switches it to raw mode until Close is called.
func New(logger *log.Logger, input *os.File) (*Frontend, error) {
	fd := int(input.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	checkSize(logger)

	raw, err := enableRawMode(input.Fd())
	if err != nil {
		return nil, fmt.Errorf("enabling raw mode: %w", err)
	}

	f := newFrontend(logger, make(chan byte, 16))
	f.input = input
	f.raw = raw
	go f.readInput()
	return f, nil
}

func newFrontend(logger *log.Logger, keyBuffer chan byte) *Frontend {
	return &Frontend{
		logger:    logger,
		keyBuffer: keyBuffer,
		now:       time.Now,
	}
}

// readInput forwards all bytes read from the terminal to the key buffer.
// It ends when the input returns an error.
func (f *Frontend) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := f.input.Read(buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			f.keyBuffer <- b
		}
	}
}

// KeyDown returns whether the key was pressed within the hold duration.
func (f *Frontend) KeyDown(key uint8) bool {
	return f.now().Before(f.heldUntil[key&0x0F])
}

// Poll processes the buffered key presses, Escape requests to quit.
func (f *Frontend) Poll() (bool, error) {
	for {
		select {
		case b := <-f.keyBuffer:
			if b == escapeKey {
				return true, nil
			}
			key, ok := keyMap[toLower(b)]
			if !ok {
				continue
			}
			f.heldUntil[key] = f.now().Add(keyHoldDuration)
		default:
			return false, nil
		}
	}
}

// Render draws the display and a status line.
func (f *Frontend) Render(display *vm.Display) error {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Print(frame(display))
	tm.Println(f.status())
	tm.Flush()
	return nil
}

// SetTone switches the tone indicator of the status line.
func (f *Frontend) SetTone(active bool) {
	f.tone = active
}

// Close restores the terminal mode.
func (f *Frontend) Close() error {
	if f.raw == nil {
		return nil
	}
	if err := f.raw.restore(); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	f.raw = nil
	return nil
}

func (f *Frontend) status() string {
	if f.tone {
		return "[tone]  esc: quit"
	}
	return "        esc: quit"
}

// frame converts the display to lines of half block characters.
func frame(display *vm.Display) string {
	var sb strings.Builder
	for y := 0; y < vm.DisplayHeight; y += 2 {
		for x := range vm.DisplayWidth {
			top := display.Pixel(x, y)
			bottom := display.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// checkSize warns if the terminal is too small to show the whole display.
func checkSize(logger *log.Logger) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		logger.Warn("Unable to get terminal size", log.Err(err))
		return
	}
	if width < vm.DisplayWidth || height < vm.DisplayHeight/2+1 {
		logger.Warn("Terminal is too small to show the whole display",
			log.Int("width", width),
			log.Int("height", height))
	}
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
