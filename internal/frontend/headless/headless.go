// Package headless implements a frontend without any output device.
package headless

import (
	"sync"

	"github.com/retroenv/chip8vm/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Frontend records the rendered frames and provides scripted key input.
// Keys can be pressed and released from other goroutines while the driver runs.
type Frontend struct {
	logger *log.Logger

	mu     sync.Mutex
	keys   [vm.KeyCount]bool
	frame  []byte
	frames int
	tone   bool
	quit   bool
}

// New returns a new headless frontend.
func New(logger *log.Logger) *Frontend {
	return &Frontend{
		logger: logger,
	}
}

// Press marks the key as held.
func (f *Frontend) Press(key uint8) {
	f.mu.Lock()
	f.keys[key&0x0F] = true
	f.mu.Unlock()
}

// Release marks the key as not held.
func (f *Frontend) Release(key uint8) {
	f.mu.Lock()
	f.keys[key&0x0F] = false
	f.mu.Unlock()
}

// Quit makes the next poll request the driver to stop.
func (f *Frontend) Quit() {
	f.mu.Lock()
	f.quit = true
	f.mu.Unlock()
}

// KeyDown returns whether the key is held.
func (f *Frontend) KeyDown(key uint8) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key&0x0F]
}

// Render stores a copy of the framebuffer.
func (f *Frontend) Render(display *vm.Display) error {
	pixels := display.Pixels()

	f.mu.Lock()
	f.frame = pixels
	f.frames++
	f.mu.Unlock()
	return nil
}

// SetTone records the tone state.
func (f *Frontend) SetTone(active bool) {
	f.mu.Lock()
	f.tone = active
	f.mu.Unlock()
	f.logger.Debug("Tone changed", log.String("state", toneState(active)))
}

// Poll returns whether Quit was called.
func (f *Frontend) Poll() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quit, nil
}

// Close does nothing.
func (f *Frontend) Close() error {
	return nil
}

// Snapshot returns the last rendered frame, or nil if nothing was rendered yet.
func (f *Frontend) Snapshot() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// Frames returns the number of rendered frames.
func (f *Frontend) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Tone returns the last tone state.
func (f *Frontend) Tone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tone
}

func toneState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
