package vm

import (
	"fmt"
	"slices"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, which carry, borrow, shift and
	// collision results overwrite as a side effect.
	FlagRegister = 0xF
	// StackSize is the number of return addresses the call stack can hold.
	StackSize = 16

	noKeyWait = -1
)

// Random is the source of the random instruction.
type Random interface {
	Intn(n int) int
}

// Options configures the collaborators of a Machine.
type Options struct {
	Keypad      Keypad // input device, a nil keypad never reports a pressed key
	Random      Random // source for the random instruction, defaults to a time seeded source
	ToneStopped func() // called when the sound timer reaches zero
	Trace       bool   // log every executed instruction at debug level
}

// Machine is the complete CHIP-8 interpreter state. It is not safe for concurrent use,
// it is mutated only by Step and TickTimers.
type Machine struct {
	logger *log.Logger
	opts   Options

	memory    Memory
	registers [RegisterCount]byte
	index     uint16 // address register I
	pc        uint16
	stack     [StackSize]uint16
	sp        uint8 // number of active stack slots

	delayTimer     byte
	soundTimer     byte
	timerRemainder time.Duration

	display Display
	keyWait int // register waiting for a key press, noKeyWait if none

	halted   error
	warnings Warnings
	program  []byte
}

// New returns a new machine with the font installed and no program loaded.
func New(logger *log.Logger, opts Options) *Machine {
	if opts.Random == nil {
		opts.Random = newRandom(0)
	}
	m := &Machine{
		logger: logger,
		opts:   opts,
	}
	m.Reset()
	return m
}

// Reset restores the initial machine state and reloads the current program.
func (m *Machine) Reset() {
	m.memory = Memory{}
	copy(m.memory[FontStart:], font[:])
	copy(m.memory[ProgramStart:], m.program)

	m.registers = [RegisterCount]byte{}
	m.index = 0
	m.pc = ProgramStart
	m.stack = [StackSize]uint16{}
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.timerRemainder = 0
	m.display.clear()
	m.keyWait = noKeyWait
	m.halted = nil
	m.warnings = Warnings{}
}

// LoadProgram copies the program into memory at ProgramStart and resets the machine.
// Programs larger than MaxProgramSize are rejected and leave the machine unchanged.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: requesting %d bytes, available %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	m.program = slices.Clone(program)
	m.Reset()
	return nil
}

// SetKeypad replaces the input device.
func (m *Machine) SetKeypad(keypad Keypad) {
	m.opts.Keypad = keypad
}

// PC returns the program counter.
func (m *Machine) PC() uint16 { return m.pc }

// Index returns the address register I.
func (m *Machine) Index() uint16 { return m.index }

// SP returns the number of active stack slots.
func (m *Machine) SP() uint8 { return m.sp }

// Register returns the value of register V0-VF.
func (m *Machine) Register(index int) byte { return m.registers[index&0x0F] }

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() byte { return m.delayTimer }

// SoundTimer returns the sound timer value.
func (m *Machine) SoundTimer() byte { return m.soundTimer }

// ToneActive returns whether the tone should be sounding.
func (m *Machine) ToneActive() bool { return m.soundTimer > 0 }

// ReadMemory returns the byte at the given address.
func (m *Machine) ReadMemory(address uint16) byte { return m.memory.Read(address) }

// Display returns the framebuffer. Callers must treat it as read-only.
func (m *Machine) Display() *Display { return &m.display }

// Stack returns a copy of the active return addresses, oldest first.
func (m *Machine) Stack() []uint16 {
	return slices.Clone(m.stack[:m.sp])
}

// KeyWait returns the register waiting for a key press, if any.
func (m *Machine) KeyWait() (int, bool) {
	return m.keyWait, m.keyWait != noKeyWait
}

// Halted returns the fault that stopped the machine, or nil if it is still running.
func (m *Machine) Halted() error { return m.halted }

// Warnings returns the structural overflow counters.
func (m *Machine) Warnings() Warnings { return m.warnings }

func (m *Machine) countWarning(kind Warning) {
	m.warnings[kind]++
}
