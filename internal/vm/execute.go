package vm

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// Step executes at most one instruction.
//
// While a key wait is pending the keypad is polled, if no key is held the step
// does nothing. Otherwise the instruction at the program counter is decoded,
// the program counter advanced and the instruction executed.
// Decode failures halt the machine and are returned as *FaultError, all later
// calls return an error wrapping ErrHalted.
func (m *Machine) Step() error {
	if m.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.halted)
	}

	if m.keyWait != noKeyWait {
		key, ok := firstKeyDown(m.opts.Keypad)
		if !ok {
			return nil
		}
		m.registers[m.keyWait] = key
		m.keyWait = noKeyWait
	}

	address := m.pc
	ins := m.fetch()
	if m.opts.Trace {
		m.trace(address, ins)
	}
	m.incrementPC()

	if !m.execute(ins) {
		fault := m.fault(address, ins)
		m.halted = fault
		return fault
	}
	return nil
}

// fetch decodes the instruction at the program counter.
func (m *Machine) fetch() Instruction {
	word := m.memory.ReadWord(m.pc)
	return Decode(byte(word>>8), byte(word))
}

// execute runs the decoded instruction and returns false if the encoding has
// no defined semantics. The program counter already points at the following
// instruction.
//
//nolint:cyclop,funlen // one case per instruction family
func (m *Machine) execute(ins Instruction) bool {
	v := &m.registers

	switch ins.Group {
	case 0x0:
		return m.executeSystem(ins)

	case 0x1:
		m.pc = ins.NNN

	case 0x2:
		m.call(ins.NNN)

	case 0x3:
		if v[ins.X] == ins.KK {
			m.incrementPC()
		}

	case 0x4:
		if v[ins.X] != ins.KK {
			m.incrementPC()
		}

	case 0x5:
		if v[ins.X] == v[ins.Y] {
			m.incrementPC()
		}

	case 0x6:
		v[ins.X] = ins.KK

	case 0x7:
		v[ins.X] += ins.KK

	case 0x8:
		return m.executeArithmetic(ins)

	case 0x9:
		if v[ins.X] != v[ins.Y] {
			m.incrementPC()
		}

	case 0xA:
		m.index = ins.NNN

	case 0xB:
		m.pc = ins.NNN + uint16(v[0])

	case 0xC:
		v[ins.X] = byte(m.opts.Random.Intn(256)) & ins.KK

	case 0xD:
		m.draw(ins)

	case 0xE:
		return m.executeKeySkip(ins)

	case 0xF:
		return m.executeMisc(ins)
	}
	return true
}

// executeSystem handles the 0 group: clear screen and return.
func (m *Machine) executeSystem(ins Instruction) bool {
	switch ins.NNN {
	case 0x0E0:
		m.display.clear()
	case 0x0EE:
		m.ret()
	default:
		return false
	}
	return true
}

// executeArithmetic handles the 8 group register to register operations.
// Flags are computed from the untruncated result and written to VF after
// the result, so VF holds the flag even if it is also the destination.
func (m *Machine) executeArithmetic(ins Instruction) bool {
	v := &m.registers
	x, y := v[ins.X], v[ins.Y]

	switch ins.N {
	case 0x0:
		v[ins.X] = y
	case 0x1:
		v[ins.X] = x | y
	case 0x2:
		v[ins.X] = x & y
	case 0x3:
		v[ins.X] = x ^ y

	case 0x4:
		sum := uint16(x) + uint16(y)
		v[ins.X] = byte(sum)
		v[FlagRegister] = byte(sum >> 8)

	case 0x5:
		v[ins.X] = x - y
		v[FlagRegister] = noBorrow(x, y)

	case 0x6:
		v[ins.X] = x >> 1
		v[FlagRegister] = x & 0x01

	case 0x7:
		v[ins.X] = y - x
		v[FlagRegister] = noBorrow(y, x)

	case 0xE:
		v[ins.X] = x << 1
		v[FlagRegister] = x >> 7

	default:
		return false
	}
	return true
}

// executeKeySkip handles the E group key state skips.
func (m *Machine) executeKeySkip(ins Instruction) bool {
	key := m.registers[ins.X]

	switch ins.KK {
	case 0x9E:
		if keyDown(m.opts.Keypad, key) {
			m.incrementPC()
		}
	case 0xA1:
		if !keyDown(m.opts.Keypad, key) {
			m.incrementPC()
		}
	default:
		return false
	}
	return true
}

// executeMisc handles the F group timer, key wait and memory operations.
func (m *Machine) executeMisc(ins Instruction) bool {
	v := &m.registers

	switch ins.KK {
	case 0x07:
		v[ins.X] = m.delayTimer
	case 0x0A:
		m.keyWait = int(ins.X)
	case 0x15:
		m.delayTimer = v[ins.X]
	case 0x18:
		m.soundTimer = v[ins.X]
	case 0x1E:
		m.index += uint16(v[ins.X])
	case 0x29:
		m.index = FontStart + uint16(v[ins.X])*GlyphSize

	case 0x33:
		value := v[ins.X]
		m.memory.Write(m.index, value/100)
		m.memory.Write(m.index+1, value/10%10)
		m.memory.Write(m.index+2, value%10)

	case 0x55:
		for i := range uint16(ins.X) + 1 {
			m.memory.Write(m.index+i, v[i])
		}

	case 0x65:
		for i := range uint16(ins.X) + 1 {
			v[i] = m.memory.Read(m.index + i)
		}

	default:
		return false
	}
	return true
}

// draw renders an n row sprite from memory at I to the position (Vx, Vy).
// VF is set to 1 if any pixel of the whole sprite collided, otherwise 0.
func (m *Machine) draw(ins Instruction) {
	x, y := m.registers[ins.X], m.registers[ins.Y]

	rows := make([]byte, ins.N)
	for i := range rows {
		rows[i] = m.memory.Read(m.index + uint16(i))
	}

	var collision byte
	if m.display.drawSprite(x, y, rows) {
		collision = 1
	}
	m.registers[FlagRegister] = collision
}

// call pushes the program counter and jumps to the address.
// A full stack ignores the call.
func (m *Machine) call(address uint16) {
	if m.sp >= StackSize {
		m.countWarning(StackOverflow)
		m.logger.Warn("Maximum stack depth reached, ignoring call",
			log.Hex("address", m.pc-instructionSize),
			log.Hex("target", address))
		return
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = address
}

// ret pops the return address. An empty stack ignores the return.
func (m *Machine) ret() {
	if m.sp == 0 {
		m.countWarning(StackUnderflow)
		m.logger.Warn("Return with empty stack, ignoring return",
			log.Hex("address", m.pc-instructionSize))
		return
	}
	m.sp--
	m.pc = m.stack[m.sp]
	m.stack[m.sp] = 0
}

// incrementPC advances the program counter to the next instruction.
// The program counter does not advance into the reserved stack region.
func (m *Machine) incrementPC() {
	if m.pc >= StackRegionStart {
		m.countWarning(ProgramCounterOverflow)
		m.logger.Warn("Maximum program counter reached, can not increment",
			log.Hex("address", m.pc))
		return
	}
	m.pc += instructionSize
}

func (m *Machine) fault(address uint16, ins Instruction) *FaultError {
	fault := &FaultError{
		Address: address,
		Bytes:   ins.Bytes(),
	}
	if text, ok := disasm.Format(ins.Opcode()); ok {
		fault.Disassembly = text
	}
	m.logger.Error("Unimplemented instruction, halting",
		log.Hex("address", address),
		log.String("opcode", ins.String()),
		log.String("state", m.String()))
	return fault
}

func (m *Machine) trace(address uint16, ins Instruction) {
	text, ok := disasm.Format(ins.Opcode())
	if !ok {
		text = ".word $" + ins.String()
	}
	m.logger.Debug("Executing",
		log.Hex("address", address),
		log.String("instruction", text))
}

// noBorrow returns 1 if subtracting b from a does not borrow.
func noBorrow(a, b byte) byte {
	if a >= b {
		return 1
	}
	return 0
}
