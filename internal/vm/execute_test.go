package vm

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// run executes a single opcode, the encoding has to be executable.
func run(t *testing.T, m *Machine, opcode uint16) {
	t.Helper()
	assert.True(t, m.execute(Decode(byte(opcode>>8), byte(opcode))))
}

func TestExecute_Add(t *testing.T) {
	m := newTestMachine(t)

	for a := range 256 {
		for b := range 256 {
			m.registers[2] = byte(a)
			m.registers[3] = byte(b)
			m.execute(Decode(0x82, 0x34))

			var carry byte
			if a+b > 0xFF {
				carry = 1
			}
			if m.registers[2] != byte(a+b) || m.registers[FlagRegister] != carry {
				t.Fatalf("add %d + %d: got V2=%d VF=%d", a, b, m.registers[2], m.registers[FlagRegister])
			}
		}
	}
}

func TestExecute_Sub(t *testing.T) {
	m := newTestMachine(t)

	for a := range 256 {
		for b := range 256 {
			var noBorrow byte
			if a >= b {
				noBorrow = 1
			}

			m.registers[2] = byte(a)
			m.registers[3] = byte(b)
			m.execute(Decode(0x82, 0x35))
			if m.registers[2] != byte(a-b) || m.registers[FlagRegister] != noBorrow {
				t.Fatalf("sub %d - %d: got V2=%d VF=%d", a, b, m.registers[2], m.registers[FlagRegister])
			}

			// subn computes Vy - Vx
			m.registers[2] = byte(b)
			m.registers[3] = byte(a)
			m.execute(Decode(0x82, 0x37))
			if m.registers[2] != byte(a-b) || m.registers[FlagRegister] != noBorrow {
				t.Fatalf("subn %d - %d: got V2=%d VF=%d", a, b, m.registers[2], m.registers[FlagRegister])
			}
		}
	}
}

//nolint:funlen // test functions can be long
func TestExecute_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		x, y   byte
		result byte
		flag   byte
	}{
		{"ld", 0x8230, 0x11, 0x22, 0x22, 0xAA},
		{"or", 0x8231, 0xF0, 0x0F, 0xFF, 0xAA},
		{"and", 0x8232, 0xFC, 0x3F, 0x3C, 0xAA},
		{"xor", 0x8233, 0xFF, 0x0F, 0xF0, 0xAA},
		{"add no carry", 0x8234, 0x10, 0x20, 0x30, 0},
		{"add carry", 0x8234, 0xFF, 0x02, 0x01, 1},
		{"sub no borrow", 0x8235, 0x20, 0x10, 0x10, 1},
		{"sub equal", 0x8235, 0x20, 0x20, 0x00, 1},
		{"sub borrow", 0x8235, 0x10, 0x20, 0xF0, 0},
		{"shr odd", 0x8236, 0x05, 0xFF, 0x02, 1},
		{"shr even", 0x8236, 0x04, 0xFF, 0x02, 0},
		{"subn no borrow", 0x8237, 0x10, 0x20, 0x10, 1},
		{"subn borrow", 0x8237, 0x20, 0x10, 0xF0, 0},
		{"shl high bit", 0x823E, 0x81, 0x00, 0x02, 1},
		{"shl no high bit", 0x823E, 0x41, 0x00, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			m.registers[2] = tt.x
			m.registers[3] = tt.y
			m.registers[FlagRegister] = 0xAA

			run(t, m, tt.opcode)
			assert.Equal(t, tt.result, m.registers[2])
			assert.Equal(t, tt.flag, m.registers[FlagRegister])
		})
	}
}

func TestExecute_FlagRegisterDestination(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vf, vy byte
		flag   byte
	}{
		{"add", 0x8F14, 0xFF, 0x01, 1},
		{"sub", 0x8F15, 0x01, 0x02, 0},
		{"shr", 0x8F06, 0x03, 0x00, 1},
		{"shl", 0x8F0E, 0x01, 0x00, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			m.registers[FlagRegister] = tt.vf
			m.registers[tt.opcode>>4&0xF] = tt.vy

			run(t, m, tt.opcode)
			assert.Equal(t, tt.flag, m.registers[FlagRegister])
		})
	}
}

//nolint:funlen // test functions can be long
func TestExecute_Skips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v2, v3 byte
		skip   bool
	}{
		{"se byte equal", 0x3242, 0x42, 0, true},
		{"se byte different", 0x3242, 0x41, 0, false},
		{"sne byte equal", 0x4242, 0x42, 0, false},
		{"sne byte different", 0x4242, 0x41, 0, true},
		{"se register equal", 0x5230, 0x10, 0x10, true},
		{"se register different", 0x5230, 0x10, 0x11, false},
		{"sne register equal", 0x9230, 0x10, 0x10, false},
		{"sne register different", 0x9230, 0x10, 0x11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, byte(tt.opcode>>8), byte(tt.opcode))
			m.registers[2] = tt.v2
			m.registers[3] = tt.v3

			step(t, m, 1)
			expected := uint16(ProgramStart + 2)
			if tt.skip {
				expected += 2
			}
			assert.Equal(t, expected, m.PC())
		})
	}
}

func TestExecute_Jumps(t *testing.T) {
	m := newTestMachine(t, 0x13, 0x45)
	step(t, m, 1)
	assert.Equal(t, uint16(0x345), m.PC())

	m = newTestMachine(t, 0xB3, 0x45)
	m.registers[0] = 0x10
	step(t, m, 1)
	assert.Equal(t, uint16(0x355), m.PC())
}

func TestExecute_CallReturn(t *testing.T) {
	m := newTestMachine(t,
		0x22, 0x04, // call $204
		0x00, 0x00,
		0x00, 0xEE, // ret
	)

	step(t, m, 1)
	assert.Equal(t, uint16(0x204), m.PC())
	assert.Equal(t, uint8(1), m.SP())
	assert.Equal(t, []uint16{0x202}, m.Stack())

	step(t, m, 1)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.SP())
	assert.Empty(t, m.Stack())
}

func TestExecute_StackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x22, 0x00) // call $200

	step(t, m, StackSize)
	assert.Equal(t, uint8(StackSize), m.SP())
	assert.Equal(t, uint64(0), m.Warnings().Total())

	step(t, m, 1)
	assert.Equal(t, uint8(StackSize), m.SP())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint64(1), m.Warnings()[StackOverflow])
	assert.Nil(t, m.Halted())
}

func TestExecute_StackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00, 0xEE) // ret

	step(t, m, 1)
	assert.Equal(t, uint8(0), m.SP())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint64(1), m.Warnings()[StackUnderflow])
	assert.Equal(t, uint64(1), m.Warnings().Total())
}

func TestExecute_ProgramCounterOverflow(t *testing.T) {
	m := newTestMachine(t)
	m.memory.Write(StackRegionStart, 0x60)
	m.memory.Write(StackRegionStart+1, 0x07)
	m.pc = StackRegionStart

	step(t, m, 1)
	assert.Equal(t, uint16(StackRegionStart), m.PC())
	assert.Equal(t, byte(7), m.Register(0))
	assert.Equal(t, uint64(1), m.Warnings()[ProgramCounterOverflow])
}

func TestExecute_LoadAndAdd(t *testing.T) {
	m := newTestMachine(t,
		0x65, 0xFE, // ld V5, $FE
		0x75, 0x03, // add V5, $03
		0xA1, 0x23, // ld I, $123
	)
	m.registers[FlagRegister] = 0xAA

	step(t, m, 3)
	assert.Equal(t, byte(0x01), m.Register(5))
	assert.Equal(t, byte(0xAA), m.Register(FlagRegister))
	assert.Equal(t, uint16(0x123), m.Index())
}

func TestExecute_Random(t *testing.T) {
	m := New(log.NewTestLogger(t), Options{Random: fixedRandom(0xA5)})
	assert.NoError(t, m.LoadProgram([]byte{0xC1, 0x0F, 0xC2, 0xFF}))

	step(t, m, 2)
	assert.Equal(t, byte(0x05), m.Register(1))
	assert.Equal(t, byte(0xA5), m.Register(2))
}

func TestExecute_KeySkips(t *testing.T) {
	held := uint8(0x5)
	keypad := KeypadFunc(func(key uint8) bool { return key == held })

	tests := []struct {
		name   string
		opcode uint16
		value  byte
		skip   bool
	}{
		{"skp held", 0xE29E, 0x05, true},
		{"skp not held", 0xE29E, 0x06, false},
		{"skp masks key", 0xE29E, 0x15, true},
		{"sknp held", 0xE2A1, 0x05, false},
		{"sknp not held", 0xE2A1, 0x06, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, byte(tt.opcode>>8), byte(tt.opcode))
			m.SetKeypad(keypad)
			m.registers[2] = tt.value

			step(t, m, 1)
			expected := uint16(ProgramStart + 2)
			if tt.skip {
				expected += 2
			}
			assert.Equal(t, expected, m.PC())
		})
	}
}

func TestExecute_KeySkipWithoutKeypad(t *testing.T) {
	m := newTestMachine(t, 0xE0, 0xA1) // sknp V0
	step(t, m, 1)
	assert.Equal(t, uint16(0x204), m.PC())
}

func TestExecute_KeyWait(t *testing.T) {
	var held *uint8
	m := newTestMachine(t,
		0xF2, 0x0A, // ld V2, K
		0x60, 0x07, // ld V0, $07
	)
	m.SetKeypad(KeypadFunc(func(key uint8) bool {
		return held != nil && *held == key
	}))

	step(t, m, 1)
	register, waiting := m.KeyWait()
	assert.True(t, waiting)
	assert.Equal(t, 2, register)
	assert.Equal(t, uint16(0x202), m.PC())

	// no key held, the machine does not advance
	step(t, m, 3)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, byte(0), m.Register(0))

	key := uint8(0xB)
	held = &key
	step(t, m, 1)
	_, waiting = m.KeyWait()
	assert.False(t, waiting)
	assert.Equal(t, byte(0xB), m.Register(2))
	assert.Equal(t, byte(7), m.Register(0))
	assert.Equal(t, uint16(0x204), m.PC())
}

func TestExecute_KeyWaitLowestKey(t *testing.T) {
	m := newTestMachine(t, 0xF4, 0x0A, 0x00, 0xE0)
	m.SetKeypad(KeypadFunc(func(key uint8) bool { return key == 3 || key == 9 }))

	step(t, m, 2)
	assert.Equal(t, byte(3), m.Register(4))
}

func TestExecute_Timers(t *testing.T) {
	m := newTestMachine(t,
		0x60, 0x20, // ld V0, $20
		0xF0, 0x15, // ld DT, V0
		0xF0, 0x18, // ld ST, V0
		0xF1, 0x07, // ld V1, DT
	)
	step(t, m, 4)

	assert.Equal(t, byte(0x20), m.DelayTimer())
	assert.Equal(t, byte(0x20), m.SoundTimer())
	assert.Equal(t, byte(0x20), m.Register(1))
	assert.True(t, m.ToneActive())
}

func TestExecute_Index(t *testing.T) {
	m := newTestMachine(t,
		0xA1, 0x00, // ld I, $100
		0x63, 0x22, // ld V3, $22
		0xF3, 0x1E, // add I, V3
	)
	step(t, m, 3)
	assert.Equal(t, uint16(0x122), m.Index())
}

func TestExecute_FontAddress(t *testing.T) {
	for digit := range byte(16) {
		m := newTestMachine(t, 0xF5, 0x29) // ld F, V5
		m.registers[5] = digit

		step(t, m, 1)
		assert.Equal(t, uint16(FontStart)+uint16(digit)*GlyphSize, m.Index())
	}
}

func TestExecute_BCD(t *testing.T) {
	tests := []struct {
		value    byte
		expected [3]byte
	}{
		{0, [3]byte{0, 0, 0}},
		{7, [3]byte{0, 0, 7}},
		{42, [3]byte{0, 4, 2}},
		{234, [3]byte{2, 3, 4}},
		{255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		m := newTestMachine(t, 0xF6, 0x33) // ld B, V6
		m.registers[6] = tt.value
		m.index = 0x300

		step(t, m, 1)
		assert.Equal(t, tt.expected, [3]byte{m.ReadMemory(0x300), m.ReadMemory(0x301), m.ReadMemory(0x302)})
		assert.Equal(t, uint16(0x300), m.Index())
	}
}

func TestExecute_StoreLoadRegisters(t *testing.T) {
	m := newTestMachine(t,
		0xF3, 0x55, // ld [I], V3
		0xF2, 0x65, // ld V2, [I]
	)
	m.index = 0x400
	for i := range RegisterCount {
		m.registers[i] = byte(0x10 + i)
	}

	step(t, m, 1)
	for i := range uint16(4) {
		assert.Equal(t, byte(0x10+i), m.ReadMemory(0x400+i))
	}
	assert.Equal(t, byte(0), m.ReadMemory(0x404))
	assert.Equal(t, uint16(0x400), m.Index())

	m.registers = [RegisterCount]byte{}
	step(t, m, 1)
	assert.Equal(t, byte(0x10), m.Register(0))
	assert.Equal(t, byte(0x11), m.Register(1))
	assert.Equal(t, byte(0x12), m.Register(2))
	assert.Equal(t, byte(0), m.Register(3))
	assert.Equal(t, uint16(0x400), m.Index())
}

func TestExecute_Draw(t *testing.T) {
	m := newTestMachine(t,
		0xA0, 0x00, // ld I, $000
		0xD0, 0x15, // drw V0, V1, $5
		0xD0, 0x15, // drw V0, V1, $5
	)
	m.registers[FlagRegister] = 0xAA

	step(t, m, 2)
	assert.Equal(t, byte(0), m.Register(FlagRegister))
	for x := range 4 {
		assert.True(t, m.Display().Pixel(x, 0))
	}
	assert.False(t, m.Display().Pixel(4, 0))
	assert.True(t, m.Display().Pixel(0, 1))
	assert.False(t, m.Display().Pixel(1, 1))

	step(t, m, 1)
	assert.Equal(t, byte(1), m.Register(FlagRegister))
	for _, pixel := range m.Display().Pixels() {
		assert.Equal(t, byte(0), pixel)
	}
}

func TestExecute_DrawCollisionLastRow(t *testing.T) {
	m := newTestMachine(t, 0xD0, 0x13) // drw V0, V1, $3
	m.index = 0x300
	m.memory.Write(0x300, 0x80)
	m.memory.Write(0x301, 0x40)
	m.memory.Write(0x302, 0x20)
	m.display.drawSprite(10, 7, []byte{0x20})
	m.registers[0] = 10
	m.registers[1] = 5

	step(t, m, 1)
	assert.Equal(t, byte(1), m.Register(FlagRegister))
	assert.True(t, m.Display().Pixel(10, 5))
	assert.True(t, m.Display().Pixel(11, 6))
	assert.False(t, m.Display().Pixel(12, 7))
}

func TestExecute_DrawFlagAsCoordinate(t *testing.T) {
	m := newTestMachine(t, 0xDF, 0xF1) // drw VF, VF, $1
	m.index = 0x300
	m.memory.Write(0x300, 0x80)
	m.registers[FlagRegister] = 3

	step(t, m, 1)
	assert.True(t, m.Display().Pixel(3, 3))
	assert.Equal(t, byte(0), m.Register(FlagRegister))
}

func TestExecute_Clear(t *testing.T) {
	m := newTestMachine(t, 0x00, 0xE0)
	m.display.drawSprite(0, 0, []byte{0xFF, 0xFF})

	step(t, m, 1)
	for _, pixel := range m.Display().Pixels() {
		assert.Equal(t, byte(0), pixel)
	}
}

func TestExecute_Trace(t *testing.T) {
	m := New(log.NewTestLogger(t), Options{Trace: true})
	assert.NoError(t, m.LoadProgram([]byte{0x60, 0x01, 0x00, 0xE0}))

	step(t, m, 2)
	assert.Equal(t, byte(1), m.Register(0))
}
