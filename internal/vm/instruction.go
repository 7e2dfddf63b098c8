package vm

import "fmt"

// instructionSize is the size of CHIP-8 instructions in bytes.
const instructionSize = 2

// Instruction is a decoded CHIP-8 instruction. Every 2 byte pattern decodes
// to an Instruction, whether it is executable is decided by the dispatcher.
type Instruction struct {
	Group byte   // high nibble of the first byte, selects the instruction family
	X     byte   // low nibble of the first byte, usually a register index
	Y     byte   // high nibble of the second byte, usually a register index
	N     byte   // low nibble of the second byte
	KK    byte   // second byte as 8 bit immediate
	NNN   uint16 // lowest 12 bits as address immediate
}

// Decode extracts the instruction fields from the two big-endian opcode bytes.
func Decode(hi, lo byte) Instruction {
	return Instruction{
		Group: hi >> 4,
		X:     hi & 0x0F,
		Y:     lo >> 4,
		N:     lo & 0x0F,
		KK:    lo,
		NNN:   uint16(hi&0x0F)<<8 | uint16(lo),
	}
}

// Opcode returns the 16 bit encoding of the instruction.
func (i Instruction) Opcode() uint16 {
	return uint16(i.Group)<<12 | i.NNN
}

// Bytes returns the big-endian encoding of the instruction.
func (i Instruction) Bytes() [2]byte {
	return [2]byte{i.Group<<4 | i.X, i.KK}
}

func (i Instruction) String() string {
	return fmt.Sprintf("%04X", i.Opcode())
}
