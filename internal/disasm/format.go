package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Format returns the assembly text of a CHIP-8 instruction opcode.
// It returns false if the opcode does not encode a known instruction.
func Format(opcode uint16) (string, bool) {
	ins, ok := lookup(opcode)
	if !ok {
		return "", false
	}

	if params := formatParams(opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params), true
	}
	return ins.Name, true
}

// lookup identifies the instruction of an opcode using the opcode tables
// of the first nibble.
func lookup(opcode uint16) (*chip8.Instruction, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value && op.Instruction != nil {
			return op.Instruction, true
		}
	}
	return nil, false
}

// formatParams formats the instruction parameters based on the opcode family.
func formatParams(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x0000:
		return formatSystemInstruction(opcode)
	case 0x1000, 0x2000:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return formatByteInstruction(opcode)
	case 0x5000, 0x9000:
		return formatRegisterPair(opcode)
	case 0x8000:
		return formatArithmeticInstruction(opcode)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	case 0xD000:
		return formatDrawInstruction(opcode)
	case 0xE000:
		return fmt.Sprintf("V%X", extractRegisterX(opcode))
	case 0xF000:
		return formatMiscInstruction(opcode)
	}
	return ""
}

// formatSystemInstruction formats the 0 group, CLS and RET have no parameters.
func formatSystemInstruction(opcode uint16) string {
	switch opcode {
	case 0x00E0, 0x00EE:
		return ""
	}
	return fmt.Sprintf("$%03X", opcode&0x0FFF)
}

// formatByteInstruction formats instructions with a register and a byte (SE, SNE, LD, ADD, RND).
func formatByteInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
}

// formatRegisterPair formats instructions with two registers.
func formatRegisterPair(opcode uint16) string {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)
	return fmt.Sprintf("V%X, V%X", x, y)
}

// formatArithmeticInstruction formats the 8 group, shifts only name the target register.
func formatArithmeticInstruction(opcode uint16) string {
	switch opcode & 0x000F {
	case 0x6, 0xE:
		return fmt.Sprintf("V%X", extractRegisterX(opcode))
	}
	return formatRegisterPair(opcode)
}

// formatDrawInstruction formats draw instructions (DRW).
func formatDrawInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)
	n := opcode & 0x000F
	return fmt.Sprintf("V%X, V%X, $%X", x, y, n)
}

// formatMiscInstruction formats the F group timer, key, font and memory transfers.
func formatMiscInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// extractRegisterX extracts the X register nibble from a CHIP-8 opcode.
func extractRegisterX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// extractRegisterY extracts the Y register nibble from a CHIP-8 opcode.
func extractRegisterY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
