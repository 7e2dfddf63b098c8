package disasm

import "fmt"

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
)

// collectDestinations marks all jump and call targets that point to an
// instruction inside the program.
func (dis *Disassembler) collectDestinations(program []byte) {
	for offset := 0; offset+1 < len(program); offset += opcodeSize {
		opcode := uint16(program[offset])<<8 | uint16(program[offset+1])
		target := opcode & 0x0FFF
		if !isInstructionAddress(target, len(program)) {
			continue
		}

		switch opcode & 0xF000 {
		case 0x1000:
			dis.branchDestinations[target] = struct{}{}
		case 0x2000:
			dis.callDestinations[target] = struct{}{}
		}
	}
}

// label returns the label name of an address or an empty string if the
// address is not a jump or call destination.
// Call destinations take precedence over jump destinations.
func (dis *Disassembler) label(address uint16) string {
	switch {
	case dis.callDestinations.Contains(address):
		return fmt.Sprintf(funcNaming, address)
	case dis.branchDestinations.Contains(address):
		return fmt.Sprintf(labelNaming, address)
	default:
		return ""
	}
}

// isInstructionAddress returns whether the address is the start of a word
// inside a program of the given size.
func isInstructionAddress(address uint16, size int) bool {
	if address < codeBaseAddress {
		return false
	}
	offset := int(address - codeBaseAddress)
	return offset%opcodeSize == 0 && offset < size
}
