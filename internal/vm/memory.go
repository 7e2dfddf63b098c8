package vm

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: built-in font glyphs
//	0x050-0x1FF: reserved interpreter area
//	0x200-0xE9F: user program space
//	0xEA0-0xFFF: reserved stack and system region
const (
	// MemorySize is the size of the CHIP-8 address space in bytes.
	MemorySize = 0x1000

	// FontStart is the memory address of the first font glyph.
	FontStart = 0x000

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// StackRegionStart is the first address of the reserved high region.
	// The program counter never advances past it.
	StackRegionStart = 0xEA0

	// MaxProgramSize is the largest program that fits between ProgramStart and StackRegionStart.
	MaxProgramSize = StackRegionStart - ProgramStart

	addressMask = MemorySize - 1
)

// Memory is the flat CHIP-8 address space. All accesses wrap within MemorySize.
type Memory [MemorySize]byte

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) byte {
	return m[address&addressMask]
}

// Write stores a byte at the given address.
func (m *Memory) Write(address uint16, value byte) {
	m[address&addressMask] = value
}

// ReadWord returns the big-endian 16 bit word at the given address.
func (m *Memory) ReadWord(address uint16) uint16 {
	return uint16(m.Read(address))<<8 | uint16(m.Read(address+1))
}
