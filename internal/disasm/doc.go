// Package disasm implements a CHIP-8 disassembler.
//
// Format converts a single opcode to its assembly text. The mnemonic is taken
// from the CHIP-8 opcode tables of retrogolib, the operands are formatted
// based on the opcode family:
//
//	00E0  cls
//	1234  jp $234
//	6A05  ld VA, $05
//	8236  shr V2
//	A234  ld I, $234
//	D235  drw V2, V3, $5
//	F307  ld V3, DT
//
// The Disassembler writes a listing of a whole program, one line per 2 byte
// word starting at the program load address. Jump and call destinations
// inside the program get labels, words that do not encode a known
// instruction are written as .byte data.
package disasm
