package disasm

import (
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// codeBaseAddress is the address that programs are loaded to.
const codeBaseAddress = 0x200

const (
	opcodeSize    = 2
	commentColumn = 24
)

// Disassembler writes a listing of a CHIP-8 program.
type Disassembler struct {
	logger  *log.Logger
	options options.Disassembler

	branchDestinations set.Set[uint16] // set of all addresses that are jumped to
	callDestinations   set.Set[uint16] // set of all addresses that are called
}

// New returns a new disassembler.
func New(logger *log.Logger, options options.Disassembler) *Disassembler {
	return &Disassembler{
		logger:  logger,
		options: options,
	}
}

// Write disassembles the program and writes the listing to the writer.
// Every 2 byte word is output as one line, words that do not encode a known
// instruction are output as data bytes.
func (dis *Disassembler) Write(w io.Writer, program []byte) error {
	dis.branchDestinations = set.New[uint16]()
	dis.callDestinations = set.New[uint16]()
	dis.collectDestinations(program)

	dis.logger.Debug("Disassembling program",
		log.Int("size", len(program)),
		log.Int("labels", len(dis.branchDestinations)+len(dis.callDestinations)))

	var buf strings.Builder
	fmt.Fprintf(&buf, "; CHIP-8 program, %d bytes\n", len(program))
	fmt.Fprintf(&buf, "; CRC32 checksum: %08x\n", crc32.ChecksumIEEE(program))
	fmt.Fprintf(&buf, "; Code base address: $%04x\n\n", codeBaseAddress)

	for offset := 0; offset < len(program); offset += opcodeSize {
		address := uint16(codeBaseAddress + offset)
		if label := dis.label(address); label != "" {
			fmt.Fprintf(&buf, "%s:\n", label)
		}

		data := program[offset:min(offset+opcodeSize, len(program))]
		dis.writeLine(&buf, address, data)
	}

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}

func (dis *Disassembler) writeLine(buf *strings.Builder, address uint16, data []byte) {
	var code string
	if len(data) < opcodeSize {
		code = fmt.Sprintf(".byte $%02X", data[0])
	} else {
		code = dis.formatWord(uint16(data[0])<<8 | uint16(data[1]))
	}

	comment := dis.comment(address, data)
	if comment == "" {
		fmt.Fprintf(buf, "  %s\n", code)
		return
	}
	fmt.Fprintf(buf, "  %-*s ; %s\n", commentColumn, code, comment)
}

// formatWord returns the instruction text of an opcode, jump and call targets
// that are inside the program are replaced by their label.
func (dis *Disassembler) formatWord(opcode uint16) string {
	text, ok := Format(opcode)
	if !ok {
		return fmt.Sprintf(".byte $%02X, $%02X", byte(opcode>>8), byte(opcode))
	}

	switch opcode & 0xF000 {
	case 0x1000, 0x2000:
		if label := dis.label(opcode & 0x0FFF); label != "" {
			ins, _ := lookup(opcode)
			return fmt.Sprintf("%s %s", ins.Name, label)
		}
	}
	return text
}

func (dis *Disassembler) comment(address uint16, data []byte) string {
	var parts []string
	if dis.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", address))
	}
	if dis.options.HexComments {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		parts = append(parts, strings.Join(hex, " "))
	}
	return strings.Join(parts, " ")
}
