// Package options contains the program options.
package options

// Frontend names.
const (
	FrontendHeadless = "headless"
	FrontendSDL      = "sdl"
	FrontendTerminal = "terminal"
)

const (
	// DefaultInstructionsPerSecond is the execution speed that most programs expect.
	DefaultInstructionsPerSecond = 700
	// DefaultFrameRate is the rate in Hz of the driver loop.
	DefaultFrameRate = 60
)

// Parameters contains file path options.
type Parameters struct {
	Input string `arg:"positional" usage:"ROM file to run"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend    string `flag:"f" usage:"frontend: sdl, terminal, headless (default: auto-detect)"`
	Disassemble bool   `flag:"disassemble" usage:"print the disassembly instead of running"`
	Trace       bool   `flag:"trace" usage:"log each executed instruction"`
	Debug       bool   `flag:"debug" usage:"enable debug logging"`
	Quiet       bool   `flag:"q" usage:"quiet mode"`
}

// MachineFlags contains execution options.
type MachineFlags struct {
	InstructionsPerSecond int    `flag:"ips" usage:"instructions per second" default:"700"`
	MaxInstructions       uint64 `flag:"max" usage:"stop after n instructions (0 = unlimited)"`
	Seed                  int64  `flag:"seed" usage:"random seed (0 = time based)"`
}

// OutputFlags contains disassembly formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the virtual machine.
type Program struct {
	Parameters
	Flags
	MachineFlags
	OutputFlags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	HexComments    bool
	OffsetComments bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments:    true,
		OffsetComments: true,
	}
}

// Machine defines options to control the driver of the virtual machine.
type Machine struct {
	InstructionsPerSecond int    // instructions executed per second of real time
	FrameRate             int    // driver loop iterations per second
	MaxInstructions       uint64 // stop after this many instructions, 0 for no limit
	Seed                  int64  // seed of the random source, 0 for a time based seed
	Trace                 bool   // log every executed instruction
}

// NewMachine returns a new options instance with default options.
func NewMachine() Machine {
	return Machine{
		InstructionsPerSecond: DefaultInstructionsPerSecond,
		FrameRate:             DefaultFrameRate,
	}
}
