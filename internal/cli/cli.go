// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
)

// ParseFlags parses command line flags and returns program, disassembler and machine options
func ParseFlags() (options.Program, options.Disassembler, options.Machine, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts options.Program
	readOptionFlags(flags, &opts)
	disasmOptions := options.NewDisassembler()
	readDisasmOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, disasmOptions, options.Machine{}, newUsageError(flags, err)
	}

	if err := validateArgs(args); err != nil {
		return opts, disasmOptions, options.Machine{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, disasmOptions, options.Machine{}, err
	}
	if err := validateOptionCombinations(opts); err != nil {
		return opts, disasmOptions, options.Machine{}, err
	}

	opts.Input = args[0]
	disasmOptions.HexComments = !opts.NoHexComments
	disasmOptions.OffsetComments = !opts.NoOffsets

	return opts, disasmOptions, createMachineOptions(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func newUsageError(flags *flag.FlagSet, err error) *UsageError {
	e := &UsageError{flags: flags}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		e.msg = err.Error()
	}
	return e
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.InstructionsPerSecond <= 0 {
		return fmt.Errorf("invalid instructions per second: %d", opts.InstructionsPerSecond)
	}

	opts.Frontend = strings.ToLower(opts.Frontend)
	validFrontends := []string{options.FrontendSDL, options.FrontendTerminal, options.FrontendHeadless}
	if opts.Frontend == "" {
		return nil
	}
	for _, valid := range validFrontends {
		if opts.Frontend == valid {
			return nil
		}
	}

	return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
		opts.Frontend, strings.Join(validFrontends, ", "))
}

// validateOptionCombinations checks for flags that can not be used together.
func validateOptionCombinations(opts options.Program) error {
	if !opts.Disassemble {
		return nil
	}
	if opts.Trace || opts.MaxInstructions > 0 || opts.Frontend != "" {
		return errors.New("-trace, -max and -f can not be combined with -disassemble")
	}
	return nil
}

// createMachineOptions creates machine options based on program options
func createMachineOptions(opts options.Program) options.Machine {
	machineOptions := options.NewMachine()
	machineOptions.InstructionsPerSecond = opts.InstructionsPerSecond
	machineOptions.MaxInstructions = opts.MaxInstructions
	machineOptions.Seed = opts.Seed
	machineOptions.Trace = opts.Trace
	return machineOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Frontend, "f", "", "frontend to use (sdl/terminal/headless), auto-detected if not given")
	flags.BoolVar(&opts.Disassemble, "disassemble", false, "print the disassembly of the ROM instead of running it")
	flags.IntVar(&opts.InstructionsPerSecond, "ips", options.DefaultInstructionsPerSecond, "instructions to execute per second")
	flags.Uint64Var(&opts.MaxInstructions, "max", 0, "stop after the given number of instructions, 0 for no limit")
	flags.Int64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 for a time based seed")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, enables debug logging")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses in comments")
}
