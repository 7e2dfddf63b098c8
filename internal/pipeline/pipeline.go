// Package pipeline orchestrates the program execution and disassembly workflows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/detector"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/driver"
	"github.com/retroenv/chip8vm/internal/frontend/headless"
	"github.com/retroenv/chip8vm/internal/frontend/sdl"
	"github.com/retroenv/chip8vm/internal/frontend/terminal"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/vm"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

const windowTitle = "chip8vm"

// FrontendConstructor creates the frontend with the given name.
type FrontendConstructor func(name string) (driver.Frontend, error)

// Pipeline orchestrates the complete workflow of a ROM file.
type Pipeline struct {
	logger      *log.Logger
	detector    *detector.Detector
	loader      *loader.Loader
	newFrontend FrontendConstructor
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	p := &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
	p.newFrontend = p.createFrontend
	return p
}

// SetFrontendConstructor replaces the function that creates frontends.
func (p *Pipeline) SetFrontendConstructor(constructor FrontendConstructor) {
	p.newFrontend = constructor
}

// Execute loads the ROM file and either disassembles it to the writer or runs it.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler,
	machineOpts options.Machine, writer io.Writer) error {

	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	p.printInfo(opts, program)

	if opts.Disassemble {
		return p.Disassemble(program, disasmOpts, writer)
	}
	return p.Run(ctx, program, p.detector.Detect(opts), machineOpts)
}

// Disassemble writes the disassembly of a pre-loaded program.
func (p *Pipeline) Disassemble(program []byte, disasmOpts options.Disassembler, writer io.Writer) error {
	dis := disasm.New(p.logger, disasmOpts)
	if err := dis.Write(writer, program); err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}
	return nil
}

// Run executes a pre-loaded program with the given frontend until the user
// quits, the context is cancelled or the instruction limit is reached.
func (p *Pipeline) Run(ctx context.Context, program []byte, frontendName string, machineOpts options.Machine) error {
	frontend, err := p.newFrontend(frontendName)
	if err != nil {
		return fmt.Errorf("creating %s frontend: %w", frontendName, err)
	}
	defer func() {
		if err := frontend.Close(); err != nil {
			p.logger.Error("Closing frontend failed", log.Err(err))
		}
	}()

	machine := vm.New(p.logger, vm.Options{
		Random: vm.NewRandom(machineOpts.Seed),
		Trace:  machineOpts.Trace,
		ToneStopped: func() {
			p.logger.Debug("Tone stopped")
		},
	})
	if err := machine.LoadProgram(program); err != nil {
		return fmt.Errorf("loading program into memory: %w", err)
	}

	d := driver.New(p.logger, machine, frontend, machineOpts)
	err = d.Run(ctx)

	var limitErr *driver.LimitError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		p.logger.Info("Execution cancelled", log.Int("steps", int(d.Steps())))
		return nil
	case errors.As(err, &limitErr):
		p.logger.Info("Instruction limit reached", log.Int("steps", int(d.Steps())))
		p.logWarnings(machine.Warnings())
		return nil
	default:
		p.logWarnings(machine.Warnings())
		return fmt.Errorf("running program: %w", err)
	}
}

// createFrontend creates the frontend for the given name.
func (p *Pipeline) createFrontend(name string) (driver.Frontend, error) {
	switch name {
	case options.FrontendSDL:
		frontend, err := sdl.New(p.logger, sdl.Config{Title: windowTitle})
		if err != nil {
			return nil, fmt.Errorf("creating window: %w", err)
		}
		return frontend, nil
	case options.FrontendTerminal:
		frontend, err := terminal.New(p.logger, os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("initializing terminal: %w", err)
		}
		return frontend, nil
	case options.FrontendHeadless:
		return headless.New(p.logger), nil
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
}

// printInfo prints information about the ROM being processed.
func (p *Pipeline) printInfo(opts options.Program, program []byte) {
	if opts.Quiet {
		return
	}

	action := "Running CHIP-8 ROM"
	if opts.Disassemble {
		action = "Disassembling CHIP-8 ROM"
	}
	p.logger.Info(action,
		log.String("file", opts.Input),
		log.Int("size", len(program)),
	)
}

func (p *Pipeline) logWarnings(warnings vm.Warnings) {
	if warnings.Total() == 0 {
		return
	}
	for kind, count := range warnings {
		if count == 0 {
			continue
		}
		p.logger.Warn("Structural warnings occurred",
			log.Stringer("kind", vm.Warning(kind)),
			log.Int("count", int(count)))
	}
}

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8vm", log.String("version", buildinfo.Version(version, commit, date)))
}
