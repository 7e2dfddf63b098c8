// Package driver runs a virtual machine in real time.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/vm"
	"github.com/retroenv/retrogolib/log"
)

// Frontend presents the machine output and provides the keypad input.
type Frontend interface {
	vm.Keypad

	// Render presents the framebuffer.
	Render(display *vm.Display) error
	// SetTone switches the tone indicator on or off.
	SetTone(active bool)
	// Poll processes pending input events and returns whether the user requested to quit.
	Poll() (quit bool, err error)
	// Close releases all resources of the frontend.
	Close() error
}

// LimitError is returned when the configured maximum number of instructions was executed.
type LimitError struct {
	MaxInstructions uint64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("maximum number of instructions reached: %d", e.MaxInstructions)
}

// Driver advances a machine based on the elapsed real time.
type Driver struct {
	logger   *log.Logger
	machine  *vm.Machine
	frontend Frontend
	options  options.Machine
	clock    Clock

	credit   int64  // instruction budget in instructions per second times nanoseconds
	steps    uint64 // number of executed steps
	rendered bool
	tone     bool
}

// New returns a new driver for the machine. The frontend becomes the keypad
// of the machine.
func New(logger *log.Logger, machine *vm.Machine, frontend Frontend, opts options.Machine) *Driver {
	if opts.FrameRate <= 0 {
		opts.FrameRate = options.DefaultFrameRate
	}
	if opts.InstructionsPerSecond <= 0 {
		opts.InstructionsPerSecond = options.DefaultInstructionsPerSecond
	}

	machine.SetKeypad(frontend)
	return &Driver{
		logger:   logger,
		machine:  machine,
		frontend: frontend,
		options:  opts,
		clock:    systemClock{},
	}
}

// SetClock replaces the source of real time.
func (d *Driver) SetClock(clock Clock) {
	d.clock = clock
}

// Steps returns the number of machine steps executed so far.
func (d *Driver) Steps() uint64 {
	return d.steps
}

// Run executes the machine until the context is cancelled, the frontend
// requests to quit, the machine faults or the instruction limit is reached.
// A quit request returns nil, a cancelled context returns the context error.
func (d *Driver) Run(ctx context.Context) error {
	period := time.Second / time.Duration(d.options.FrameRate)
	last := d.clock.Now()

	d.logger.Debug("Starting machine",
		log.Int("instructions_per_second", d.options.InstructionsPerSecond),
		log.Int("frame_rate", d.options.FrameRate))

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running machine: %w", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("running machine: %w", ctx.Err())
		case <-d.clock.After(period):
		}

		now := d.clock.Now()
		elapsed := now.Sub(last)
		last = now

		quit, err := d.frame(elapsed)
		if err != nil {
			return err
		}
		if quit {
			d.logger.Info("Quit requested", log.Int("steps", int(d.steps)))
			return nil
		}
	}
}

// frame processes one iteration of the driver loop.
func (d *Driver) frame(elapsed time.Duration) (bool, error) {
	quit, err := d.frontend.Poll()
	if err != nil {
		return false, fmt.Errorf("polling frontend: %w", err)
	}
	if quit {
		return true, nil
	}

	stepErr := d.runSteps(elapsed)
	d.machine.TickTimers(elapsed)

	if tone := d.machine.ToneActive(); tone != d.tone {
		d.tone = tone
		d.frontend.SetTone(tone)
	}

	// the final frame is presented even if the machine stopped
	display := d.machine.Display()
	if display.Changed() || !d.rendered {
		d.rendered = true
		if err := d.frontend.Render(display); err != nil {
			return false, fmt.Errorf("rendering display: %w", err)
		}
	}
	return false, stepErr
}

// runSteps executes the number of instructions that are due for the elapsed time.
func (d *Driver) runSteps(elapsed time.Duration) error {
	if elapsed > 0 {
		d.credit += int64(d.options.InstructionsPerSecond) * elapsed.Nanoseconds()
	}
	due := d.credit / int64(time.Second)
	d.credit %= int64(time.Second)

	for range due {
		if limit := d.options.MaxInstructions; limit > 0 && d.steps >= limit {
			return &LimitError{MaxInstructions: limit}
		}
		d.steps++
		if err := d.machine.Step(); err != nil {
			d.logger.Error("Machine stopped",
				log.Err(err),
				log.Int("steps", int(d.steps)),
				log.String("state", d.machine.String()))
			return fmt.Errorf("executing program: %w", err)
		}
	}
	return nil
}
