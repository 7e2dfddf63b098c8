// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/vm"
)

// ErrEmptyProgram is returned for ROM files that do not contain any data.
var ErrEmptyProgram = errors.New("program is empty")

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads and validates the ROM file at the given path.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	program, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return program, nil
}

// LoadFromReader reads and validates a ROM image from the reader.
// At most one byte more than the program region can hold is read, so that
// oversized input is detected without reading it completely.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	program, err := io.ReadAll(io.LimitReader(reader, vm.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	if err := Validate(program); err != nil {
		return nil, err
	}
	return program, nil
}

// Validate checks that the program fits into the program region of the machine.
func Validate(program []byte) error {
	if len(program) == 0 {
		return ErrEmptyProgram
	}
	if len(program) > vm.MaxProgramSize {
		return fmt.Errorf("%w: program has more than %d bytes", vm.ErrProgramTooLarge, vm.MaxProgramSize)
	}
	return nil
}
