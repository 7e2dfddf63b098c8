package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit into the program region.
	ErrProgramTooLarge = errors.New("program exceeds memory capacity")
	// ErrUnimplemented is matched by faults caused by undecodable instructions.
	ErrUnimplemented = errors.New("unimplemented instruction")
	// ErrHalted is returned when stepping a machine that stopped on a fault.
	ErrHalted = errors.New("machine halted")
)

// FaultError describes a fatal decode failure.
type FaultError struct {
	Address     uint16  // address of the offending instruction
	Bytes       [2]byte // raw instruction bytes
	Disassembly string  // textual form if the encoding is known to the disassembler
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s $%02X%02X at $%04X", ErrUnimplemented, e.Bytes[0], e.Bytes[1], e.Address)
}

// Unwrap allows errors.Is(err, ErrUnimplemented).
func (e *FaultError) Unwrap() error {
	return ErrUnimplemented
}

// Warning identifies a kind of non-fatal structural overflow.
type Warning int

// Structural overflow kinds.
const (
	StackOverflow Warning = iota
	StackUnderflow
	ProgramCounterOverflow

	warningKinds
)

var warningNames = [warningKinds]string{
	StackOverflow:          "stack overflow",
	StackUnderflow:         "stack underflow",
	ProgramCounterOverflow: "program counter overflow",
}

func (w Warning) String() string {
	if w < 0 || w >= warningKinds {
		return fmt.Sprintf("warning(%d)", int(w))
	}
	return warningNames[w]
}

// Warnings counts the structural overflows that occurred, per kind.
type Warnings [warningKinds]uint64

// Total returns the number of warnings of all kinds.
func (w Warnings) Total() uint64 {
	var total uint64
	for _, count := range w {
		total += count
	}
	return total
}
