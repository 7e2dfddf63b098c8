// Package vm implements the CHIP-8 virtual machine.
//
// # Machine State
//
// A Machine owns all interpreter state:
//   - 4KB of memory with the font glyphs at FontStart and programs loaded at ProgramStart
//   - 16 general purpose 8-bit registers V0-VF, where VF doubles as carry,
//     borrow, shift and collision flag
//   - the 16-bit address register I, the program counter and a 16 slot call stack
//   - the delay and sound timers, counting down at TimerFrequency
//   - a DisplayWidth x DisplayHeight monochrome framebuffer
//
// # Execution
//
// The driver calls Step to execute one instruction and, on its own wall clock
// cadence, TickTimers with the elapsed real time. The key wait instruction
// suspends stepping until the Keypad reports a held key.
//
// # Errors
//
// Stack overflows, stack underflows and program counter overflows are structural
// warnings: they are logged, counted and the offending pointer is clamped.
// Undecodable instructions are fatal, Step returns a *FaultError and the machine
// stays halted.
//
// # Usage Example
//
//	m := vm.New(logger, vm.Options{Keypad: keypad})
//	if err := m.LoadProgram(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		if err := m.Step(); err != nil {
//			return err
//		}
//	}
package vm
