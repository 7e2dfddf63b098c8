package vm

import "fmt"

// String returns a dump of the registers and the stack for diagnostics.
func (m *Machine) String() string {
	var s []byte
	keyWait := "-"
	if register, ok := m.KeyWait(); ok {
		keyWait = fmt.Sprintf("V%X", register)
	}
	s = fmt.Appendf(s, "PC:%04X SP:%02X I:%04X DT:%02X ST:%02X KW:%s\n",
		m.pc, m.sp, m.index, m.delayTimer, m.soundTimer, keyWait)
	for i, value := range m.registers {
		s = fmt.Appendf(s, "V%X:%02X", i, value)
		if i%8 == 7 {
			s = append(s, '\n')
		} else {
			s = append(s, ' ')
		}
	}
	for i := range m.sp {
		s = fmt.Appendf(s, "S%X:%04X ", i, m.stack[i])
	}
	return string(s)
}
