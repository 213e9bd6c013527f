package cpu

import (
	"errors"
	"fmt"
)

// ErrUnimplementedOpcode is returned when the CPU fetches an opcode that
// has no handler. The CPU cannot make further progress afterwards.
var ErrUnimplementedOpcode = errors.New("cpu: unimplemented opcode")

// OpcodeError describes the opcode that faulted the CPU and where it
// was fetched from.
type OpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%s 0x%02X at 0x%04X", ErrUnimplementedOpcode, e.Opcode, e.PC)
}

// Unwrap returns ErrUnimplementedOpcode.
func (e *OpcodeError) Unwrap() error {
	return ErrUnimplementedOpcode
}
