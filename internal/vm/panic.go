package vm

import (
	"fmt"
)

// PanicCode identifies the type of VM trap.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicDivideByZero   PanicCode = 2001 // VM2001: divq by zero
	PanicStackUnderflow PanicCode = 2002 // VM2002: pop from empty stack
	PanicBadOperand     PanicCode = 2003 // VM2003: operand shape not accepted by the instruction
	PanicUnknownSymbol  PanicCode = 2004 // VM2004: call or load of an undefined symbol
	PanicStepLimit      PanicCode = 2005 // VM2005: program ran past the step budget
	PanicNoEntry        PanicCode = 2006 // VM2006: entry label missing
	PanicUnimplemented  PanicCode = 1999 // VM1999: instruction outside the supported subset
)

// String returns the code as "VM2001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a trap raised while executing the program.
type VMError struct {
	Code    PanicCode
	Message string
	Line    int // assembly line of the trapping instruction, 0 if none
}

func (p *VMError) Error() string {
	if p.Line > 0 {
		return fmt.Sprintf("panic %s: %s (line %d)", p.Code, p.Message, p.Line)
	}
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}
