package parser

import (
	"fmt"

	"arithc/internal/diag"
	"arithc/internal/source"
)

// Error describes why the expression could not be parsed.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Index int // token index where the failing rule stopped
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to parse: %s (token %d)", e.Msg, e.Index)
}
