package lexer

import (
	"fmt"

	"arithc/internal/source"
)

// Error is returned when no token alternative matches at some offset.
// Lexing stops at the first such offset.
type Error struct {
	Span   source.Span
	Offset uint32
	Text   string // offending character
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to tokenize: unexpected %q at offset %d", e.Text, e.Offset)
}
