package lexer

import (
	"arithc/internal/token"
)

// scanInteger: nonzero_digit {digit}. Ведущий '0' не принимается вообще,
// поэтому "0" и "07" падают на лексере.
func (lx *Lexer) scanInteger() (token.Token, bool) {
	if !isNonzeroDigit(lx.cursor.Peek()) {
		return token.Token{}, false
	}
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for isDigit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Integer, Span: sp, Text: lx.cursor.Text(sp)}, true
}

func isNonzeroDigit(b byte) bool { return b >= '1' && b <= '9' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
