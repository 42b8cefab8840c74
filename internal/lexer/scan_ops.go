package lexer

import (
	"arithc/internal/token"
)

// scanPunctuator читает ровно один байт из "+-*/%()".
func (lx *Lexer) scanPunctuator() (token.Token, bool) {
	if lx.cursor.EOF() || !token.IsPunctuator(lx.cursor.Peek()) {
		return token.Token{}, false
	}
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Punctuator, Span: sp, Text: lx.cursor.Text(sp)}, true
}
