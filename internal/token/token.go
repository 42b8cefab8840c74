package token

import (
	"arithc/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token is the punctuator p.
func (t Token) Is(p string) bool {
	return t.Kind == Punctuator && t.Text == p
}

// IsInteger reports whether the token is an integer literal.
func (t Token) IsInteger() bool { return t.Kind == Integer }

// IsAdditive reports whether the token is '+' or '-'.
func (t Token) IsAdditive() bool {
	return t.Is("+") || t.Is("-")
}

// IsMultiplicative reports whether the token is '*', '/' or '%'.
func (t Token) IsMultiplicative() bool {
	return t.Is("*") || t.Is("/") || t.Is("%")
}

// IsBinaryOp reports whether the token is any binary operator.
func (t Token) IsBinaryOp() bool {
	return t.IsAdditive() || t.IsMultiplicative()
}
