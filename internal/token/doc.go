// Package token defines lexical token kinds for arithmetic sources.
// Invariants:
//   - Token.Text is the exact source substring matched by the lexer.
//   - Token.Span matches Text exactly (Start..End).
//   - Integer text never starts with '0'.
//   - Punctuator text is exactly one byte out of "+-*/%()".
package token
