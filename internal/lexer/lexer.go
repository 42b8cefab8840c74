package lexer

import (
	"unicode/utf8"

	"arithc/internal/diag"
	"arithc/internal/source"
	"arithc/internal/token"
)

// Lexer turns the bytes of one file into tokens.
//
// Alternatives are tried in a fixed order at each offset: a single
// whitespace byte, an integer literal, a punctuator. The first offset where
// none of them match is fatal; after that Next keeps returning the same error.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	err    *Error
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next возвращает следующий значимый токен. После конца ввода всегда EOF.
func (lx *Lexer) Next() (token.Token, error) {
	if lx.err != nil {
		return token.Token{Kind: token.Invalid, Span: lx.err.Span}, lx.err
	}
	for !lx.cursor.EOF() {
		if lx.skipWhitespace() {
			continue
		}
		if tok, ok := lx.scanInteger(); ok {
			return tok, nil
		}
		if tok, ok := lx.scanPunctuator(); ok {
			return tok, nil
		}
		return token.Token{Kind: token.Invalid, Span: lx.EmptySpan()}, lx.fail()
	}
	return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}, nil
}

// Tokenize lexes the whole file. The returned slice never contains EOF.
// On failure nothing is returned besides the error: the run is aborted.
func Tokenize(file *source.File, opts Options) ([]token.Token, error) {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/2+1)
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// EmptySpan returns a zero-width span at the current offset.
func (lx *Lexer) EmptySpan() source.Span {
	return source.At(lx.file.ID, lx.cursor.Off)
}

// skipWhitespace съедает ровно один ' ' или '\n'.
func (lx *Lexer) skipWhitespace() bool {
	return lx.cursor.Eat(' ') || lx.cursor.Eat('\n')
}

// fail records the lexical error at the current offset and reports it.
func (lx *Lexer) fail() *Error {
	start := lx.cursor.Mark()
	// подсвечиваем символ целиком, а не первый байт его UTF-8
	_, size := utf8.DecodeRune(lx.cursor.Rest())
	lx.cursor.Off += uint32(max(size, 1)) //nolint:gosec // size <= utf8.UTFMax
	sp := lx.cursor.SpanFrom(start)
	lx.cursor.Reset(start)
	text := lx.cursor.Text(sp)

	lx.err = &Error{Span: sp, Offset: uint32(start), Text: text}

	if lx.opts.Reporter != nil {
		if text == "0" {
			diag.ReportError(lx.opts.Reporter, diag.LexBadNumber, sp, "integer literal cannot start with '0'").
				WithNote(sp, "integer literals are a nonzero digit followed by digits; a lone 0 is not accepted").
				Emit()
		} else {
			diag.ReportError(lx.opts.Reporter, diag.LexUnknownChar, sp, "unknown character "+quoteChar(text)).Emit()
		}
	}
	return lx.err
}

func quoteChar(s string) string {
	if s == "\t" {
		return `'\t'`
	}
	if s == "\r" {
		return `'\r'`
	}
	return "'" + s + "'"
}
