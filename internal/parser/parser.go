package parser

import (
	"fmt"

	"arithc/internal/ast"
	"arithc/internal/diag"
	"arithc/internal/source"
	"arithc/internal/token"
)

// Parser: состояние разбора одного выражения.
// Курсор pos общий для всех правил; откат делается явным save/restore.
type Parser struct {
	tokens  []token.Token
	pos     int
	builder *ast.Builder
	opts    Options
	// fatal is set by errors that must not be backtracked over
	// (an integer literal that does not fit in 64 bits).
	fatal *Error
}

// Parse builds the AST for tokens and returns its root.
// Tokens left after the expression are ignored (a reporter gets a warning
// about them); a dangling operator is
// left unconsumed rather than treated as an error.
func Parse(tokens []token.Token, builder *ast.Builder, opts Options) (ast.NodeID, error) {
	root, _, err := ParseCount(tokens, builder, opts)
	return root, err
}

// ParseCount is Parse plus the number of tokens the expression consumed.
func ParseCount(tokens []token.Token, builder *ast.Builder, opts Options) (ast.NodeID, int, error) {
	p := Parser{tokens: tokens, builder: builder, opts: opts}
	root, perr := p.additive()
	if p.fatal != nil {
		perr = p.fatal
	}
	if perr != nil {
		p.report(perr)
		return ast.NoNodeID, 0, perr
	}
	if rest := len(p.tokens) - p.pos; rest > 0 && p.opts.Reporter != nil {
		first, last := p.tokens[p.pos].Span, p.tokens[len(p.tokens)-1].Span
		diag.ReportWarning(p.opts.Reporter, diag.SynTrailingTokens, first.Cover(last),
			fmt.Sprintf("%d trailing token(s) ignored", rest)).
			WithNote(first, "the expression ends before this token").
			Emit()
	}
	return root, p.pos, nil
}

type state struct {
	pos int
	cp  ast.Checkpoint
}

func (p *Parser) save() state { return state{pos: p.pos, cp: p.builder.Mark()} }

func (p *Parser) restore(s state) {
	p.pos = s.pos
	p.builder.Reset(s.cp)
}

// peek returns the current token; ok is false past the end.
func (p *Parser) peek() (token.Token, bool) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) at(punct string) bool {
	tok, ok := p.peek()
	return ok && tok.Is(punct)
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// spanHere points at the current token, or just after the last one at EOF.
func (p *Parser) spanHere() source.Span {
	if tok, ok := p.peek(); ok {
		return tok.Span
	}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1].Span
		return source.At(last.File, last.End)
	}
	// токенов нет вовсе: пустой или пробельный файл
	return source.At(p.opts.File, 0)
}

func (p *Parser) errorf(code diag.Code, sp source.Span, msg string) *Error {
	return &Error{Code: code, Span: sp, Index: p.pos, Msg: msg}
}

func (p *Parser) report(e *Error) {
	if p.opts.Reporter == nil {
		return
	}
	diag.ReportError(p.opts.Reporter, e.Code, e.Span, e.Msg).Emit()
}
