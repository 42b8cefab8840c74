package parser

import (
	"strconv"

	"arithc/internal/ast"
	"arithc/internal/diag"
	"arithc/internal/token"
)

// additive := multiplicative (('+' | '-') multiplicative)*
func (p *Parser) additive() (ast.NodeID, *Error) {
	return p.chain(p.multiplicative, token.Token.IsAdditive)
}

// multiplicative := primary (('*' | '/' | '%') primary)*
func (p *Parser) multiplicative() (ast.NodeID, *Error) {
	return p.chain(p.primary, token.Token.IsMultiplicative)
}

// chain parses one operand followed by any number of operator/operand
// pairs, folding them left-associatively. The first operand is mandatory.
// If an operand after an operator fails, the operator is un-consumed and the
// chain ends successfully with what it has so far.
func (p *Parser) chain(operand func() (ast.NodeID, *Error), isOp func(token.Token) bool) (ast.NodeID, *Error) {
	left, err := operand()
	if err != nil {
		return ast.NoNodeID, err
	}
	for {
		tok, ok := p.peek()
		if !ok || !isOp(tok) {
			return left, nil
		}
		before := p.save()
		op := p.advance()
		right, err := operand()
		if p.fatal != nil {
			return ast.NoNodeID, p.fatal
		}
		if err != nil {
			p.restore(before)
			return left, nil
		}
		left = p.builder.NewBinary(op, left, right)
	}
}

// primary := Integer | '(' additive ')'
func (p *Parser) primary() (ast.NodeID, *Error) {
	tok, ok := p.peek()
	if !ok {
		return ast.NoNodeID, p.errorf(diag.SynExpectExpression, p.spanHere(), "expected expression, found end of input")
	}
	if tok.IsInteger() {
		value, err := strconv.ParseUint(tok.Text, 10, 64)
		if err != nil {
			p.fatal = p.errorf(diag.SynIntegerOutOfRange, tok.Span, "integer literal "+tok.Text+" does not fit in 64 bits")
			return ast.NoNodeID, p.fatal
		}
		p.advance()
		return p.builder.NewLeaf(tok, value), nil
	}
	if !tok.Is("(") {
		return ast.NoNodeID, p.errorf(diag.SynExpectExpression, tok.Span, "expected expression, found '"+tok.Text+"'")
	}

	start := p.save()
	open := p.advance()
	inner, err := p.additive()
	if err != nil {
		p.restore(start)
		return ast.NoNodeID, err
	}
	if !p.at(")") {
		e := p.errorf(diag.SynUnclosedParen, open.Span, "unclosed parenthesis")
		p.restore(start)
		return ast.NoNodeID, e
	}
	p.advance()
	return inner, nil
}
