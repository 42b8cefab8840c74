package parser_test

import (
	"strings"
	"testing"

	"arithc/internal/ast"
	"arithc/internal/diag"
	"arithc/internal/lexer"
	"arithc/internal/parser"
	"arithc/internal/source"
	"arithc/internal/token"
)

func lex(t testing.TB, input string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.txt", []byte(input)))
	toks, err := lexer.Tokenize(file, lexer.Options{})
	if err != nil {
		t.Fatalf("tokenize %q: %v", input, err)
	}
	return toks
}

// parseString lexes and parses input, collecting diagnostics into a bag.
func parseString(t *testing.T, input string) (*ast.Builder, ast.NodeID, int, *diag.Bag, error) {
	t.Helper()
	toks := lex(t, input)
	b := ast.NewBuilder(0)
	bag := diag.NewBag(10)
	root, consumed, err := parser.ParseCount(toks, b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, root, consumed, bag, err
}

// sexpr renders the tree as (op left right) with bare integers at leaves.
func sexpr(b *ast.Builder, id ast.NodeID) string {
	n := b.Get(id)
	if n == nil {
		return "<nil>"
	}
	if n.Kind == ast.NodeLeaf {
		return n.Token.Text
	}
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(n.Op())
	sb.WriteString(" ")
	sb.WriteString(sexpr(b, n.Left))
	sb.WriteString(" ")
	sb.WriteString(sexpr(b, n.Right))
	sb.WriteString(")")
	return sb.String()
}
