package parser_test

import (
	"strings"
	"testing"

	"arithc/internal/ast"
	"arithc/internal/parser"
)

func BenchmarkParse(b *testing.B) {
	src := strings.Repeat("(12+34)*56%7-", 200) + "1"
	toks := lex(b, src)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := parser.Parse(toks, ast.NewBuilder(uint(len(toks))), parser.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
