package amd64_test

import (
	"errors"
	"strings"
	"testing"

	"arithc/internal/ast"
	"arithc/internal/backend/amd64"
	"arithc/internal/lexer"
	"arithc/internal/parser"
	"arithc/internal/source"
	"arithc/internal/token"
)

func compile(t *testing.T, input string, target amd64.Target) string {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.txt", []byte(input)))
	toks, err := lexer.Tokenize(file, lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	b := ast.NewBuilder(0)
	root, err := parser.Parse(toks, b, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	asm, err := amd64.Emit(b, root, amd64.Options{Target: target})
	if err != nil {
		t.Fatal(err)
	}
	return asm
}

func TestEmitDarwinGolden(t *testing.T) {
	want := `.globl _main
_main:
	pushq %rbp
	movq %rsp,%rbp
	pushq $7
	pushq $2
	popq %rbx
	popq %rax
	movq $0,%rdx
	divq %rbx
	pushq %rdx
	popq %rsi
	movq literal@GOTPCREL(%rip),%rdi
	callq _printf
	popq %rbp
	retq
literal:
	.asciz "%lld\n"
`
	if got := compile(t, "7%2", amd64.TargetDarwin); got != want {
		t.Fatalf("darwin output mismatch:\n--- got\n%s--- want\n%s", got, want)
	}
}

func TestEmitLinuxGolden(t *testing.T) {
	want := `	.text
	.globl main
main:
	pushq %rbp
	movq %rsp,%rbp
	pushq $1
	pushq $2
	popq %rbx
	popq %rax
	addq %rbx,%rax
	pushq %rax
	popq %rsi
	leaq literal(%rip),%rdi
	movl $0,%eax
	callq printf@PLT
	movl $0,%eax
	popq %rbp
	retq
	.section .rodata
literal:
	.asciz "%lld\n"
	.section .note.GNU-stack,"",@progbits
`
	if got := compile(t, "1+2", amd64.TargetLinux); got != want {
		t.Fatalf("linux output mismatch:\n--- got\n%s--- want\n%s", got, want)
	}
}

func TestEmitOperators(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"1-2", []string{"subq %rbx,%rax", "pushq %rax"}},
		{"3*4", []string{"mulq %rbx", "pushq %rax"}},
		{"8/2", []string{"movq $0,%rdx", "divq %rbx", "pushq %rax"}},
	}
	for _, tt := range tests {
		asm := compile(t, tt.input, amd64.TargetDarwin)
		if !strings.Contains(asm, "\t"+strings.Join(tt.want, "\n\t")+"\n") {
			t.Errorf("%q: missing %v in\n%s", tt.input, tt.want, asm)
		}
	}
}

func TestEmitPostOrder(t *testing.T) {
	asm := compile(t, "8-3-2", amd64.TargetDarwin)
	i8 := strings.Index(asm, "pushq $8")
	i3 := strings.Index(asm, "pushq $3")
	sub := strings.Index(asm, "subq")
	i2 := strings.Index(asm, "pushq $2")
	if !(i8 < i3 && i3 < sub && sub < i2) {
		t.Fatalf("unexpected order:\n%s", asm)
	}
	if strings.Count(asm, "subq") != 2 {
		t.Fatal("want two subtractions")
	}
}

func TestEmitWideLiteral(t *testing.T) {
	asm := compile(t, "2147483647+2147483648", amd64.TargetDarwin)
	if !strings.Contains(asm, "\tpushq $2147483647\n") {
		t.Error("int32 max must use pushq immediate")
	}
	if !strings.Contains(asm, "\tmovabsq $2147483648,%rax\n\tpushq %rax\n") {
		t.Errorf("wide literal must go through movabsq:\n%s", asm)
	}
}

func TestEmitLabels(t *testing.T) {
	asm := compile(t, "(1+2)*(3+4)", amd64.TargetDarwin)
	labels := 0
	for _, l := range strings.Split(asm, "\n") {
		if strings.HasSuffix(l, ":") {
			labels++
		}
	}
	if labels != 2 {
		t.Fatalf("want only entry and literal labels, got %d", labels)
	}
}

func TestEmitInternalErrors(t *testing.T) {
	intTok := func(s string) token.Token { return token.Token{Kind: token.Integer, Text: s} }
	opTok := func(s string) token.Token { return token.Token{Kind: token.Punctuator, Text: s} }

	tests := []struct {
		name  string
		build func(b *ast.Builder) ast.NodeID
	}{
		{"missing root", func(*ast.Builder) ast.NodeID { return ast.NoNodeID }},
		{"single child", func(b *ast.Builder) ast.NodeID {
			return b.NewBinary(opTok("+"), b.NewLeaf(intTok("1"), 1), ast.NoNodeID)
		}},
		{"unknown operator", func(b *ast.Builder) ast.NodeID {
			return b.NewBinary(opTok("^"), b.NewLeaf(intTok("1"), 1), b.NewLeaf(intTok("2"), 2))
		}},
		{"non-integer leaf", func(b *ast.Builder) ast.NodeID { return b.NewLeaf(opTok("("), 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ast.NewBuilder(0)
			asm, err := amd64.Emit(b, tt.build(b), amd64.Options{})
			var ie *amd64.InternalError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want *InternalError", err)
			}
			if asm != "" {
				t.Error("no partial output on error")
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]amd64.Target{"darwin": amd64.TargetDarwin, "MacOS": amd64.TargetDarwin, "linux": amd64.TargetLinux, "": amd64.TargetDarwin} {
		got, err := amd64.ParseTarget(in)
		if err != nil || got != want {
			t.Errorf("ParseTarget(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := amd64.ParseTarget("wasm"); err == nil {
		t.Error("expected error for unknown target")
	}
}
