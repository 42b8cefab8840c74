package vm_test

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"arithc/internal/ast"
	"arithc/internal/backend/amd64"
	"arithc/internal/eval"
	"arithc/internal/lexer"
	"arithc/internal/parser"
	"arithc/internal/source"
	"arithc/internal/vm"
)

func build(t *testing.T, input string, target amd64.Target) (string, *ast.Builder, ast.NodeID) {
	t.Helper()
	fs := source.NewFileSet()
	toks, err := lexer.Tokenize(fs.Get(fs.AddVirtual("v.txt", []byte(input))), lexer.Options{})
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
	return asm, b, root
}

func TestRunMatchesInterpreter(t *testing.T) {
	inputs := []string{
		"8-3-2", "2+3*4", "(2+3)*4", "((1))", "7/2", "7%2", "1+", "1 2",
		"1-2", "(1-7)/2", "4294967296*4294967296", "18446744073709551615",
		"9223372036854775807+1", "2147483648*3-1", "100%7*(3+4)/2",
	}
	for _, target := range []amd64.Target{amd64.TargetDarwin, amd64.TargetLinux} {
		for _, input := range inputs {
			asm, b, root := build(t, input, target)
			want, err := eval.Eval(b, root)
			if err != nil {
				t.Fatalf("%q: eval: %v", input, err)
			}
			res, err := vm.RunText(asm, vm.Options{})
			if err != nil {
				t.Fatalf("%s %q: run: %v\n%s", target, input, err, asm)
			}
			wantOut := strconv.FormatInt(eval.Signed(want), 10) + "\n"
			if res.Output != wantOut {
				t.Errorf("%s %q: printed %q, want %q", target, input, res.Output, wantOut)
			}
			if len(res.Printed) != 1 || res.Printed[0] != eval.Signed(want) {
				t.Errorf("%s %q: Printed = %v", target, input, res.Printed)
			}
		}
	}
}

func TestExitCode(t *testing.T) {
	asm, _, _ := build(t, "12345", amd64.TargetDarwin)
	res, err := vm.RunText(asm, vm.Options{})
	if err != nil {
		t.Fatal(err)
	}
	// printf's return value: "12345\n"
	if res.ExitCode != 6 {
		t.Errorf("darwin exit = %d, want 6", res.ExitCode)
	}

	asm, _, _ = build(t, "12345", amd64.TargetLinux)
	res, err = vm.RunText(asm, vm.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 0 {
		t.Errorf("linux exit = %d, want 0", res.ExitCode)
	}
}

func TestDivideByZeroTraps(t *testing.T) {
	for _, input := range []string{"1/(2-2)", "1%(3-3)"} {
		asm, _, _ := build(t, input, amd64.TargetDarwin)
		_, err := vm.RunText(asm, vm.Options{})
		var ve *vm.VMError
		if !errors.As(err, &ve) || ve.Code != vm.PanicDivideByZero {
			t.Fatalf("%q: err = %v", input, err)
		}
		if ve.Line == 0 {
			t.Errorf("%q: trap must carry the line", input)
		}
	}
}

func TestTraceAndStdout(t *testing.T) {
	asm, _, _ := build(t, "1+2", amd64.TargetLinux)
	var trace, stdout bytes.Buffer
	res, err := vm.RunText(asm, vm.Options{Trace: vm.NewTracer(&trace), Stdout: &stdout})
	if err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "3\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !bytes.Contains(trace.Bytes(), []byte("addq %rbx,%rax")) {
		t.Errorf("trace missing addq:\n%s", trace.String())
	}
	if res.Steps == 0 {
		t.Error("steps not counted")
	}
}

func TestTraps(t *testing.T) {
	tests := []struct {
		name string
		asm  string
		code vm.PanicCode
	}{
		{"no entry", ".globl _main\nfoo:\n\tretq\n", vm.PanicNoEntry},
		{"underflow", ".globl _main\n_main:\n\tpopq %rax\n\tpopq %rax\n", vm.PanicStackUnderflow},
		{"unknown call", ".globl _main\n_main:\n\tcallq _puts\n", vm.PanicUnknownSymbol},
		{"unsupported", ".globl _main\n_main:\n\txorq %rax,%rax\n", vm.PanicUnimplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vm.RunText(tt.asm, vm.Options{})
			var ve *vm.VMError
			if !errors.As(err, &ve) || ve.Code != tt.code {
				t.Fatalf("err = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestStepLimit(t *testing.T) {
	asm, _, _ := build(t, "1+2+3+4", amd64.TargetDarwin)
	_, err := vm.RunText(asm, vm.Options{MaxSteps: 5})
	var ve *vm.VMError
	if !errors.As(err, &ve) || ve.Code != vm.PanicStepLimit {
		t.Fatalf("err = %v", err)
	}
}

func TestAssembleErrors(t *testing.T) {
	for _, src := range []string{
		"\t.asciz \"x\"\n",
		"literal:\n\t.asciz notquoted\n",
		"\t.weird\n",
		"\tpushq $abc\n",
		"\tpopq %r99\n",
	} {
		if _, err := vm.Assemble(src); err == nil {
			t.Errorf("Assemble(%q) succeeded", src)
		} else {
			var ae *vm.AsmError
			if !errors.As(err, &ae) {
				t.Errorf("Assemble(%q): %T", src, err)
			}
		}
	}
}
