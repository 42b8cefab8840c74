package amd64

import (
	"math"
	"strconv"
	"strings"

	"arithc/internal/ast"
)

type Options struct {
	Target Target
}

// FormatLiteral is the printf format the emitted program prints with.
const FormatLiteral = `"%lld\n"`

// Emitter renders one expression tree as an AT&T-syntax stack machine.
type Emitter struct {
	builder *ast.Builder
	target  targetInfo
	buf     strings.Builder
}

// Emit generates the whole program for root: entry label, prologue,
// expression body, printf of the popped result, epilogue and the format
// literal. Nothing is returned unless the whole tree was emitted.
func Emit(builder *ast.Builder, root ast.NodeID, opts Options) (string, error) {
	e := &Emitter{builder: builder, target: opts.Target.info()}
	e.emitPrologue()
	if err := e.emitExpr(root); err != nil {
		return "", err
	}
	e.emitEpilogue()
	return e.buf.String(), nil
}

func (e *Emitter) line(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

func (e *Emitter) instr(s string) {
	e.buf.WriteByte('\t')
	e.line(s)
}

func (e *Emitter) emitPrologue() {
	for _, l := range e.target.header {
		e.line(l)
	}
	e.line(e.target.entry + ":")
	e.instr("pushq %rbp")
	e.instr("movq %rsp,%rbp")
}

func (e *Emitter) emitEpilogue() {
	e.instr("popq %rsi")
	for _, l := range e.target.loadFmt {
		e.instr(l)
	}
	e.instr(e.target.call)
	for _, l := range e.target.afterRet {
		e.instr(l)
	}
	e.instr("popq %rbp")
	e.instr("retq")
	for _, l := range e.target.data {
		e.line(l)
	}
	e.line("literal:")
	e.instr(".asciz " + FormatLiteral)
	for _, l := range e.target.trailer {
		e.line(l)
	}
}

// emitExpr walks post-order so every node finds its operands on the stack.
func (e *Emitter) emitExpr(id ast.NodeID) error {
	n := e.builder.Get(id)
	if n == nil {
		return &InternalError{Node: id, Msg: "missing node"}
	}
	switch n.Kind {
	case ast.NodeLeaf:
		if !n.Token.IsInteger() {
			return &InternalError{Node: id, Msg: "leaf holds non-integer token " + strconv.Quote(n.Token.Text)}
		}
		if n.Left.IsValid() || n.Right.IsValid() {
			return &InternalError{Node: id, Msg: "leaf with children"}
		}
		e.emitPush(n.Value, n.Token.Text)
		return nil
	case ast.NodeBinary:
		if !n.Left.IsValid() || !n.Right.IsValid() {
			return &InternalError{Node: id, Msg: "binary node with a single child"}
		}
		if err := e.emitExpr(n.Left); err != nil {
			return err
		}
		if err := e.emitExpr(n.Right); err != nil {
			return err
		}
		return e.emitOp(id, n.Op())
	default:
		return &InternalError{Node: id, Msg: "unknown node kind " + n.Kind.String()}
	}
}

// emitPush pushes a literal. pushq only takes a sign-extended 32-bit
// immediate; larger values go through %rax.
func (e *Emitter) emitPush(v uint64, text string) {
	if v <= math.MaxInt32 {
		e.instr("pushq $" + text)
		return
	}
	e.instr("movabsq $" + strconv.FormatUint(v, 10) + ",%rax")
	e.instr("pushq %rax")
}

func (e *Emitter) emitOp(id ast.NodeID, op string) error {
	var body []string
	switch op {
	case "+":
		body = []string{"addq %rbx,%rax", "pushq %rax"}
	case "-":
		body = []string{"subq %rbx,%rax", "pushq %rax"}
	case "*":
		body = []string{"mulq %rbx", "pushq %rax"}
	case "/":
		body = []string{"movq $0,%rdx", "divq %rbx", "pushq %rax"}
	case "%":
		body = []string{"movq $0,%rdx", "divq %rbx", "pushq %rdx"}
	default:
		return &InternalError{Node: id, Msg: "invalid operator " + strconv.Quote(op)}
	}
	e.instr("popq %rbx")
	e.instr("popq %rax")
	for _, s := range body {
		e.instr(s)
	}
	return nil
}
