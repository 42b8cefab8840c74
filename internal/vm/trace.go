package vm

import (
	"fmt"
	"io"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// TraceInstr traces execution of an instruction.
// Format: [step=N] ip<ip> <instr> | rax=.. rbx=.. rdx=.. depth=N
func (t *Tracer) TraceInstr(step, ip int, in Instr, regs *[numRegs]uint64, depth int) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[step=%d] ip%d %-36s | rax=%d rbx=%d rdx=%d depth=%d\n",
		step, ip, in.String(), regs[RAX], regs[RBX], regs[RDX], depth)
}

// TraceCall records a libc call and what it printed.
func (t *Tracer) TraceCall(sym, out string) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "    call %s -> %q\n", sym, out)
}
