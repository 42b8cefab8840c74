// Package vm executes the assembly produced by the amd64 backend.
//
// Only the instruction subset the generator emits is understood. The stack
// holds 64-bit slots; %rsp tracks it as an address so that
// "movq %rsp,%rbp" and "popq %rbp" behave as on hardware.
package vm

import (
	"fmt"
	"io"
	"strings"
)

// Options configures VM execution.
type Options struct {
	Entry    string // defaults to the first .globl symbol
	MaxSteps int    // 0 means DefaultMaxSteps
	Trace    *Tracer
	Stdout   io.Writer // receives printf output in addition to Result.Output
}

const DefaultMaxSteps = 1 << 22

const (
	stackTop   uint64 = 0x7fff_0000
	returnAddr uint64 = 0xdead_beef // pushed before entry; retq to it halts
)

// Result is what the simulated process produced.
type Result struct {
	Output   string
	Printed  []int64 // one entry per printf call
	ExitCode int
	Steps    int
}

// VM is a direct interpreter of an assembled Program.
type VM struct {
	prog   *Program
	opts   Options
	regs   [numRegs]uint64
	stack  []uint64
	ip     int
	out    strings.Builder
	result Result
	halted bool
}

// New creates a VM for prog.
func New(prog *Program, opts Options) *VM {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &VM{prog: prog, opts: opts}
}

// RunText assembles text and runs it.
func RunText(text string, opts Options) (Result, error) {
	prog, err := Assemble(text)
	if err != nil {
		return Result{}, err
	}
	return New(prog, opts).Run()
}

// Run executes from the entry label until its retq.
func (vm *VM) Run() (Result, error) {
	entry := vm.opts.Entry
	if entry == "" && len(vm.prog.Globl) > 0 {
		entry = vm.prog.Globl[0]
	}
	start, ok := vm.prog.Labels[entry]
	if !ok {
		return Result{}, &VMError{Code: PanicNoEntry, Message: fmt.Sprintf("entry label %q not found", entry)}
	}
	vm.ip = start
	vm.regs[RSP] = stackTop
	vm.push(returnAddr)

	for !vm.halted {
		if vm.ip < 0 || vm.ip >= len(vm.prog.Instrs) {
			return vm.result, &VMError{Code: PanicUnimplemented, Message: fmt.Sprintf("fell off the program at ip %d", vm.ip)}
		}
		if vm.result.Steps >= vm.opts.MaxSteps {
			return vm.result, &VMError{Code: PanicStepLimit, Message: fmt.Sprintf("exceeded %d steps", vm.opts.MaxSteps)}
		}
		in := vm.prog.Instrs[vm.ip]
		vm.opts.Trace.TraceInstr(vm.result.Steps, vm.ip, in, &vm.regs, len(vm.stack))
		vm.result.Steps++
		vm.ip++
		if err := vm.exec(in); err != nil {
			if ve, ok := err.(*VMError); ok && ve.Line == 0 {
				ve.Line = in.Line
			}
			return vm.result, err
		}
	}
	vm.result.Output = vm.out.String()
	vm.result.ExitCode = int(int32(uint32(vm.regs[RAX]))) //nolint:gosec // exit status is the low 32 bits
	return vm.result, nil
}

func (vm *VM) push(v uint64) {
	vm.stack = append(vm.stack, v)
	vm.regs[RSP] -= 8
}

func (vm *VM) pop() (uint64, error) {
	if len(vm.stack) == 0 {
		return 0, &VMError{Code: PanicStackUnderflow, Message: "pop from empty stack"}
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	vm.regs[RSP] += 8
	return v, nil
}

func badOperand(in Instr) error {
	return &VMError{Code: PanicBadOperand, Message: "bad operands for " + in.String()}
}

// value reads an immediate, register or symbol address.
func (vm *VM) value(op Operand) (uint64, error) {
	switch op.Kind {
	case OpImm:
		return op.Imm, nil
	case OpReg:
		return vm.regs[op.Reg], nil
	case OpAddr:
		addr, ok := vm.prog.Data[op.Sym]
		if !ok {
			return 0, &VMError{Code: PanicUnknownSymbol, Message: "undefined symbol " + op.Sym}
		}
		return addr, nil
	default:
		return 0, &VMError{Code: PanicBadOperand, Message: "operand " + op.String() + " has no value"}
	}
}

func (vm *VM) exec(in Instr) error {
	args := in.Args
	switch in.Mnemonic {
	case "pushq":
		if len(args) != 1 {
			return badOperand(in)
		}
		v, err := vm.value(args[0])
		if err != nil {
			return err
		}
		vm.push(v)
	case "popq":
		if len(args) != 1 || args[0].Kind != OpReg {
			return badOperand(in)
		}
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.regs[args[0].Reg] = v
	case "movq", "movabsq", "leaq", "movl":
		if len(args) != 2 || args[1].Kind != OpReg {
			return badOperand(in)
		}
		v, err := vm.value(args[0])
		if err != nil {
			return err
		}
		if in.Mnemonic == "movl" {
			v = uint64(uint32(v)) //nolint:gosec // 32-bit writes zero-extend
		}
		vm.regs[args[1].Reg] = v
	case "addq", "subq":
		if len(args) != 2 || args[1].Kind != OpReg {
			return badOperand(in)
		}
		src, err := vm.value(args[0])
		if err != nil {
			return err
		}
		if in.Mnemonic == "addq" {
			vm.regs[args[1].Reg] += src
		} else {
			vm.regs[args[1].Reg] -= src
		}
	case "mulq":
		if len(args) != 1 {
			return badOperand(in)
		}
		src, err := vm.value(args[0])
		if err != nil {
			return err
		}
		hi, lo := mul64(vm.regs[RAX], src)
		vm.regs[RAX], vm.regs[RDX] = lo, hi
	case "divq":
		if len(args) != 1 {
			return badOperand(in)
		}
		src, err := vm.value(args[0])
		if err != nil {
			return err
		}
		q, r, err := div128(vm.regs[RDX], vm.regs[RAX], src)
		if err != nil {
			return err
		}
		vm.regs[RAX], vm.regs[RDX] = q, r
	case "callq", "call":
		if len(args) != 1 || args[0].Kind != OpSym {
			return badOperand(in)
		}
		return vm.call(args[0].Sym)
	case "retq", "ret":
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		if addr != returnAddr {
			return &VMError{Code: PanicUnimplemented, Message: fmt.Sprintf("return to unknown address %#x", addr)}
		}
		vm.halted = true
	default:
		return &VMError{Code: PanicUnimplemented, Message: "unsupported instruction " + in.Mnemonic}
	}
	return nil
}
