package vm

import (
	"fmt"
	"io"
	"math/bits"
	"strings"
)

func mul64(a, b uint64) (hi, lo uint64) {
	return bits.Mul64(a, b)
}

// div128 divides rdx:rax by d the way divq does, trapping instead of
// raising #DE.
func div128(hi, lo, d uint64) (q, r uint64, err error) {
	if d == 0 {
		return 0, 0, &VMError{Code: PanicDivideByZero, Message: "integer divide by zero"}
	}
	if hi >= d {
		return 0, 0, &VMError{Code: PanicDivideByZero, Message: "quotient overflow"}
	}
	q, r = bits.Div64(hi, lo, d)
	return q, r, nil
}

// call implements the libc entry points the generated code uses.
func (vm *VM) call(sym string) error {
	switch strings.TrimPrefix(sym, "_") {
	case "printf":
		format, ok := vm.prog.Mem[vm.regs[RDI]]
		if !ok {
			return &VMError{Code: PanicUnknownSymbol, Message: fmt.Sprintf("printf format at %#x is not a string", vm.regs[RDI])}
		}
		v := int64(vm.regs[RSI]) //nolint:gosec // %lld reads the register as signed
		out, err := formatLLD(format, v)
		if err != nil {
			return &VMError{Code: PanicBadOperand, Message: err.Error()}
		}
		vm.out.WriteString(out)
		if vm.opts.Stdout != nil {
			_, _ = io.WriteString(vm.opts.Stdout, out)
		}
		vm.result.Printed = append(vm.result.Printed, v)
		vm.regs[RAX] = uint64(len(out))
		vm.opts.Trace.TraceCall(sym, out)
		return nil
	default:
		return &VMError{Code: PanicUnknownSymbol, Message: "call to unknown function " + sym}
	}
}

// formatLLD supports formats with exactly one %lld conversion.
func formatLLD(format string, v int64) (string, error) {
	if strings.Count(format, "%lld") != 1 || strings.Count(format, "%") != 1 {
		return "", fmt.Errorf("unsupported printf format %q", format)
	}
	return strings.Replace(format, "%lld", fmt.Sprint(v), 1), nil
}
