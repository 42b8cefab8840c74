package vm

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// OperandKind classifies one instruction operand.
type OperandKind uint8

const (
	// OpImm is an immediate such as $123.
	OpImm OperandKind = iota + 1
	// OpReg is a register such as %rax.
	OpReg
	// OpAddr is a RIP-relative symbol: literal(%rip) or literal@GOTPCREL(%rip).
	OpAddr
	// OpSym is a call target.
	OpSym
)

type Operand struct {
	Kind OperandKind
	Imm  uint64
	Reg  Reg
	Sym  string
}

func (o Operand) String() string {
	switch o.Kind {
	case OpImm:
		return "$" + strconv.FormatUint(o.Imm, 10)
	case OpReg:
		return "%" + o.Reg.String()
	case OpAddr:
		return o.Sym + "(%rip)"
	default:
		return o.Sym
	}
}

// Instr is one decoded instruction; Line is 1-based in the source text.
type Instr struct {
	Mnemonic string
	Args     []Operand
	Line     int
}

func (in Instr) String() string {
	if len(in.Args) == 0 {
		return in.Mnemonic
	}
	parts := make([]string, len(in.Args))
	for i, a := range in.Args {
		parts[i] = a.String()
	}
	return in.Mnemonic + " " + strings.Join(parts, ",")
}

// Program is an assembled listing: code, label addresses, string data.
type Program struct {
	Instrs []Instr
	Labels map[string]int    // code labels -> instruction index
	Data   map[string]uint64 // data labels -> address
	Mem    map[uint64]string // address -> .asciz contents
	Globl  []string
}

const dataBase uint64 = 0x1000

// AsmError reports a line the assembler cannot decode.
type AsmError struct {
	Line int
	Text string
	Msg  string
}

func (e *AsmError) Error() string {
	return fmt.Sprintf("asm line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Assemble decodes the AT&T subset produced by the code generator.
// A label followed by .asciz becomes data; any other label marks code.
func Assemble(text string) (*Program, error) {
	p := &Program{
		Labels: make(map[string]int),
		Data:   make(map[string]uint64),
		Mem:    make(map[uint64]string),
	}
	pending := ""
	flushLabel := func() {
		if pending != "" {
			p.Labels[pending] = len(p.Instrs)
			pending = ""
		}
	}
	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, ok := strings.CutSuffix(line, ":"); ok {
			flushLabel()
			pending = name
			continue
		}
		if strings.HasPrefix(line, ".") {
			directive, rest, _ := strings.Cut(line, " ")
			switch directive {
			case ".globl":
				p.Globl = append(p.Globl, strings.TrimSpace(rest))
			case ".asciz":
				if pending == "" {
					return nil, &AsmError{Line: lineNo, Text: line, Msg: ".asciz without label"}
				}
				s, err := strconv.Unquote(strings.TrimSpace(rest))
				if err != nil {
					return nil, &AsmError{Line: lineNo, Text: line, Msg: "bad string literal"}
				}
				slot, err := safecast.Conv[uint64](len(p.Data))
				if err != nil {
					return nil, &AsmError{Line: lineNo, Text: line, Msg: err.Error()}
				}
				addr := dataBase + slot*0x100
				p.Data[pending] = addr
				p.Mem[addr] = s
				pending = ""
			case ".text", ".section", ".data":
			default:
				return nil, &AsmError{Line: lineNo, Text: line, Msg: "unsupported directive"}
			}
			continue
		}
		flushLabel()
		in, err := decodeInstr(line, lineNo)
		if err != nil {
			return nil, err
		}
		p.Instrs = append(p.Instrs, in)
	}
	flushLabel()
	return p, nil
}

func decodeInstr(line string, lineNo int) (Instr, error) {
	mnemonic, rest, _ := strings.Cut(line, " ")
	in := Instr{Mnemonic: mnemonic, Line: lineNo}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return in, nil
	}
	for _, field := range splitOperands(rest) {
		op, err := decodeOperand(strings.TrimSpace(field), mnemonic)
		if err != nil {
			return Instr{}, &AsmError{Line: lineNo, Text: line, Msg: err.Error()}
		}
		in.Args = append(in.Args, op)
	}
	return in, nil
}

// splitOperands splits on commas outside parentheses.
func splitOperands(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func decodeOperand(s, mnemonic string) (Operand, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		v, err := parseImm(s[1:])
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OpImm, Imm: v}, nil
	case strings.HasPrefix(s, "%"):
		r, ok := ParseReg(s[1:])
		if !ok {
			return Operand{}, fmt.Errorf("unknown register %s", s)
		}
		return Operand{Kind: OpReg, Reg: r}, nil
	case strings.HasSuffix(s, "(%rip)"):
		sym := strings.TrimSuffix(s, "(%rip)")
		sym = strings.TrimSuffix(sym, "@GOTPCREL")
		return Operand{Kind: OpAddr, Sym: sym}, nil
	case strings.HasPrefix(mnemonic, "call"):
		return Operand{Kind: OpSym, Sym: strings.TrimSuffix(s, "@PLT")}, nil
	default:
		return Operand{}, fmt.Errorf("unsupported operand %s", s)
	}
}

// parseImm accepts unsigned and negative decimal immediates.
func parseImm(s string) (uint64, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad immediate %s: %w", s, err)
		}
		return uint64(v), nil //nolint:gosec // sign extension
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad immediate %s: %w", s, err)
	}
	return v, nil
}
