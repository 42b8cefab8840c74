package vm

// Reg names one of the general purpose registers the generator touches.
type Reg uint8

const (
	RAX Reg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	numRegs
)

var regNames = [numRegs]string{"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp"}

func (r Reg) String() string {
	if r < numRegs {
		return regNames[r]
	}
	return "r?"
}

// ParseReg accepts 64-bit names and their 32-bit e-prefixed aliases.
func ParseReg(name string) (Reg, bool) {
	for i, n := range regNames {
		if n == name || "e"+n[1:] == name {
			return Reg(i), true
		}
	}
	return 0, false
}
