package amd64

import (
	"fmt"
	"runtime"
	"strings"
)

// Target selects the object-file dialect of the emitted program.
type Target uint8

const (
	// TargetDarwin is the zero value: Mach-O symbol naming, printf via GOT.
	TargetDarwin Target = iota
	// TargetLinux is ELF with a PIC printf call through the PLT.
	TargetLinux
)

func (t Target) String() string {
	switch t {
	case TargetDarwin:
		return "darwin"
	case TargetLinux:
		return "linux"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// ParseTarget accepts "darwin", "macos", "linux" and "host".
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "darwin", "macos":
		return TargetDarwin, nil
	case "linux":
		return TargetLinux, nil
	case "host":
		if runtime.GOOS == "linux" {
			return TargetLinux, nil
		}
		return TargetDarwin, nil
	default:
		return TargetDarwin, fmt.Errorf("unknown target %q (want darwin or linux)", s)
	}
}

// Targets lists the supported target names for flag help.
func Targets() []string { return []string{"darwin", "linux"} }

type targetInfo struct {
	entry    string
	header   []string
	loadFmt  []string
	call     string
	afterRet []string
	data     []string
	trailer  []string
}

func (t Target) info() targetInfo {
	if t == TargetLinux {
		// main returns 0 instead of printf's byte count.
		return targetInfo{
			entry:    "main",
			header:   []string{"\t.text", "\t.globl main"},
			loadFmt:  []string{"leaq literal(%rip),%rdi", "movl $0,%eax"},
			call:     "callq printf@PLT",
			afterRet: []string{"movl $0,%eax"},
			data:     []string{"\t.section .rodata"},
			trailer:  []string{"\t.section .note.GNU-stack,\"\",@progbits"},
		}
	}
	return targetInfo{
		entry:   "_main",
		header:  []string{".globl _main"},
		loadFmt: []string{"movq literal@GOTPCREL(%rip),%rdi"},
		call:    "callq _printf",
	}
}
