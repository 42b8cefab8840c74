package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	PhaseFailed
)

// Phase names reported by Compile.
const (
	PhaseLex     = "lex"
	PhaseParse   = "parse"
	PhaseCodegen = "codegen"
	PhaseCache   = "cache"
)

// PhaseEvent describes a timing phase boundary of one file.
type PhaseEvent struct {
	Path    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Compile.
// CompileFiles calls it from several goroutines.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(path, name string, status PhaseStatus, elapsed time.Duration) {
	if o == nil {
		return
	}
	o(PhaseEvent{Path: path, Name: name, Status: status, Elapsed: elapsed})
}
