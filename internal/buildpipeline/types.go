package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageCache is the artefact cache lookup.
	StageCache Stage = "cache"
	// StageLex is the lexing stage.
	StageLex Stage = "lex"
	// StageParse is the parsing stage.
	StageParse Stage = "parse"
	// StageCodegen is the assembly generation stage.
	StageCodegen Stage = "codegen"
	// StageWrite writes the .s artefact.
	StageWrite Stage = "write"
	// StageLink is the link stage.
	StageLink Stage = "link"
)

// Stages lists every stage in pipeline order.
func Stages() []Stage {
	return []Stage{StageCache, StageLex, StageParse, StageCodegen, StageWrite, StageLink}
}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
// Build calls OnEvent from its compile workers concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds per-stage durations summed over files. The zero value is
// ready to use. Not safe for concurrent use.
type Timings struct {
	dur  [stageCount]time.Duration
	seen uint8 // бит на стадию
}

const stageCount = 6

func stageIndex(stage Stage) (int, bool) {
	for i, s := range Stages() {
		if s == stage {
			return i, true
		}
	}
	return 0, false
}

// Set overwrites the duration of stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if i, ok := stageIndex(stage); ok && t != nil {
		t.dur[i] = dur
		t.seen |= 1 << i
	}
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if i, ok := stageIndex(stage); ok && t != nil {
		t.dur[i] += dur
		t.seen |= 1 << i
	}
}

// Has reports whether stage ran at all.
func (t Timings) Has(stage Stage) bool {
	i, ok := stageIndex(stage)
	return ok && t.seen&(1<<i) != 0
}

func (t Timings) Duration(stage Stage) time.Duration {
	if i, ok := stageIndex(stage); ok {
		return t.dur[i]
	}
	return 0
}

func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.Duration(stage)
	}
	return total
}
