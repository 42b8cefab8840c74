package buildpipeline

import (
	"sync"
	"time"

	"arithc/internal/driver"
)

// phaseObserver turns driver phase events into progress events and
// accumulates per-stage timings. The driver calls it from several workers.
type phaseObserver struct {
	sink  ProgressSink
	names map[string]string // source key -> progress name

	mu      sync.Mutex
	timings Timings
	started map[Stage]bool
}

func newPhaseObserver(sink ProgressSink, files, names []string) *phaseObserver {
	p := &phaseObserver{
		sink:    sink,
		names:   make(map[string]string, len(files)),
		started: make(map[Stage]bool),
	}
	for i, file := range files {
		p.names[sourceKey(file)] = names[i]
	}
	return p
}

func (p *phaseObserver) name(path string) string {
	if name, ok := p.names[sourceKey(path)]; ok {
		return name
	}
	return path
}

// OnPhase updates the progress UI based on compiler phase events.
func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage, ok := stageForPhase(ev.Name)
	if !ok {
		return
	}
	file := p.name(ev.Path)

	p.mu.Lock()
	firstStart := false
	switch ev.Status {
	case driver.PhaseStart:
		firstStart = !p.started[stage]
		p.started[stage] = true
	default:
		p.timings.Add(stage, ev.Elapsed)
	}
	p.mu.Unlock()

	if p.sink == nil {
		return
	}
	switch ev.Status {
	case driver.PhaseStart:
		// заголовок UI показывает первую стадию, в которую вошёл хоть один файл
		if firstStart {
			p.sink.OnEvent(Event{Stage: stage, Status: StatusWorking})
		}
		p.sink.OnEvent(Event{File: file, Stage: stage, Status: StatusWorking})
	case driver.PhaseFailed:
		p.sink.OnEvent(Event{File: file, Stage: stage, Status: StatusError, Elapsed: ev.Elapsed})
	}
}

func (p *phaseObserver) snapshot() Timings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timings
}

func stageForPhase(name string) (Stage, bool) {
	switch name {
	case driver.PhaseCache:
		return StageCache, true
	case driver.PhaseLex:
		return StageLex, true
	case driver.PhaseParse:
		return StageParse, true
	case driver.PhaseCodegen:
		return StageCodegen, true
	}
	return "", false
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageCache, Status: StatusQueued})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitStage(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
