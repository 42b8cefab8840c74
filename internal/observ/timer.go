// Package observ records phase durations for --timings.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one finished measurement.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects finished phases. Safe for use from the parallel build
// workers; a nil *Timer records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Track starts measuring name; calling the returned func records the phase.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	start := time.Now()
	return func(note string) {
		t.record(Phase{Name: name, Start: start, Dur: time.Since(start), Note: note})
	}
}

// Add records a phase measured elsewhere as if it just ended.
func (t *Timer) Add(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.record(Phase{Name: name, Start: time.Now().Add(-dur), Dur: dur, Note: note})
}

func (t *Timer) record(p Phase) {
	t.mu.Lock()
	t.phases = append(t.phases, p)
	t.mu.Unlock()
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists phases in the order they finished. Phases of a parallel build
// overlap, so TotalMS is wall-clock from the first start to the last end.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	first, last := t.phases[0].Start, t.phases[0].Start
	for i, p := range t.phases {
		first = minTime(first, p.Start)
		if end := p.Start.Add(p.Dur); end.After(last) {
			last = end
		}
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(last.Sub(first))
	return r
}

// Summary renders one line per phase name. Repeated names (one per file)
// are summed and shown with their count; a note survives only on a single
// measurement.
func (t *Timer) Summary() string {
	r := t.Report()
	type row struct {
		ms    float64
		count int
		note  string
	}
	var order []string
	rows := make(map[string]*row)
	for _, p := range r.Phases {
		rw, ok := rows[p.Name]
		if !ok {
			rw = &row{}
			rows[p.Name] = rw
			order = append(order, p.Name)
		}
		rw.ms += p.DurationMS
		rw.count++
		rw.note = p.Note
	}

	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, name := range order {
		rw := rows[name]
		label := name
		if rw.count > 1 {
			label = fmt.Sprintf("%s x%d", name, rw.count)
		}
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", label, rw.ms)
		if rw.count == 1 && rw.note != "" {
			sb.WriteString("  // " + rw.note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
