package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("lex")
	done("3 tokens")
	tm.Add("parse", 2*time.Millisecond, "")

	s := tm.Summary()
	for _, want := range []string{"timings:", "lex", "// 3 tokens", "parse", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[1].DurationMS != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.TotalMS < 2 {
		t.Errorf("total %v shorter than longest phase", r.TotalMS)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			tm.Track("file")("")
		})
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 16 {
		t.Fatalf("phases = %d", n)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	tm.Add("y", time.Second, "")
}

func TestSummaryGroupsRepeatedPhases(t *testing.T) {
	tm := NewTimer()
	tm.Add("lex", time.Millisecond, "a.txt")
	tm.Add("lex", time.Millisecond, "b.txt")
	tm.Add("parse", time.Millisecond, "only")

	s := tm.Summary()
	if !strings.Contains(s, "lex x2") || strings.Contains(s, "a.txt") {
		t.Errorf("lex not grouped:\n%s", s)
	}
	if !strings.Contains(s, "// only") {
		t.Errorf("single phase lost its note:\n%s", s)
	}
}
