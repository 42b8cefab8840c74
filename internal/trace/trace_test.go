package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevelAndMode(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted garbage")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(both) = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Error("ParseMode accepted garbage")
	}
	if ModeRing.String() != "ring" || StorageMode(9).String() != "unknown" {
		t.Error("StorageMode names wrong")
	}
}

func TestResolveFormat(t *testing.T) {
	cases := []struct {
		format Format
		path   string
		want   Format
	}{
		{FormatAuto, "run.ndjson", FormatNDJSON},
		{FormatAuto, "run.jsonl", FormatNDJSON},
		{FormatAuto, "-", FormatText},
		{FormatText, "run.ndjson", FormatText},
	}
	for _, c := range cases {
		if got := resolveFormat(c.format, c.path); got != c.want {
			t.Errorf("resolveFormat(%v, %q) = %v, want %v", c.format, c.path, got, c.want)
		}
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Error("phase must not emit file scope")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Error("detail scope boundaries wrong")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Error("off emits")
	}
}

func TestStartNestsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := Start(ctx, ScopeDriver, "build")
	inner, span := Start(ctx, ScopePass, "lex")
	Point(inner, ScopeFile, "cache", "miss")
	span.WithExtra("tokens", "3").End("")
	outer.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	checks := []string{"→ build", "  → lex", "    • cache (miss)", "  ← lex {tokens=3}", "← build (ok)"}
	for i, want := range checks {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	_, s := Start(ctx, ScopeFile, "write")
	s.End("")
	if buf.Len() != 0 {
		t.Fatalf("file scope leaked at phase level: %s", buf.String())
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatNDJSON))
	_, s := Start(ctx, ScopePass, "parse")
	s.End("")
	dec := json.NewDecoder(&buf)
	var kinds []string
	for dec.More() {
		var ev map[string]any
		if err := dec.Decode(&ev); err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, ev["kind"].(string))
	}
	if strings.Join(kinds, ",") != "begin,end" {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestRingWrapsAndDumps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: name})
	}
	snap := ring.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	multi := NewMultiTracer(LevelDebug, Nop, ring)
	found, err := DumpRing(multi, &buf, FormatText)
	if !found || err != nil || strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("DumpRing found=%v err=%v out=%q", found, err, buf.String())
	}
}

func TestNopAndNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	if FromContext(nil).Enabled() {
		t.Fatal("nil context must yield Nop")
	}
	ctx, s := Start(context.Background(), ScopePass, "x")
	if s.End("") != 0 || ctx != context.Background() {
		t.Fatal("span without tracer must be inert")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	if len(ring.Snapshot()) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on Nop must be nil")
	}
}
