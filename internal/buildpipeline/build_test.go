package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"arithc/internal/backend/amd64"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) forFile(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.File == name {
			out = append(out, ev)
		}
	}
	return out
}

func writeSources(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestBuildWritesOnlySuccessfulFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	paths := writeSources(t, dir, map[string]string{
		"a.txt": "2+3*4",
		"b.txt": "1 @",
		"c.txt": "(2+3)*4",
	})
	rec := &recorder{}
	res, err := Build(context.Background(), &BuildRequest{
		Files:   paths,
		BaseDir: dir,
		Target:  amd64.TargetLinux,
		OutputPath: func(src string) string {
			return filepath.Join(outDir, strings.TrimSuffix(filepath.Base(src), ".txt")+".s")
		},
		Jobs:           2,
		MaxDiagnostics: 10,
		Progress:       rec,
	})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("want ErrBuildFailed, got %v", err)
	}
	if res.Failed() != 1 || len(res.Files) != 3 {
		t.Fatalf("failed=%d files=%d", res.Failed(), len(res.Files))
	}

	for _, name := range []string{"a", "c"} {
		data, readErr := os.ReadFile(filepath.Join(outDir, name+".s"))
		if readErr != nil {
			t.Fatalf("%s.s: %v", name, readErr)
		}
		if !strings.Contains(string(data), "callq printf@PLT") {
			t.Errorf("%s.s is not linux assembly:\n%s", name, data)
		}
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "b.s")); !os.IsNotExist(statErr) {
		t.Errorf("b.s must not be written, stat err = %v", statErr)
	}
	if res.Files[1].Output != "" || res.Files[1].Compile.Bag.Len() == 0 {
		t.Errorf("b.txt: output=%q diagnostics=%d", res.Files[1].Output, res.Files[1].Compile.Bag.Len())
	}

	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if res.Files[i].Name != name {
			t.Errorf("file %d name = %q", i, res.Files[i].Name)
		}
		evs := rec.forFile(name)
		if len(evs) < 2 {
			t.Fatalf("%s: too few events %+v", name, evs)
		}
		if evs[0].Status != StatusQueued {
			t.Errorf("%s: first event %+v", name, evs[0])
		}
		last := evs[len(evs)-1]
		want := StatusDone
		if name == "b.txt" {
			want = StatusError
		}
		if last.Status != want {
			t.Errorf("%s: last status %s, want %s", name, last.Status, want)
		}
	}
	if !res.Timings.Has(StageLex) || !res.Timings.Has(StageWrite) {
		t.Errorf("missing stage timings")
	}
}

func TestBuildDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir, map[string]string{"a.txt": "7%2"})
	res, err := Build(context.Background(), &BuildRequest{Files: paths})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := filepath.Join(dir, "a.s")
	if res.Files[0].Output != want {
		t.Fatalf("output = %q, want %q", res.Files[0].Output, want)
	}
	data, err := os.ReadFile(want)
	if err != nil || !strings.HasPrefix(string(data), ".globl _main\n") {
		t.Fatalf("darwin artefact expected, got %q (%v)", data, err)
	}
}

func TestBuildRefusesToOverwriteSource(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir, map[string]string{"a.txt": "1"})
	res, err := Build(context.Background(), &BuildRequest{
		Files:      paths,
		OutputPath: func(src string) string { return src },
	})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("want ErrBuildFailed, got %v", err)
	}
	data, _ := os.ReadFile(paths[0])
	if string(data) != "1" {
		t.Fatalf("source was overwritten: %q", data)
	}
	if res.Files[0].Err == nil || !strings.Contains(res.Files[0].Err.Error(), "overwrite") {
		t.Fatalf("unexpected error %v", res.Files[0].Err)
	}
}

func TestBuildLink(t *testing.T) {
	for _, tc := range []struct {
		cc      string
		wantErr bool
	}{
		{"true", false},
		{"false", true},
	} {
		t.Run(tc.cc, func(t *testing.T) {
			if _, err := exec.LookPath(tc.cc); err != nil {
				t.Skipf("%s not available", tc.cc)
			}
			dir := t.TempDir()
			paths := writeSources(t, dir, map[string]string{"a.txt": "1+1"})
			var echo bytes.Buffer
			res, err := Build(context.Background(), &BuildRequest{
				Files:         paths,
				Link:          true,
				CC:            tc.cc,
				PrintCommands: true,
				CommandOutput: &echo,
			})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			asm := filepath.Join(dir, "a.s")
			if got := echo.String(); got != tc.cc+" "+asm+" -o "+filepath.Join(dir, "a")+"\n" {
				t.Fatalf("echo = %q", got)
			}
			if !tc.wantErr && res.Files[0].Binary != filepath.Join(dir, "a") {
				t.Fatalf("binary = %q", res.Files[0].Binary)
			}
			// .s остаётся даже если линковка упала
			if _, statErr := os.Stat(asm); statErr != nil {
				t.Fatalf("assembly missing: %v", statErr)
			}
		})
	}
}

func TestBuildRejectsEmptyRequest(t *testing.T) {
	if _, err := Build(context.Background(), nil); err == nil {
		t.Fatal("nil request accepted")
	}
	if _, err := Build(context.Background(), &BuildRequest{}); err == nil {
		t.Fatal("empty file list accepted")
	}
}

func TestProgressNames(t *testing.T) {
	base := t.TempDir()
	got := ProgressNames([]string{
		filepath.Join(base, "x", "a.txt"),
		filepath.Join(base, "b.txt"),
		"/elsewhere/c.txt",
	}, base)
	want := []string{"x/a.txt", "b.txt", "/elsewhere/c.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecutablePath(t *testing.T) {
	tests := map[string]string{
		"out/a.s": "out/a",
		"a":       "a.out",
		"b.asm":   "b",
	}
	for in, want := range tests {
		if got := executablePath(in); got != want {
			t.Errorf("executablePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimings(t *testing.T) {
	var tm Timings
	if tm.Has(StageLex) || tm.Duration(StageLex) != 0 {
		t.Fatal("zero Timings must be empty")
	}
	tm.Add(StageLex, time.Millisecond)
	tm.Add(StageLex, time.Millisecond)
	tm.Set(StageParse, 3*time.Millisecond)
	if tm.Duration(StageLex) != 2*time.Millisecond {
		t.Fatalf("lex = %v", tm.Duration(StageLex))
	}
	if tm.Sum(StageLex, StageParse, StageLink) != 5*time.Millisecond {
		t.Fatalf("sum = %v", tm.Sum(StageLex, StageParse))
	}
	tm.Add(Stage("bogus"), time.Second)
	if tm.Has("bogus") || tm.Sum(Stages()...) != 5*time.Millisecond {
		t.Fatal("unknown stages must be ignored")
	}
	if len(Stages()) != stageCount {
		t.Fatal("stageCount out of sync with Stages")
	}
}
