// Package buildpipeline orchestrates the compilation process.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"arithc/internal/backend/amd64"
	"arithc/internal/driver"
	"arithc/internal/observ"
	"arithc/internal/source"
	"arithc/internal/trace"
)

// ErrBuildFailed is wrapped by Build when at least one file failed.
var ErrBuildFailed = errors.New("build failed")

// BuildRequest configures output generation for a set of expression files.
type BuildRequest struct {
	Files   []string
	BaseDir string // progress names are relative to it
	Target  amd64.Target

	// OutputPath maps a source file to its assembly artefact.
	// nil writes <source without ext>.s next to the source.
	OutputPath func(src string) string

	Link          bool
	CC            string
	PrintCommands bool
	CommandOutput io.Writer // echo of --print-commands, defaults to stdout

	Jobs           int
	MaxDiagnostics int
	Cache          *driver.DiskCache
	Timer          *observ.Timer
	Progress       ProgressSink
}

// FileResult is the per-file outcome.
type FileResult struct {
	Name    string // progress name
	Compile *driver.CompileResult
	Output  string // written .s file, empty on failure
	Binary  string // linked executable when Link was requested
	Err     error
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timings Timings
}

// Failed returns the number of files without an artefact.
func (r BuildResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Build compiles every file independently, writes artefacts for the files
// that compiled and optionally links them. Every file is reported before
// the build fails; the error wraps ErrBuildFailed in that case.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no input files")
	}
	reqCopy := *req
	req = &reqCopy
	if req.OutputPath == nil {
		req.OutputPath = defaultOutputPath
	}
	if req.CC == "" {
		req.CC = "cc"
	}
	if req.CommandOutput == nil {
		req.CommandOutput = os.Stdout
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	defer span.End("")

	names := ProgressNames(req.Files, req.BaseDir)
	emitQueued(req.Progress, names)

	phase := newPhaseObserver(req.Progress, req.Files, names)
	fileSet, compiled, err := driver.CompileFiles(ctx, req.Files, driver.CompileOptions{
		Target:         req.Target,
		MaxDiagnostics: req.MaxDiagnostics,
		Jobs:           req.Jobs,
		Cache:          req.Cache,
		Timer:          req.Timer,
		Observer:       phase.OnPhase,
	})
	result.FileSet = fileSet
	result.Timings = phase.snapshot()
	if err != nil {
		emitStage(req.Progress, StageCodegen, StatusError, err, 0)
		return result, err
	}

	result.Files = make([]FileResult, len(req.Files))
	for i, res := range compiled {
		fr := &result.Files[i]
		fr.Name = names[i]
		fr.Compile = res
		if !res.OK() {
			fr.Err = res.Err
			emitFile(req.Progress, fr.Name, StageCodegen, StatusError, res.Err, 0)
			continue
		}
		fr.Output, fr.Err = writeArtefact(ctx, req, &result.Timings, fr.Name, req.Files[i], res.Asm)
		if fr.Err != nil {
			continue
		}
		if req.Link {
			fr.Binary, fr.Err = linkArtefact(ctx, req, &result.Timings, fr.Name, fr.Output)
			if fr.Err != nil {
				continue
			}
		}
		emitFile(req.Progress, fr.Name, StageWrite, StatusDone, nil, 0)
	}

	if failed := result.Failed(); failed > 0 {
		err := fmt.Errorf("%w: %d of %d files failed", ErrBuildFailed, failed, len(result.Files))
		emitStage(req.Progress, StageWrite, StatusError, err, 0)
		return result, err
	}
	emitStage(req.Progress, StageWrite, StatusDone, nil, result.Timings.Sum(Stages()...))
	return result, nil
}

func defaultOutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".s"
}

func writeArtefact(ctx context.Context, req *BuildRequest, timings *Timings, name, src, asm string) (string, error) {
	_, span := trace.Start(ctx, trace.ScopePass, string(StageWrite))
	emitFile(req.Progress, name, StageWrite, StatusWorking, nil, 0)
	start := time.Now()

	out := req.OutputPath(src)
	err := func() error {
		if samePath(out, src) {
			return fmt.Errorf("output %q would overwrite its source", out)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(out, []byte(asm), 0o600); err != nil {
			return fmt.Errorf("failed to write build output %q: %w", out, err)
		}
		return nil
	}()

	elapsed := time.Since(start)
	timings.Add(StageWrite, elapsed)
	req.Timer.Add("write", elapsed, out)
	if err != nil {
		span.End(err.Error())
		emitFile(req.Progress, name, StageWrite, StatusError, err, elapsed)
		return "", err
	}
	span.End(out)
	return out, nil
}

func linkArtefact(ctx context.Context, req *BuildRequest, timings *Timings, name, asmPath string) (string, error) {
	_, span := trace.Start(ctx, trace.ScopePass, string(StageLink))
	emitFile(req.Progress, name, StageLink, StatusWorking, nil, 0)
	start := time.Now()

	bin := executablePath(asmPath)
	err := runCommand(ctx, req.PrintCommands, req.CommandOutput, req.CC, asmPath, "-o", bin)

	elapsed := time.Since(start)
	timings.Add(StageLink, elapsed)
	req.Timer.Add("link", elapsed, bin)
	if err != nil {
		err = fmt.Errorf("link %s: %w", asmPath, err)
		span.End(err.Error())
		emitFile(req.Progress, name, StageLink, StatusError, err, elapsed)
		return "", err
	}
	span.End(bin)
	return bin, nil
}

// executablePath drops the assembly extension; a bare name gets ".out".
func executablePath(asmPath string) string {
	bin := strings.TrimSuffix(asmPath, filepath.Ext(asmPath))
	if bin == asmPath || bin == "" {
		bin = asmPath + ".out"
	}
	return bin
}

func runCommand(ctx context.Context, printCommands bool, echo io.Writer, name string, args ...string) error {
	if printCommands {
		_, printErr := fmt.Fprintf(echo, "%s %s\n", name, strings.Join(args, " "))
		if printErr != nil {
			return fmt.Errorf("failed to print command: %w", printErr)
		}
	}
	// #nosec G204 -- compiler is taken from the user's configuration
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return err
		}
		return fmt.Errorf("%s: %s", name, msg)
	}
	return nil
}
