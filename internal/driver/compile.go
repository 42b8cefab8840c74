package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arithc/internal/ast"
	"arithc/internal/backend/amd64"
	"arithc/internal/diag"
	"arithc/internal/lexer"
	"arithc/internal/observ"
	"arithc/internal/parser"
	"arithc/internal/source"
	"arithc/internal/trace"
	"arithc/internal/version"
)

// CompileOptions configures Compile and CompileFiles.
type CompileOptions struct {
	Target         amd64.Target
	MaxDiagnostics int
	Jobs           int // CompileFiles only; <= 0 means GOMAXPROCS

	Cache    *DiskCache    // nil disables the artefact cache
	Timer    *observ.Timer // nil disables phase timings
	Observer PhaseObserver
}

// CompileResult is the outcome of compiling one file. Asm is set only when
// Err is nil. A cache hit skips lexing and parsing, so Builder stays nil.
type CompileResult struct {
	Path    string
	File    *source.File
	Builder *ast.Builder
	Root    ast.NodeID
	Asm     string
	Bag     *diag.Bag
	Cached  bool

	Leaves   int
	Binaries int

	// Err is the first failure: *lexer.Error, *parser.Error,
	// *amd64.InternalError or a load error.
	Err error
}

// OK reports whether the file produced assembly.
func (r *CompileResult) OK() bool { return r != nil && r.Err == nil }

// Compile loads path into a fresh FileSet and compiles it.
// The error is returned for load failures only; everything else is in the result.
func Compile(ctx context.Context, path string, opts CompileOptions) (*source.FileSet, *CompileResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return fs, nil, err
	}
	return fs, CompileFile(ctx, fs.Get(fileID), opts), nil
}

// CompileFile runs lex, parse and codegen over an already loaded file,
// consulting the cache first when one is configured.
func CompileFile(ctx context.Context, file *source.File, opts CompileOptions) *CompileResult {
	res := &CompileResult{
		Path: file.Path,
		File: file,
		Bag:  diag.NewBag(opts.MaxDiagnostics),
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	span.WithExtra("file", file.Path).WithExtra("target", opts.Target.String())
	defer func() {
		detail := "ok"
		switch {
		case res.Err != nil:
			detail = "failed"
		case res.Cached:
			detail = "cached"
		}
		span.End(detail)
	}()

	key := CacheKey(file.Content, opts.Target)
	if opts.Cache != nil && lookupCache(ctx, opts, res, key) {
		return res
	}

	reporter := diag.BagReporter{Bag: res.Bag}

	done := startPhase(ctx, opts, file.Path, PhaseLex)
	tokens, err := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	done(err, fmt.Sprintf("%d tokens", len(tokens)))
	if err != nil {
		res.Err = err
		return res
	}

	done = startPhase(ctx, opts, file.Path, PhaseParse)
	builder := ast.NewBuilder(uint(len(tokens)))
	root, consumed, err := parser.ParseCount(tokens, builder, parser.Options{Reporter: reporter, File: file.ID})
	done(err, fmt.Sprintf("%d/%d tokens", consumed, len(tokens)))
	res.Builder = builder
	if err != nil {
		res.Err = err
		return res
	}
	res.Root = root
	res.Leaves, res.Binaries = builder.Count(root)

	done = startPhase(ctx, opts, file.Path, PhaseCodegen)
	asm, err := amd64.Emit(builder, root, amd64.Options{Target: opts.Target})
	done(err, opts.Target.String())
	if err != nil {
		res.Err = err
		var ie *amd64.InternalError
		sp := source.Span{File: file.ID}
		if errors.As(err, &ie) {
			if n := builder.Get(ie.Node); n != nil {
				sp = n.Span
			}
		}
		diag.ReportError(reporter, diag.GenInternal, sp, err.Error()).Emit()
		return res
	}
	res.Asm = asm

	// с предупреждениями не кэшируем: при попадании они бы потерялись
	if opts.Cache != nil && res.Bag.Len() == 0 {
		storeCache(ctx, opts, res, key)
	}
	return res
}

func lookupCache(ctx context.Context, opts CompileOptions, res *CompileResult, key Digest) bool {
	done := startPhase(ctx, opts, res.Path, PhaseCache)
	var payload DiskPayload
	hit, err := opts.Cache.Get(key, &payload)
	switch {
	case err != nil:
		// битая запись: просто пересобираем
		done(nil, "unreadable: "+err.Error())
		return false
	case !hit:
		done(nil, "miss")
		return false
	}
	done(nil, "hit")
	res.Asm = payload.Asm
	res.Leaves = payload.Leaves
	res.Binaries = payload.Binaries
	res.Cached = true
	trace.Point(ctx, trace.ScopeFile, "cache.hit", key.String())
	return true
}

func storeCache(ctx context.Context, opts CompileOptions, res *CompileResult, key Digest) {
	err := opts.Cache.Put(key, &DiskPayload{
		Target:   opts.Target.String(),
		Version:  version.Version,
		Path:     res.Path,
		Asm:      res.Asm,
		Leaves:   res.Leaves,
		Binaries: res.Binaries,
	})
	if err != nil {
		trace.Point(ctx, trace.ScopeFile, "cache.put", "failed: "+err.Error())
		return
	}
	trace.Point(ctx, trace.ScopeFile, "cache.put", key.String())
}

// startPhase opens a trace span, a timer phase and notifies the observer.
// The returned func closes all three.
func startPhase(ctx context.Context, opts CompileOptions, path, name string) func(err error, detail string) {
	_, span := trace.Start(ctx, trace.ScopePass, name)
	stop := opts.Timer.Track(name)
	opts.Observer.emit(path, name, PhaseStart, 0)
	started := time.Now()
	return func(err error, detail string) {
		status := PhaseEnd
		if err != nil {
			status = PhaseFailed
			detail = err.Error()
		}
		span.End(detail)
		stop(path)
		opts.Observer.emit(path, name, status, time.Since(started))
	}
}
