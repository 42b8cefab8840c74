package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"arithc/internal/diag"
	"arithc/internal/source"
	"arithc/internal/trace"
)

// CompileFiles compiles every path as an independent program.
// Results keep the order of paths. A file that could not be loaded gets a
// result with an IO4001 diagnostic and Err set. The returned error is
// non-nil only when ctx was cancelled.
func CompileFiles(ctx context.Context, paths []string, opts CompileOptions) (*source.FileSet, []*CompileResult, error) {
	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile_files")
	defer span.End(fmt.Sprintf("%d files", len(paths)))

	// FileSet не потокобезопасен: загружаем всё до запуска воркеров
	fileIDs := make([]source.FileID, len(paths))
	results := make([]*CompileResult, len(paths))
	for i, path := range paths {
		fileID, err := fileSet.Load(path)
		if err != nil {
			results[i] = loadFailure(fileSet, path, err, opts.MaxDiagnostics)
			continue
		}
		fileIDs[i] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, fileID := range fileIDs {
		if results[i] != nil {
			continue
		}
		file := fileSet.Get(fileID)
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = CompileFile(gctx, file, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// loadFailure registers an empty virtual file for path so the IO4001
// diagnostic still resolves to a location.
func loadFailure(fileSet *source.FileSet, path string, err error, maxDiagnostics int) *CompileResult {
	fileID := fileSet.AddVirtual(path, nil)
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOLoadFileError,
		Message:  fmt.Sprintf("failed to load %s: %v", path, err),
		Primary:  source.Span{File: fileID},
	})
	return &CompileResult{
		Path: path,
		Bag:  bag,
		Err:  fmt.Errorf("load %s: %w", path, err),
	}
}
