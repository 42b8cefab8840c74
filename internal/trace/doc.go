// Package trace is the logging channel of the compiler.
//
// Every pass (lex, parse, codegen, cache, write, link) opens a span; spans
// nest through context.Context. Output goes to a stream (text or NDJSON),
// to an in-memory ring that is dumped when a build fails, or to both.
//
//	arithc build --trace=- --trace-level=detail exprs/*.txt
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: ring only, dumped on failure
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: everything
//
// # Context
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
package trace
