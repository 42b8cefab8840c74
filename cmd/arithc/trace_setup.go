package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"arithc/internal/trace"
)

// setupTracing builds the tracer described by the --trace* flags and puts it
// into the command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()
	output, _ := pf.GetString("trace")
	levelStr, _ := pf.GetString("trace-level")
	modeStr, _ := pf.GetString("trace-mode")
	formatStr, _ := pf.GetString("trace-format")
	ringSize, _ := pf.GetInt("trace-ring-size")
	every, _ := pf.GetDuration("trace-heartbeat")

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --trace-level: %w", err)
	}
	// --trace без уровня подразумевает phase
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --trace-mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --trace-format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  every,
	})
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	var hb *trace.Heartbeat
	if every > 0 {
		hb = trace.StartHeartbeat(tracer, every)
	}
	errOut := cmd.ErrOrStderr()
	return func() {
		hb.Stop()
		// ring-буфер сбрасываем в конце, иначе он просто теряется
		_, dumpErr := trace.DumpRing(tracer, os.Stderr, format)
		reportTraceErr(errOut, "dump", dumpErr)
		reportTraceErr(errOut, "flush", tracer.Flush())
		reportTraceErr(errOut, "close", tracer.Close())
	}, nil
}

func reportTraceErr(w io.Writer, op string, err error) {
	if err != nil {
		fmt.Fprintf(w, "trace: %s: %v\n", op, err)
	}
}
