package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"arithc/internal/version"
)

// newRootCmd assembles the command tree. Tests build a fresh tree per run
// so flag state never leaks between cases. finish closes the tracer and the
// profilers; call it after Execute whether or not the command failed.
func newRootCmd() (rootCmd *cobra.Command, finish func()) {
	rootCmd = &cobra.Command{
		Use:           "arithc",
		Short:         "Arithmetic expression compiler for x86-64",
		Long:          `arithc translates integer arithmetic expressions into x86-64 assembly that prints their value`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var cleanups []func()
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		stopTrace, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopTrace)
		stopProf, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopProf)
		return nil
	}
	finish = func() {
		// в обратном порядке: профилировщик закрываем раньше трейсера
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		cleanups = nil
	}

	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newSimCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("diagnostics-format", "pretty", "diagnostics output format (pretty|json|short)")

	pf.String("trace", "", "write compiler trace to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	pf.String("cpuprofile", "", "write CPU profile to file")
	pf.String("memprofile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write Go runtime trace to file")

	return rootCmd, finish
}

// main executes the root command; any error is printed and exits with status 1.
func main() {
	rootCmd, finish := newRootCmd()
	err := rootCmd.Execute()
	finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
