package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arithc/internal/driver"
	"arithc/internal/vm"
)

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim [flags] file",
		Short: "Compile an expression and run the assembly in the built-in simulator",
		Long: `Sim compiles the file and executes the emitted instructions on a
simulated x86-64 stack machine, printing what the program would print`,
		Args: cobra.ExactArgs(1),
		RunE: runSim,
	}
	addTargetFlag(cmd)
	cmd.Flags().Bool("trace-vm", false, "print every executed instruction to stderr")
	cmd.Flags().Bool("show-asm", false, "print the assembly before running it")
	cmd.Flags().Bool("exit-code", false, "report the simulated exit status")
	cmd.Flags().Int("max-steps", vm.DefaultMaxSteps, "abort after this many instructions")
	return cmd
}

func runSim(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	flags := cmd.Flags()
	traceVM, _ := flags.GetBool("trace-vm")
	showAsm, _ := flags.GetBool("show-asm")
	showExit, _ := flags.GetBool("exit-code")
	maxSteps, err := flags.GetInt("max-steps")
	if err != nil {
		return fmt.Errorf("failed to get max-steps flag: %w", err)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	target, err := settingsTarget(settings)
	if err != nil {
		return err
	}
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	fs, res, err := driver.Compile(cmd.Context(), filePath, driver.CompileOptions{
		Target:         target,
		MaxDiagnostics: maxDiag,
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	if err := printDiagnostics(cmd, res.Bag, fs); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%s: compilation failed", filePath)
	}

	out := cmd.OutOrStdout()
	if showAsm {
		fmt.Fprint(out, res.Asm)
	}
	opts := vm.Options{MaxSteps: maxSteps, Stdout: out}
	if traceVM {
		opts.Trace = vm.NewTracer(cmd.ErrOrStderr())
	}
	run, err := vm.RunText(res.Asm, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if showExit {
		fmt.Fprintf(cmd.ErrOrStderr(), "exit status %d (%d steps)\n", run.ExitCode, run.Steps)
	}
	return nil
}
