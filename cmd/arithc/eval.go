package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arithc/internal/driver"
	"arithc/internal/eval"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [flags] file",
		Short: "Evaluate an expression file with the reference interpreter",
		Long: `Eval computes the value the compiled program would print, using the
same unsigned 64-bit arithmetic, and prints it as a signed integer`,
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}
	cmd.Flags().Bool("unsigned", false, "print the raw unsigned 64-bit value")
	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	unsigned, err := cmd.Flags().GetBool("unsigned")
	if err != nil {
		return fmt.Errorf("failed to get unsigned flag: %w", err)
	}
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(filePath, maxDiag)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if err := printDiagnostics(cmd, result.Bag, result.FileSet); err != nil {
		return err
	}
	if !result.Root.IsValid() {
		return fmt.Errorf("%s: parsing failed", filePath)
	}

	v, err := eval.Eval(result.Builder, result.Root)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if unsigned {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), eval.Signed(v))
	return err
}
