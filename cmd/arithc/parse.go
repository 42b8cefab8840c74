package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arithc/internal/diagfmt"
	"arithc/internal/driver"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file",
		Short: "Parse an expression file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "tree", "output format (tree|outline|json|dump)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "tree", "outline", "json", "dump":
	default:
		return fmt.Errorf("unknown format: %s", format)
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

	out := cmd.OutOrStdout()
	switch format {
	case "outline":
		return diagfmt.FormatASTOutline(out, result.Builder, result.Root)
	case "json":
		return diagfmt.FormatASTJSON(out, result.Builder, result.Root)
	case "dump":
		return diagfmt.FormatASTDump(out, result.Builder, result.Root)
	default:
		return diagfmt.FormatASTTree(out, result.Builder, result.Root)
	}
}
