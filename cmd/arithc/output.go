package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"arithc/internal/diag"
	"arithc/internal/diagfmt"
	"arithc/internal/source"
)

// applyColorFlag validates --color and pins fatih/color to the decision.
func applyColorFlag(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readSwitch("color", value)
	if err != nil {
		return err
	}
	if mode != switchAuto {
		color.NoColor = mode == switchOff
	}
	return nil
}

// useColor reports whether output to w should be colored.
func useColor(cmd *cobra.Command, w io.Writer) bool {
	value, _ := cmd.Root().PersistentFlags().GetString("color")
	mode, err := readSwitch("color", value)
	if err != nil {
		return false
	}
	f, _ := w.(*os.File)
	return mode.enabled(f)
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return quiet
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return n, nil
}

// printDiagnostics renders bag to stderr in the --diagnostics-format style.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	format, err := cmd.Root().PersistentFlags().GetString("diagnostics-format")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	out := cmd.ErrOrStderr()
	bag.Sort()
	switch strings.ToLower(format) {
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd, out),
			Context:   1,
			ShowNotes: true,
		})
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	case "short":
		if _, err := io.WriteString(out, diag.FormatShortDiagnostics(bag.Items(), fs, true)); err != nil {
			return err
		}
		if bag.Len() > 0 {
			fmt.Fprintln(out)
		}
	default:
		return fmt.Errorf("unknown diagnostics format: %s", format)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(out, "note: %d more diagnostic(s) not shown (--max-diagnostics)\n", n)
	}
	return nil
}
