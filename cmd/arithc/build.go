package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arithc/internal/buildpipeline"
	"arithc/internal/driver"
	"arithc/internal/observ"
	"arithc/internal/project"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [files...]",
		Short: "Compile expression files to x86-64 assembly",
		Long: `Build compiles every file independently and writes <name>.s for each one
that compiled. Without arguments the sources listed in arithc.toml are built.`,
		RunE: runBuild,
	}
	addTargetFlag(cmd)
	cmd.Flags().String("out-dir", "", "directory for .s files (default: next to each source)")
	cmd.Flags().Bool("link", false, "link every artefact into an executable with the C compiler")
	cmd.Flags().String("cc", "cc", "C compiler used for --link")
	cmd.Flags().Bool("print-commands", false, "print linker commands")
	cmd.Flags().IntP("jobs", "j", 0, "parallel compilations (0: number of CPUs)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the artefact cache")
	cmd.Flags().String("cache-dir", "", "artefact cache directory")
	cmd.Flags().Bool("clear-cache", false, "drop the artefact cache before building")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	uiValue, _ := flags.GetString("ui")
	mode, err := readSwitch("ui", uiValue)
	if err != nil {
		return err
	}
	printCommands, _ := flags.GetBool("print-commands")
	clearCache, _ := flags.GetBool("clear-cache")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	quiet := isQuiet(cmd)

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

	files := args
	if len(files) == 0 {
		files, err = settings.ExpandSources()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files (pass files or list sources in %s)", project.ManifestName)
		}
	}

	var cache *driver.DiskCache
	if settings.CacheEnabled {
		cache, err = driver.OpenDiskCache(settings.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
	}

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	req := &buildpipeline.BuildRequest{
		Files:          files,
		BaseDir:        settings.Root,
		Target:         target,
		OutputPath:     settings.OutputPath,
		Link:           settings.Link,
		CC:             settings.CC,
		PrintCommands:  printCommands,
		CommandOutput:  cmd.OutOrStdout(),
		Jobs:           settings.Jobs,
		MaxDiagnostics: maxDiag,
		Cache:          cache,
		Timer:          timer,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var result buildpipeline.BuildResult
	if mode.enabled(os.Stdout) && !quiet && !printCommands {
		result, err = runBuildWithUI(ctx, cmd.OutOrStdout(), "build "+target.String(), req)
	} else {
		result, err = buildpipeline.Build(ctx, req)
	}

	// диагностики печатаем после UI, чтобы не смешивать с прогрессом
	for _, fr := range result.Files {
		if fr.Compile == nil {
			continue
		}
		if printErr := printDiagnostics(cmd, fr.Compile.Bag, result.FileSet); printErr != nil {
			return printErr
		}
		if fr.Compile.OK() && fr.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", fr.Name, fr.Err)
		}
	}
	if !quiet {
		for _, fr := range result.Files {
			if fr.Err != nil {
				continue
			}
			line := fr.Output
			if fr.Binary != "" {
				line += " -> " + fr.Binary
			}
			if fr.Compile.Cached {
				line += " (cached)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	if showTimings {
		if tErr := printStageTimings(cmd.ErrOrStderr(), result.Timings); tErr != nil {
			return tErr
		}
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if err != nil {
		if errors.Is(err, buildpipeline.ErrBuildFailed) {
			return err
		}
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
