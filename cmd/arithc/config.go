package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arithc/internal/backend/amd64"
	"arithc/internal/project"
)

// loadSettings resolves arithc.toml, .env and the environment from the
// working directory, then applies the flags the user actually set.
func loadSettings(cmd *cobra.Command) (project.Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return project.Settings{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	settings, err := project.Resolve(cwd, os.LookupEnv)
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		settings.Target, _ = flags.GetString("target")
	}
	if flags.Changed("out-dir") {
		settings.OutDir, _ = flags.GetString("out-dir")
	}
	if flags.Changed("link") {
		settings.Link, _ = flags.GetBool("link")
	}
	if flags.Changed("cc") {
		settings.CC, _ = flags.GetString("cc")
	}
	if flags.Changed("jobs") {
		settings.Jobs, _ = flags.GetInt("jobs")
		if settings.Jobs < 0 {
			return settings, fmt.Errorf("--jobs must not be negative")
		}
	}
	if flags.Changed("no-cache") {
		noCache, _ := flags.GetBool("no-cache")
		settings.CacheEnabled = !noCache
	}
	if flags.Changed("cache-dir") {
		settings.CacheDir, _ = flags.GetString("cache-dir")
	}
	return settings, nil
}

func settingsTarget(s project.Settings) (amd64.Target, error) {
	t, err := amd64.ParseTarget(s.Target)
	if err != nil {
		return t, fmt.Errorf("invalid target: %w", err)
	}
	return t, nil
}

func addTargetFlag(cmd *cobra.Command) {
	cmd.Flags().String("target", "darwin", "assembly flavour (darwin|linux|host)")
}
