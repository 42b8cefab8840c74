package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" {
		t.Errorf("Current() = %+v", info)
	}
	if got, want := info.String(), "arithc 1.2.3 (abc123def456) built 2024-01-15T10:30:00Z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = orig, origNoColor })

	color.NoColor = true
	Version = "0.1.0-dev"
	if got := Colored(); got != "0.1.0-dev" {
		t.Errorf("Colored() without colour = %q", got)
	}
	Version = "weird"
	if got := Colored(); got != "weird" {
		t.Errorf("Colored() on non-semver = %q", got)
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Error("Colored() should add escapes when colour is on")
	}
}
