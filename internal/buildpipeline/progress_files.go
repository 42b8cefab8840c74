package buildpipeline

import (
	"path/filepath"
	"strings"
)

// ProgressNames returns the names Build uses in Event.File for files:
// slash-separated and relative to baseDir when the file lies under it.
// The order of files is kept.
func ProgressNames(files []string, baseDir string) []string {
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = displayPath(file, base)
	}
	return names
}

func displayPath(file, absBase string) string {
	path := filepath.Clean(file)
	if absBase != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(absBase, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// sourceKey is the form the source package stores paths in.
func sourceKey(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
