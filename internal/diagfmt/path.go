package diagfmt

import (
	"path/filepath"

	"arithc/internal/source"
)

const autoPathMax = 40

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		if fs.BaseDir() != "" && filepath.IsAbs(f.Path) {
			if rel := f.FormatPath("relative", fs.BaseDir()); rel != f.Path {
				return rel
			}
		}
		if len(f.Path) > autoPathMax {
			return f.FormatPath("basename", "")
		}
		return f.Path
	}
}
