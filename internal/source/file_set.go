package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// FileSet owns every source file of one run. Spans refer to files by FileID.
// Not safe for concurrent mutation: load everything before fanning out.
type FileSet struct {
	files   []File
	byPath  map[string]FileID // последняя версия файла по пути
	baseDir string
}

// NewFileSet creates an empty set whose relative paths are taken against
// the working directory.
func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// NewFileSetWithBase creates an empty set with an explicit base directory.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the directory relative paths are shown against.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add stores content under path and returns a fresh FileID. Adding the same
// path twice keeps both versions; GetLatest returns the newer one.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	path = filepath.ToSlash(filepath.Clean(path))
	fs.files = append(fs.files, File{
		ID:         id,
		Path:       path,
		Content:    content,
		LineStarts: lineStarts(content),
		Hash:       sha256.Sum256(content),
		Flags:      flags,
	})
	fs.byPath[path] = id
	return id
}

// Load reads path from disk and adds its normalised content.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- путь приходит из командной строки
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(raw)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content (tests, stdin, placeholders).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id. It panics on an id from another set.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// GetLatest returns the newest FileID registered under path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.byPath[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

// Resolve maps both ends of span to line/column pairs.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fs.files[span.File]
	return f.position(span.Start), f.position(span.End)
}

// GetLine returns line n (1-based) without its newline, or "" when the file
// has no such line.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineStarts) {
		return ""
	}
	start := int(f.LineStarts[n-1])
	end := len(f.Content)
	if int(n) < len(f.LineStarts) {
		end = int(f.LineStarts[n]) - 1
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path for display. mode is "absolute", "relative"
// (against baseDir) or "basename"; anything else returns Path unchanged.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if rel, ok := relativeTo(f.Path, baseDir); ok {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}

// relativeTo succeeds only when path lies under baseDir.
func relativeTo(path, baseDir string) (string, bool) {
	if baseDir == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
