package project

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted by Resolve.
const (
	EnvTarget   = "ARITHC_TARGET"
	EnvCacheDir = "ARITHC_CACHE_DIR"
	EnvJobs     = "ARITHC_JOBS"
	EnvNoCache  = "ARITHC_NO_CACHE"
	EnvCC       = "CC"
)

// Settings is the merged configuration for one invocation. Flags are
// applied on top by the CLI.
type Settings struct {
	Name         string
	Root         string // directory of the manifest, or the start dir
	ManifestPath string
	Target       string
	Sources      []string // glob patterns relative to Root
	OutDir       string
	OutExt       string
	Link         bool
	CC           string
	Jobs         int // 0: GOMAXPROCS
	CacheEnabled bool
	CacheDir     string
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		Target:       "darwin",
		OutExt:       ".s",
		CC:           "cc",
		CacheEnabled: true,
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolve layers defaults < manifest < .env < process environment.
// A .env next to the manifest (or in startDir) only fills variables the
// process environment does not set.
func Resolve(startDir string, lookup LookupFunc) (Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	s := Defaults()
	root, err := filepath.Abs(startDir)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	s.Root = root

	manifest, ok, err := LoadManifest(startDir)
	if err != nil {
		return Settings{}, err
	}
	if ok {
		s.applyManifest(manifest)
	}

	dotenv, err := readDotEnv(filepath.Join(s.Root, ".env"))
	if err != nil {
		return Settings{}, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := s.applyEnv(env); err != nil {
		return Settings{}, err
	}
	if s.CacheDir == "" {
		s.CacheDir = defaultCacheDir()
	}
	return s, nil
}

func (s *Settings) applyManifest(m *Manifest) {
	s.Root = m.Root
	s.ManifestPath = m.Path
	s.Name = m.Config.Package.Name
	b := m.Config.Build
	if b.Target != "" {
		s.Target = b.Target
	}
	if len(b.Sources) > 0 {
		s.Sources = slices.Clone(b.Sources)
	}
	if b.OutDir != "" {
		s.OutDir = b.OutDir
	}
	if b.OutExt != "" {
		s.OutExt = b.OutExt
	}
	if b.Link != nil {
		s.Link = *b.Link
	}
	if b.CC != "" {
		s.CC = b.CC
	}
	if b.Jobs > 0 {
		s.Jobs = b.Jobs
	}
	if m.Config.Cache.Enabled != nil {
		s.CacheEnabled = *m.Config.Cache.Enabled
	}
	if dir := m.Config.Cache.Dir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(m.Root, dir)
		}
		s.CacheDir = dir
	}
}

func (s *Settings) applyEnv(env LookupFunc) error {
	if v, ok := env(EnvTarget); ok && v != "" {
		s.Target = v
	}
	if v, ok := env(EnvCacheDir); ok && v != "" {
		s.CacheDir = v
	}
	if v, ok := env(EnvJobs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: want a non-negative integer, got %q", EnvJobs, v)
		}
		s.Jobs = n
	}
	if v, ok := env(EnvNoCache); ok && v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNoCache, err)
		}
		s.CacheEnabled = !off
	}
	if v, ok := env(EnvCC); ok && v != "" {
		s.CC = v
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil //nolint:nilerr // a missing .env is not an error
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return vars, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "arithc")
	}
	return filepath.Join(os.TempDir(), "arithc-cache")
}

// ExpandSources resolves Sources globs against Root, sorted and without
// duplicates.
func (s *Settings) ExpandSources() ([]string, error) {
	var out []string
	for _, pattern := range s.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(s.Root, filepath.FromSlash(pattern))
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad source pattern %q: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// OutputPath maps a source file to its artefact path: the extension is
// replaced by OutExt and the file lands in OutDir (relative to Root) when
// set, next to the source otherwise.
func (s *Settings) OutputPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + s.OutExt
	if s.OutDir == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	dir := s.OutDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.Root, dir)
	}
	return filepath.Join(dir, base)
}
