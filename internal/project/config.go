package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrBuildSectionInvalid reports an unusable [build] value.
	ErrBuildSectionInvalid = errors.New("invalid [build]")
	// ErrResolveSectionInvalid reports an unusable [resolve] value.
	ErrResolveSectionInvalid = errors.New("invalid [resolve]")
)

// DefaultExtensions are tried, in order, when a specifier has no matching file.
var DefaultExtensions = []string{".js", ".mjs"}

// Config is the effective configuration of one compile.
type Config struct {
	Root         string // absolute project root
	ManifestPath string // empty when built without mako.toml
	Name         string
	Entry        string // entry specifier relative to Root
	OutDir       string
	OutFile      string
	Extensions   []string
	Aliases      map[string]string
	Metafile     bool
	GraphFile    bool
	Banner       bool
	Verify       bool
}

type manifestFile struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Build struct {
		Entry      string   `toml:"entry"`
		OutDir     string   `toml:"out_dir"`
		OutFile    string   `toml:"out_file"`
		Extensions []string `toml:"extensions"`
		Metafile   bool     `toml:"metafile"`
		GraphFile  bool     `toml:"graph_snapshot"`
		Banner     bool     `toml:"banner"`
		Verify     bool     `toml:"verify"`
	} `toml:"build"`
	Resolve struct {
		Aliases map[string]string `toml:"aliases"`
	} `toml:"resolve"`
}

// DefaultConfig returns the configuration used when root has no mako.toml:
// entry "index", output dist/bundle.js.
func DefaultConfig(root string) Config {
	return Config{
		Root:       root,
		Name:       filepath.Base(root),
		Entry:      "index",
		OutDir:     "dist",
		OutFile:    "bundle.js",
		Extensions: append([]string(nil), DefaultExtensions...),
		Banner:     true,
	}
}

// LoadConfig reads root/mako.toml when present and overlays it on DefaultConfig.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig(root)
	path := filepath.Join(root, ManifestName)
	var mf manifestFile
	meta, err := toml.DecodeFile(path, &mf)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.ManifestPath = path

	if name := strings.TrimSpace(mf.Package.Name); meta.IsDefined("package", "name") && name != "" {
		cfg.Name = name
	}
	if meta.IsDefined("build", "entry") {
		cfg.Entry = strings.TrimSpace(mf.Build.Entry)
	}
	if meta.IsDefined("build", "out_dir") {
		cfg.OutDir = strings.TrimSpace(mf.Build.OutDir)
	}
	if meta.IsDefined("build", "out_file") {
		cfg.OutFile = strings.TrimSpace(mf.Build.OutFile)
	}
	if meta.IsDefined("build", "extensions") {
		cfg.Extensions = mf.Build.Extensions
	}
	if meta.IsDefined("build", "banner") {
		cfg.Banner = mf.Build.Banner
	}
	cfg.Metafile = mf.Build.Metafile
	cfg.GraphFile = mf.Build.GraphFile
	cfg.Verify = mf.Build.Verify
	if meta.IsDefined("resolve", "aliases") {
		cfg.Aliases = mf.Resolve.Aliases
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a manifest or flags may have broken.
func (c Config) Validate() error {
	if c.Entry == "" {
		return fmt.Errorf("%w: entry is empty", ErrBuildSectionInvalid)
	}
	if c.OutFile == "" || strings.ContainsAny(c.OutFile, `/\`) {
		return fmt.Errorf("%w: out_file %q must be a plain file name", ErrBuildSectionInvalid, c.OutFile)
	}
	if c.OutDir == "" || filepath.IsAbs(c.OutDir) {
		return fmt.Errorf("%w: out_dir %q must be relative", ErrBuildSectionInvalid, c.OutDir)
	}
	if out := filepath.Join(c.Root, c.OutDir); !pathWithin(c.Root, out) || out == filepath.Clean(c.Root) {
		return fmt.Errorf("%w: out_dir %q must be a subdirectory of the project", ErrBuildSectionInvalid, c.OutDir)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrBuildSectionInvalid, ext)
		}
	}
	for from, to := range c.Aliases {
		if from == "" || to == "" {
			return fmt.Errorf("%w: alias %q -> %q", ErrResolveSectionInvalid, from, to)
		}
	}
	return nil
}

// OutputDir is the absolute directory the bundle is written to.
func (c Config) OutputDir() string {
	return filepath.Join(c.Root, c.OutDir)
}

// OutputPath is the absolute bundle path.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir(), c.OutFile)
}

func pathWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
