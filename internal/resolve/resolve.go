// Package resolve maps import specifiers to canonical module ids.
package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mako/internal/project"
)

var (
	// ErrNotFound: no file matches the specifier.
	ErrNotFound = errors.New("module not found")
	// ErrEmptySpecifier: the specifier is the empty string.
	ErrEmptySpecifier = errors.New("empty specifier")
	// ErrBadPackage: a package.json could not be decoded.
	ErrBadPackage = errors.New("invalid package.json")
)

// Resolver maps (importer directory, raw specifier) to a canonical id. It
// must be deterministic: the same inputs over the same file system yield
// the same id.
type Resolver interface {
	Resolve(importerDir, specifier string) (project.ModuleID, error)
}

// FS resolves against the local file system.
type FS struct {
	// Root anchors alias targets.
	Root string
	// Extensions are appended, in order, when a path has no exact match.
	Extensions []string
	// Aliases rewrite a specifier prefix to a path relative to Root.
	Aliases map[string]string

	aliasKeys []string
}

// New returns a resolver configured from cfg.
func New(cfg project.Config) *FS {
	return NewFS(cfg.Root, cfg.Extensions, cfg.Aliases)
}

func NewFS(root string, extensions []string, aliases map[string]string) *FS {
	if len(extensions) == 0 {
		extensions = project.DefaultExtensions
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	// longest prefix wins; ties broken lexically
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &FS{Root: root, Extensions: extensions, Aliases: aliases, aliasKeys: keys}
}

// Resolve implements Resolver.
func (r *FS) Resolve(importerDir, specifier string) (project.ModuleID, error) {
	if specifier == "" {
		return "", ErrEmptySpecifier
	}
	spec := specifier
	if target, ok := r.alias(spec); ok {
		spec = target
	}
	var (
		path string
		err  error
	)
	switch {
	case isRelative(spec):
		path, err = r.resolvePath(filepath.Join(importerDir, filepath.FromSlash(spec)))
	case filepath.IsAbs(filepath.FromSlash(spec)):
		path, err = r.resolvePath(filepath.FromSlash(spec))
	default:
		path, err = r.resolveBare(importerDir, spec)
	}
	if err != nil {
		return "", err
	}
	return project.Canonicalize(path)
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func (r *FS) alias(spec string) (string, bool) {
	for _, prefix := range r.aliasKeys {
		if rest, ok := strings.CutPrefix(spec, prefix); ok {
			target := filepath.Join(r.Root, filepath.FromSlash(r.Aliases[prefix]), filepath.FromSlash(rest))
			return filepath.ToSlash(target), true
		}
	}
	return "", false
}

// resolvePath tries the exact file, then each extension, then the
// directory's package entry and index file.
func (r *FS) resolvePath(p string) (string, error) {
	if isFile(p) {
		return p, nil
	}
	for _, ext := range r.Extensions {
		if isFile(p + ext) {
			return p + ext, nil
		}
	}
	if isDir(p) {
		return r.resolveDir(p)
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.ToSlash(p))
}

func (r *FS) resolveDir(dir string) (string, error) {
	pkg, err := readPackage(dir)
	if err != nil {
		return "", err
	}
	for _, field := range []string{pkg.Module, pkg.Main} {
		if field == "" {
			continue
		}
		if p, err := r.resolvePath(filepath.Join(dir, filepath.FromSlash(field))); err == nil {
			return p, nil
		}
	}
	for _, ext := range r.Extensions {
		p := filepath.Join(dir, "index"+ext)
		if isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, filepath.ToSlash(dir))
}

// resolveBare looks up node_modules directories from importerDir upwards.
func (r *FS) resolveBare(importerDir, spec string) (string, error) {
	name, sub := splitPackage(spec)
	for dir := importerDir; ; {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if isDir(candidate) {
			if sub != "" {
				return r.resolvePath(filepath.Join(candidate, filepath.FromSlash(sub)))
			}
			return r.resolveDir(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: package %s", ErrNotFound, name)
}

// splitPackage separates "@scope/name/sub/path" into package name and subpath.
func splitPackage(spec string) (name, sub string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			sub = parts[2]
		}
		return name, sub
	}
	name, sub, _ = strings.Cut(spec, "/")
	return name, sub
}

type packageJSON struct {
	Module string `json:"module"`
	Main   string `json:"main"`
}

func readPackage(dir string) (packageJSON, error) {
	var pkg packageJSON
	// #nosec G304 -- dir comes from resolution of a project import
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return pkg, nil
		}
		return pkg, err
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return pkg, fmt.Errorf("%w: %s: %w", ErrBadPackage, filepath.ToSlash(dir), err)
	}
	return pkg, nil
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
