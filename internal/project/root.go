package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the project configuration file looked up by the CLI.
const ManifestName = "mako.toml"

// FindManifest walks up from startDir to locate mako.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory holding mako.toml, or startDir itself
// (made absolute) when there is none.
func FindProjectRoot(startDir string) (root string, hasManifest bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil {
		return "", false, err
	}
	if ok {
		return filepath.Dir(manifestPath), true, nil
	}
	if startDir == "" {
		startDir = "."
	}
	root, err = filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	return root, false, nil
}
