package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mako/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new mako project",
	Long: `Initialize a new mako project by creating a manifest (mako.toml) and a
sample entry module (index.js). If [path|name] is omitted, initializes the
current directory. A missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit refuses to touch a directory that already has mako.toml; an
// existing index.js is kept.
func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) > 0 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "mako-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	entryPath := filepath.Join(target, "index.js")
	createdEntry := false
	if _, err := os.Stat(entryPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(entryPath, []byte(defaultEntry), 0o600); err != nil {
			return fmt.Errorf("failed to write index.js: %w", err)
		}
		if err := os.WriteFile(filepath.Join(target, "greeting.js"), []byte(defaultGreeting), 0o600); err != nil {
			return fmt.Errorf("failed to write greeting.js: %w", err)
		}
		createdEntry = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized mako project in %s\n", formatPathForOutput(wd, target))
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdEntry {
		fmt.Fprintln(out, "  - index.js")
		fmt.Fprintln(out, "  - greeting.js")
	} else {
		fmt.Fprintln(out, "  - index.js (existing)")
	}
	return nil
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# mako project manifest
[package]
name = %q

[build]
entry = "index"
out_dir = "dist"
out_file = "bundle.js"
extensions = [".js", ".mjs"]
banner = true
metafile = false
`, name)
}

const defaultEntry = `import {greet} from './greeting';

console.log(greet('mako'));
`

const defaultGreeting = `export function greet(name) {
    return 'hello, ' + name;
}
`
