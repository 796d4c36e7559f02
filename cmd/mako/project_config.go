package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mako/internal/project"
)

// addBuildFlags registers the flags shared by every command that compiles.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("entry", "", "entry module relative to the root (default from mako.toml or \"index\")")
	cmd.Flags().String("out", "", "output directory relative to the root (default \"dist\")")
	cmd.Flags().String("out-file", "", "bundle file name (default \"bundle.js\")")
	cmd.Flags().Bool("metafile", false, "write meta.json next to the bundle")
	cmd.Flags().Bool("graph-snapshot", false, "write graph.msgpack next to the bundle")
	cmd.Flags().Bool("verify", false, "parse every generated module again")
	cmd.Flags().Bool("no-banner", false, "omit the bundle banner line")
	cmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
	cmd.Flags().Bool("timings", false, "print stage timings")
}

// loadConfig finds the project root (the directory holding mako.toml, else
// the argument or the working directory), loads its manifest and applies
// the command's flags on top.
func loadConfig(cmd *cobra.Command, args []string) (project.Config, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	root, _, err := project.FindProjectRoot(start)
	if err != nil {
		return project.Config{}, err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	cfg, err := project.LoadConfig(root)
	if err != nil {
		return project.Config{}, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("entry"); v != "" {
		cfg.Entry = v
	}
	if v, _ := flags.GetString("out"); v != "" {
		cfg.OutDir = v
	}
	if v, _ := flags.GetString("out-file"); v != "" {
		cfg.OutFile = v
	}
	if v, _ := flags.GetBool("metafile"); v {
		cfg.Metafile = true
	}
	if v, _ := flags.GetBool("graph-snapshot"); v {
		cfg.GraphFile = true
	}
	if v, _ := flags.GetBool("verify"); v {
		cfg.Verify = true
	}
	if v, _ := flags.GetBool("no-banner"); v {
		cfg.Banner = false
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
