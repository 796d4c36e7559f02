package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mako/internal/buildpipeline"
	"mako/internal/observ"
	"mako/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [root]",
	Short: "Bundle a project",
	Long: `Bundle the project at [root] (default: the directory holding mako.toml, or the
current directory). The bundle is written to <root>/dist/bundle.js unless
mako.toml or the flags say otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: buildExecution,
}

func init() {
	addBuildFlags(buildCmd)
}

func buildExecution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	res, err := runBuild(cmd, cfg, "mako build", true)
	if err != nil {
		return err
	}
	logger.Info("run it with: mako run", "or", "node "+formatPathForOutput(mustGetwd(), res.OutputPath))
	return nil
}

// runBuild compiles and writes cfg's bundle, printing warnings, timings and,
// with announce, the output paths. A failed compile is reported before
// returning.
func runBuild(cmd *cobra.Command, cfg project.Config, title string, announce bool) (buildpipeline.BuildResult, error) {
	flags := cmd.Flags()
	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return buildpipeline.BuildResult{}, err
	}
	showTimings, _ := flags.GetBool("timings")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return buildpipeline.BuildResult{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	req := &buildpipeline.CompileRequest{
		Config:      cfg,
		Timer:       observ.NewTimer(),
		MaxWarnings: maxDiagnostics,
	}
	if verbose {
		req.Progress = buildpipeline.SinkFunc(logEvent)
	}
	logger.Debug("building", "root", cfg.Root, "entry", cfg.Entry, "manifest", cfg.ManifestPath != "")

	var res buildpipeline.BuildResult
	if shouldUseTUI(mode, quiet, verbose) {
		res, err = runBuildWithUI(cmd.Context(), title, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		if showTimings {
			printStageTimings(os.Stderr, res.Timings, false)
		}
		return res, reportFailure(cmd, res.CompileResult, err)
	}

	reportWarnings(cmd, os.Stderr, res.CompileResult, quiet)
	if showTimings {
		printStageTimings(os.Stdout, res.Timings, false)
		if verbose {
			printPhaseTimings(os.Stdout, res.Timer)
		}
	}
	if announce && !quiet {
		wd := mustGetwd()
		fmt.Fprintf(os.Stdout, "built %s (%d modules, %d bytes)\n",
			formatPathForOutput(wd, res.OutputPath), res.Graph.Len(), len(res.Bundle))
		for _, side := range []string{res.MetafilePath, res.GraphPath} {
			if side != "" {
				fmt.Fprintf(os.Stdout, "wrote %s\n", formatPathForOutput(wd, side))
			}
		}
	}
	return res, nil
}

func logEvent(ev buildpipeline.Event) {
	if ev.Status == buildpipeline.StatusQueued {
		return
	}
	if ev.File == "" {
		logger.Debug(string(ev.Stage), "status", ev.Status, "elapsed", ev.Elapsed)
		return
	}
	logger.Debug(string(ev.Stage), "module", ev.File, "status", ev.Status)
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
