package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mako/internal/buildpipeline"
	"mako/internal/diag"
	"mako/internal/diagfmt"
	"mako/internal/source"
)

func prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true, Context: 1}
}

func jsonOpts(cmd *cobra.Command) diagfmt.JSONOpts {
	limit, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	return diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true, Max: limit}
}

// diagnosticsJSON reports whether --diagnostics-format asks for JSON.
func diagnosticsJSON(cmd *cobra.Command) (bool, error) {
	format, err := cmd.Root().PersistentFlags().GetString("diagnostics-format")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pretty":
		return false, nil
	case "json":
		return true, nil
	}
	return false, fmt.Errorf("invalid --diagnostics-format value %q (expected pretty|json)", format)
}

// reportFailure prints a compile error with its source location and
// returns errReported; other errors are returned unchanged.
func reportFailure(cmd *cobra.Command, res buildpipeline.CompileResult, err error) error {
	e, ok := diag.AsError(err)
	if !ok {
		return err
	}
	var files *source.FileSet
	if res.Context != nil {
		files = res.Context.Files
	}
	d := e.Diagnostic()
	out := cmd.ErrOrStderr()
	if asJSON, _ := diagnosticsJSON(cmd); asJSON {
		bag := diag.NewBag(0)
		bag.Add(d)
		if res.Context != nil {
			for _, w := range res.Context.Warnings.Items() {
				bag.Add(w)
			}
		}
		if jerr := diagfmt.JSON(out, bag, files, jsonOpts(cmd)); jerr != nil {
			return jerr
		}
		return errReported
	}
	diagfmt.PrettyOne(out, &d, files, prettyOpts())
	dumpTraceRing(cmd)
	return errReported
}

// reportWarnings prints the compile warnings (import cycles) unless quiet.
func reportWarnings(cmd *cobra.Command, out io.Writer, res buildpipeline.CompileResult, quiet bool) {
	if quiet || res.Context == nil || res.Context.Warnings.Len() == 0 {
		return
	}
	bag := res.Context.Warnings
	bag.Sort()
	if asJSON, _ := diagnosticsJSON(cmd); asJSON {
		if err := diagfmt.JSON(out, bag, res.Context.Files, jsonOpts(cmd)); err != nil {
			logger.Warn("failed to write diagnostics", "err", err)
		}
		return
	}
	diagfmt.Pretty(out, bag, res.Context.Files, prettyOpts())
	io.WriteString(out, "\n")
}
