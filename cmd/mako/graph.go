package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mako/internal/buildpipeline"
	"mako/internal/observ"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [root]",
	Short: "Print the module graph of a project",
	Long: `Discover every module reachable from the entry without generating code and
print the graph as text, JSON or msgpack.`,
	Args: cobra.MaximumNArgs(1),
	RunE: graphExecution,
}

func init() {
	graphCmd.Flags().String("entry", "", "entry module relative to the root")
	graphCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	graphCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

func graphExecution(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or msgpack)", format)
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if format == "msgpack" && outPath == "" && isTerminal(os.Stdout) {
		return errors.New("refusing to write msgpack to a terminal; use --output or a pipe")
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	res, err := buildpipeline.Discover(cmd.Context(), &buildpipeline.CompileRequest{
		Config:      cfg,
		Timer:       observ.NewTimer(),
		MaxWarnings: maxDiagnostics,
	})
	if err != nil {
		return reportFailure(cmd, res, err)
	}
	if format == "text" {
		reportWarnings(cmd, os.Stderr, res, quiet)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(filepath.Clean(outPath))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	snap := buildpipeline.NewGraphSnapshot(res)
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "msgpack":
		data, err := snap.EncodeMsgpack()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	return writeGraphText(out, snap)
}

func writeGraphText(out io.Writer, snap buildpipeline.GraphSnapshot) error {
	paths := make(map[string]string, len(snap.Modules))
	var entry string
	for _, m := range snap.Modules {
		paths[m.ID] = m.Path
		if m.ID == snap.Entry {
			entry = m.Path
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "entry %s (%d modules, hash %s)\n", entry, len(snap.Modules), shortHash(snap.Hash))
	for _, m := range snap.Modules {
		fmt.Fprintf(&sb, "%s", m.Path)
		if len(m.Exports) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(m.Exports, ", "))
		}
		sb.WriteByte('\n')
		for _, imp := range m.Imports {
			fmt.Fprintf(&sb, "  %s -> %s\n", imp.Specifier, paths[imp.ID])
		}
	}
	for _, cycle := range snap.Cycles {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = paths[id]
		}
		fmt.Fprintf(&sb, "cycle: %s\n", strings.Join(names, " <-> "))
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
