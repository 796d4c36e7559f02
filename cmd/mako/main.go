// Package main implements the mako CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mako/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mako [root]",
	Short: "Bundle JavaScript modules into a single script",
	Long: `mako follows the imports of an entry module, rewrites every module into a
CommonJS-style factory and writes one self-contained bundle. Without a
subcommand it builds the project in the current directory.`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              buildExecution,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
	PersistentPostRun: func(*cobra.Command, []string) { teardownCommand() },
}

// main registers subcommands and persistent flags and runs the root command.
// Any error exits with status 1; `mako run` may pick another code.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every build step")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of warnings to show")
	rootCmd.PersistentFlags().String("diagnostics-format", "pretty", "diagnostics output (pretty|json)")
	rootCmd.PersistentFlags().String("trace", "", "write a build trace to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 = off)")
	addBuildFlags(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	teardownCommand()
	if err == nil {
		return
	}
	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "mako: %v\n", err)
	}
	os.Exit(1)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
