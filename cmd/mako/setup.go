package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	logger  = log.NewWithOptions(os.Stderr, log.Options{Prefix: "mako"})
	cleanup []func()
)

// errReported marks an error whose details were already printed.
var errReported = errors.New("build failed")

// exitError carries the status `mako run` exits with when the script calls
// process.exit with a non-zero code.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// setupCommand applies the persistent flags: color, log level and tracing.
func setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return err
	}
	useColor, err := colorEnabled(colorFlag, os.Stderr)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	switch {
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	case verbose:
		logger.SetLevel(log.DebugLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if _, err := diagnosticsJSON(cmd); err != nil {
		return err
	}

	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, stopTrace)
	return nil
}

func teardownCommand() {
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	cleanup = nil
}

func colorEnabled(value string, f *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return isTerminal(f), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
