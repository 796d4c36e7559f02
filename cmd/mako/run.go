package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mako/internal/buildpipeline"
	"mako/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [root] [-- args...]",
	Short: "Bundle a project and execute the bundle",
	Long: `Bundle the project like "mako build", then execute the bundle in the
embedded JavaScript engine. console output goes to stdout and stderr;
arguments after -- are visible as process.argv.slice(2).`,
	Args: cobra.ArbitraryArgs,
	RunE: runExecution,
}

func init() {
	addBuildFlags(runCmd)
}

func runExecution(cmd *cobra.Command, args []string) error {
	rootArgs, scriptArgs := splitArgsAtDash(cmd, args)
	if len(rootArgs) > 1 {
		return errors.New("run takes at most one root before --")
	}
	cfg, err := loadConfig(cmd, rootArgs)
	if err != nil {
		return err
	}
	res, err := runBuild(cmd, cfg, "mako run", false)
	if err != nil {
		return err
	}

	start := time.Now()
	machine := vm.New(vm.Options{Stdout: os.Stdout, Stderr: os.Stderr, Argv: scriptArgs})
	runErr := machine.Run(cmd.Context(), res.OutputPath, res.Bundle)
	res.Timings.Set(buildpipeline.StageRun, time.Since(start))
	if showTimings, _ := cmd.Flags().GetBool("timings"); showTimings {
		printStageTimings(os.Stderr, res.Timings, true)
	}
	if runErr != nil {
		var rerr *vm.RuntimeError
		if errors.As(runErr, &rerr) && rerr.Stack != "" {
			logger.Error(rerr.Kind.String(), "stack", rerr.Stack)
			return errReported
		}
		return runErr
	}
	if machine.Exited && machine.ExitCode != 0 {
		return exitError{code: machine.ExitCode}
	}
	return nil
}

// splitArgsAtDash separates positional arguments from the ones after --.
func splitArgsAtDash(cmd *cobra.Command, args []string) (before, after []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}
