package main

import (
	"fmt"
	"io"
	"time"

	"mako/internal/buildpipeline"
	"mako/internal/observ"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings, includeRun bool) {
	if out == nil {
		return
	}
	if graph := timings.Sum(buildpipeline.StageLoad, buildpipeline.StageParse, buildpipeline.StageResolve); graph > 0 {
		fmt.Fprintf(out, "graph %.1f ms (load %.1f, parse %.1f, resolve %.1f)\n",
			toMillis(graph),
			toMillis(timings.Duration(buildpipeline.StageLoad)),
			toMillis(timings.Duration(buildpipeline.StageParse)),
			toMillis(timings.Duration(buildpipeline.StageResolve)))
	}
	if timings.Has(buildpipeline.StageGenerate) {
		fmt.Fprintf(out, "generated %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageGenerate)))
	}
	if timings.Has(buildpipeline.StageRender) || timings.Has(buildpipeline.StageWrite) {
		fmt.Fprintf(out, "written %.1f ms\n", toMillis(timings.Sum(buildpipeline.StageRender, buildpipeline.StageWrite)))
	}
	if includeRun && timings.Has(buildpipeline.StageRun) {
		fmt.Fprintf(out, "ran %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageRun)))
	}
}

// printPhaseTimings prints the detailed per-phase table of --verbose runs.
func printPhaseTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
