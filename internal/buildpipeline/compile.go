// Package buildpipeline orchestrates one compile: module graph, generation,
// rendering and output.
package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"mako/internal/bundle"
	"mako/internal/compile"
	"mako/internal/driver"
	"mako/internal/emit"
	"mako/internal/generate"
	"mako/internal/observ"
	"mako/internal/project"
	"mako/internal/resolve"
	"mako/internal/trace"
)

// CompileRequest configures the shared compilation pipeline.
type CompileRequest struct {
	Config   project.Config
	Progress ProgressSink
	// Timer receives per-phase durations; one is created when nil.
	Timer *observ.Timer
	// MaxWarnings caps the warnings kept in the compile context (0 = all).
	MaxWarnings int
	// Resolver overrides the filesystem resolver built from Config.
	Resolver resolve.Resolver
}

// CompileResult captures compilation artefacts and stage timings.
type CompileResult struct {
	Context *compile.Context
	Graph   *driver.Graph
	Cycles  [][]project.ModuleID
	Table   *generate.Table
	Bundle  string
	Timings Timings
	Timer   *observ.Timer
}

// Discover builds the module graph and reports its cycles as warnings.
// Nothing is generated.
func Discover(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Config.Root == "" {
		return result, fmt.Errorf("missing project root")
	}
	result.Timer = req.Timer
	if result.Timer == nil {
		result.Timer = observ.NewTimer()
	}
	result.Context = compile.NewContext(req.Config.Root, compile.WithWarningLimit(req.MaxWarnings))
	res := req.Resolver
	if res == nil {
		res = resolve.New(req.Config)
	}

	progress := &moduleProgress{sink: req.Progress, root: req.Config.Root, stage: StageLoad}
	g, err := driver.BuildWithOptions(ctx, result.Context, res, req.Config.Entry, driver.BuildOptions{
		Observer: progress.observe,
		Timer:    result.Timer,
	})
	if err != nil {
		emitStage(req.Progress, progress.stage, StatusError, err, 0)
		return result, err
	}
	result.Graph = g
	recordGraphTimings(&result)

	idx := result.Timer.Begin("cycles")
	result.Cycles = driver.Cycles(g, result.Context, result.Context.Reporter())
	result.Timer.End(idx, fmt.Sprintf("%d cycles", len(result.Cycles)))
	return result, nil
}

// Compile discovers the graph, generates every module and renders the
// bundle in memory. Build writes it.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	result, err := Discover(ctx, req)
	if err != nil {
		return result, err
	}
	cfg := req.Config

	genStart := time.Now()
	emitStage(req.Progress, StageGenerate, StatusWorking, nil, 0)
	idx := result.Timer.Begin("generate")
	tab, err := generate.Generate(ctx, result.Context, result.Graph, emit.Emitter{Verify: cfg.Verify})
	if err != nil {
		emitStage(req.Progress, StageGenerate, StatusError, err, 0)
		return result, err
	}
	result.Timer.End(idx, fmt.Sprintf("%d bytes", tab.Bytes()))
	result.Table = tab
	result.Timings.Set(StageGenerate, time.Since(genStart))
	emitStage(req.Progress, StageGenerate, StatusDone, nil, time.Since(genStart))

	renderStart := time.Now()
	_, span := trace.Start(ctx, trace.ScopeStage, "render")
	idx = result.Timer.Begin("render")
	out, err := bundle.Render(tab, result.Graph.Entry, bundle.Options{
		Banner: cfg.Banner,
		Legal:  result.Context.Comments.Legal(),
	})
	if err != nil {
		span.End("failed")
		emitStage(req.Progress, StageRender, StatusError, err, 0)
		return result, err
	}
	span.End(fmt.Sprintf("bytes=%d", len(out)))
	result.Timer.End(idx, fmt.Sprintf("%d bytes", len(out)))
	result.Bundle = out
	result.Timings.Set(StageRender, time.Since(renderStart))
	return result, nil
}

// moduleProgress turns builder events into per-module progress events.
type moduleProgress struct {
	sink  ProgressSink
	root  string
	stage Stage
}

func (p *moduleProgress) observe(ev driver.Event) {
	switch ev.Stage {
	case driver.StageDiscovered:
		p.stage = StageLoad
		p.emit(ev, StageLoad, StatusQueued)
	case driver.StageLoaded:
		p.stage = StageParse
		p.emit(ev, StageParse, StatusWorking)
	case driver.StageParsed:
		p.stage = StageResolve
		p.emit(ev, StageResolve, StatusWorking)
	case driver.StageResolved:
		p.emit(ev, StageResolve, StatusDone)
	}
}

func (p *moduleProgress) emit(ev driver.Event, stage Stage, status Status) {
	if p.sink == nil {
		return
	}
	p.sink.OnEvent(Event{
		File:    displayPath(p.root, ev.Module.String()),
		Stage:   stage,
		Status:  status,
		Elapsed: ev.Elapsed,
	})
}

func recordGraphTimings(result *CompileResult) {
	for stage, phase := range map[Stage]string{StageLoad: "load", StageParse: "parse", StageResolve: "resolve"} {
		result.Timings.Set(stage, result.Timer.Total(phase))
	}
}

func emitStage(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
