// Package trace records what the bundler is doing while it does it.
//
// Enable it from the command line:
//
//	mako build --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes each event as it happens (stderr or a file)
//   - RingTracer: keeps the last N events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Every event has a scope: ScopeDriver for the command as a whole,
// ScopeStage for build, generate, render and write, ScopeModule for the
// per-module work of the graph builder. LevelPhase emits driver and stage
// events, LevelDetail and LevelDebug add module events.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "render")
//	defer span.End("")
//
// Spans started from the returned ctx nest under span.
package trace
