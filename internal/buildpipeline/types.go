package buildpipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads a module from disk.
	StageLoad Stage = "load"
	// StageParse parses and normalizes a module.
	StageParse Stage = "parse"
	// StageResolve resolves a module's specifiers.
	StageResolve Stage = "resolve"
	// StageGenerate rewrites and prints every module.
	StageGenerate Stage = "generate"
	// StageRender assembles the bundle text.
	StageRender Stage = "render"
	// StageWrite writes the bundle and side files.
	StageWrite Stage = "write"
	// StageRun executes the bundle.
	StageRun Stage = "run"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued" // discovered, waiting in the builder queue
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a module (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds the wall time of each stage that ran. The zero value is
// ready to use.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration, 7)
	}
	t.stages[stage] = dur
}

// Has reports whether stage ran; a stage can run in zero time.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration { return t.stages[stage] }

func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
