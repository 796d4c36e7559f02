package driver

import (
	"time"

	"mako/internal/project"
)

// Stage names one step of processing a module.
type Stage uint8

const (
	StageDiscovered Stage = iota
	StageLoaded
	StageParsed
	StageResolved
)

func (s Stage) String() string {
	switch s {
	case StageDiscovered:
		return "discovered"
	case StageLoaded:
		return "loaded"
	case StageParsed:
		return "parsed"
	case StageResolved:
		return "resolved"
	}
	return "unknown"
}

// Event reports that a module finished a stage.
type Event struct {
	Module  project.ModuleID
	Stage   Stage
	Deps    int // for StageResolved
	Elapsed time.Duration
}

// Observer receives builder events. It runs on the builder goroutine and
// must not block.
type Observer func(Event)
