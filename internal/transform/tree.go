// Package transform turns parsed module syntax into the runtime form the
// bundle executes: specifiers rewritten to canonical ids and ES module
// import/export replaced by require() calls and exports getters.
package transform

import (
	"github.com/tdewolff/parse/v2/js"

	"mako/internal/project"
	"mako/internal/source"
	"mako/internal/symbols"
)

// Phase records how far a Tree went through the pipeline.
type Phase uint8

const (
	PhaseParsed Phase = iota
	PhaseNormalized
	PhaseRuntime
)

func (p Phase) String() string {
	switch p {
	case PhaseParsed:
		return "parsed"
	case PhaseNormalized:
		return "normalized"
	case PhaseRuntime:
		return "runtime"
	}
	return "unknown"
}

// Tree is one module's syntax tree together with its bookkeeping.
type Tree struct {
	Module project.ModuleID
	File   source.FileID
	AST    *js.AST
	Scope  symbols.ScopeID
	Phase  Phase

	// helpers are spliced in at this statement index
	preludeEnd int
}

func (t *Tree) body() []js.IStmt {
	return t.AST.BlockStmt.List
}

func (t *Tree) setBody(list []js.IStmt) {
	t.AST.BlockStmt.List = list
}
