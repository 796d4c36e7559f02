// Package compile holds the state shared by every phase of one compile
// invocation. A Context is created at compile start, passed by pointer to the
// builder, the transform stages, the emitter and the generator, and dropped
// when the compile returns. Nothing in it is global.
package compile

import (
	"mako/internal/diag"
	"mako/internal/source"
	"mako/internal/symbols"
)

// Context is the per-compile shared state.
type Context struct {
	Root     string
	Files    *source.FileSet
	Comments *CommentStore
	Symbols  *symbols.Arena
	Helpers  *HelperRegistry
	// Warnings collects non-fatal diagnostics (import cycles).
	Warnings *diag.Bag
}

// Option configures a Context.
type Option func(*Context)

// WithWarningLimit caps the number of warnings kept.
func WithWarningLimit(n int) Option {
	return func(c *Context) {
		c.Warnings = diag.NewBag(n)
	}
}

// NewContext creates a clean context rooted at root.
func NewContext(root string, opts ...Option) *Context {
	c := &Context{
		Root:     root,
		Files:    source.NewFileSet(root),
		Comments: NewCommentStore(),
		Symbols:  symbols.NewArena(),
		Helpers:  NewHelperRegistry(),
		Warnings: diag.NewBag(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reporter returns a Reporter feeding Warnings.
func (c *Context) Reporter() diag.Reporter {
	return diag.BagReporter{Bag: c.Warnings}
}
