// Package generate turns every module of a built graph into the code of its
// runtime factory.
package generate

import (
	"context"
	"fmt"
	"slices"

	"mako/internal/compile"
	"mako/internal/driver"
	"mako/internal/project"
	"mako/internal/trace"
	"mako/internal/transform"
)

// Table maps canonical module ids to generated factory bodies.
type Table struct {
	Entry project.ModuleID
	Code  map[project.ModuleID]string
}

// IDs returns the table keys, sorted.
func (t *Table) IDs() []project.ModuleID {
	ids := make([]project.ModuleID, 0, len(t.Code))
	for id := range t.Code {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *Table) Len() int { return len(t.Code) }

// Bytes is the total size of the generated code.
func (t *Table) Bytes() int {
	n := 0
	for _, code := range t.Code {
		n += len(code)
	}
	return n
}

// Emitter prints one runtime-form tree.
type Emitter interface {
	Emit(t *transform.Tree) (string, error)
}

// Generate rewrites, transforms and prints every module of g in sorted id
// order. Each tree is consumed: after Generate the graph's trees are in
// runtime form and must not be generated again.
func Generate(ctx context.Context, cc *compile.Context, g *driver.Graph, em Emitter) (tab *Table, err error) {
	tracer := trace.FromContext(ctx)
	ctx, span := trace.Start(ctx, trace.ScopeStage, "generate")
	defer func() {
		if tab != nil {
			span.End(fmt.Sprintf("modules=%d bytes=%d", tab.Len(), tab.Bytes()))
		} else {
			span.End("failed")
		}
	}()

	out := &Table{Entry: g.Entry, Code: make(map[project.ModuleID]string, g.Len())}
	for _, id := range g.IDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := g.Modules[id]
		code, err := module(m, cc, em)
		if err != nil {
			return nil, err
		}
		out.Code[id] = code
		trace.Point(tracer, trace.ScopeModule, "generated", id.String())
	}
	return out, nil
}

func module(m *driver.Module, cc *compile.Context, em Emitter) (string, error) {
	err := transform.RewriteSpecifiers(m.Tree, func(spec string) (string, bool) {
		id, ok := m.Deps[spec]
		return id.String(), ok
	})
	if err != nil {
		return "", err
	}
	tree, err := transform.ToRuntimeForm(m.Tree, cc)
	if err != nil {
		return "", err
	}
	return em.Emit(tree)
}
