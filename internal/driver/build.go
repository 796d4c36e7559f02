// Package driver builds the module graph: it loads the entry, follows every
// import and re-export, and records the canonical id each specifier
// resolved to.
package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/observ"
	"mako/internal/project"
	"mako/internal/resolve"
	"mako/internal/source"
	"mako/internal/trace"
	"mako/internal/transform"
)

// BuildOptions tune Build.
type BuildOptions struct {
	Observer Observer
	// Timer, if set, receives the summed duration of each stage.
	Timer *observ.Timer
}

// Build discovers the transitive closure of entry. entry is a path relative
// to the compile root (or absolute); it is resolved like a relative import
// from the root. The first failure aborts the build.
func Build(ctx context.Context, cc *compile.Context, res resolve.Resolver, entry string) (*Graph, error) {
	return BuildWithOptions(ctx, cc, res, entry, BuildOptions{})
}

// BuildWithOptions is Build with an observer and a timer.
func BuildWithOptions(ctx context.Context, cc *compile.Context, res resolve.Resolver, entry string, opts BuildOptions) (g *Graph, err error) {
	tracer := trace.FromContext(ctx)
	ctx, span := trace.Start(ctx, trace.ScopeStage, "build_graph")
	defer func() {
		if g != nil {
			span.End(fmt.Sprintf("modules=%d", g.Len()))
		} else {
			span.End("failed")
		}
	}()

	entryID, err := res.Resolve(cc.Root, entrySpecifier(entry))
	if err != nil {
		rerr := diag.NewResolutionError("", entry, err)
		rerr.Code = diag.ResEntryMissing
		return nil, rerr
	}

	b := &builder{
		cc:     cc,
		res:    res,
		opts:   opts,
		tracer: tracer,
		parent: span.ID(),
		graph:  newGraph(entryID),
		queue:  NewQueue(),
	}
	b.queue.Push(entryID)
	b.notify(Event{Module: entryID, Stage: StageDiscovered})

	for b.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, _ := b.queue.Pop()
		if b.graph.Has(id) {
			continue
		}
		if err := b.visit(id); err != nil {
			return nil, err
		}
	}

	if opts.Timer != nil {
		note := fmt.Sprintf("%d modules", b.graph.Len())
		opts.Timer.Add("load", b.loadDur, note)
		opts.Timer.Add("parse", b.parseDur, note)
		opts.Timer.Add("resolve", b.resolveDur, note)
	}
	return b.graph, nil
}

// entrySpecifier makes a root-relative entry look like a relative import so
// it is never mistaken for a package name.
func entrySpecifier(entry string) string {
	entry = filepath.ToSlash(entry)
	if filepath.IsAbs(filepath.FromSlash(entry)) || strings.HasPrefix(entry, "./") || strings.HasPrefix(entry, "../") {
		return entry
	}
	return "./" + entry
}

type builder struct {
	cc     *compile.Context
	res    resolve.Resolver
	opts   BuildOptions
	tracer trace.Tracer
	parent uint64
	graph  *Graph
	queue  *Queue

	loadDur, parseDur, resolveDur time.Duration
}

func (b *builder) notify(ev Event) {
	if b.opts.Observer != nil {
		b.opts.Observer(ev)
	}
}

func (b *builder) visit(id project.ModuleID) error {
	span := trace.Begin(b.tracer, trace.ScopeModule, "module", b.parent)
	span.WithExtra("id", id.String())
	defer span.End("")

	start := time.Now()
	fid, err := b.cc.Files.Load(filepath.FromSlash(id.String()))
	if err != nil {
		return diag.NewLoadError(id.String(), err)
	}
	f := b.cc.Files.Get(fid)
	b.loadDur += time.Since(start)
	b.notify(Event{Module: id, Stage: StageLoaded, Elapsed: time.Since(start)})

	start = time.Now()
	tree, err := transform.Normalize(b.cc, id, f)
	if err != nil {
		return err
	}
	deps, err := transform.Dependencies(tree, f.Content)
	if err != nil {
		return err
	}
	b.parseDur += time.Since(start)
	b.notify(Event{Module: id, Stage: StageParsed, Elapsed: time.Since(start)})

	start = time.Now()
	m := &Module{
		ID:    id,
		File:  fid,
		Tree:  tree,
		Deps:  make(map[string]project.ModuleID, len(deps)),
		Order: make([]string, 0, len(deps)),
	}
	dir := id.Dir()
	for _, dep := range deps {
		target, err := b.res.Resolve(dir, dep.Specifier)
		if err != nil {
			rerr := diag.NewResolutionError(id.String(), dep.Specifier, err)
			if dep.Offset >= 0 {
				rerr.At(specifierSpan(f, dep))
			}
			return rerr
		}
		m.Deps[dep.Specifier] = target
		m.Order = append(m.Order, dep.Specifier)
		if dep.Reexport {
			if m.reexports == nil {
				m.reexports = make(map[string]bool)
			}
			m.reexports[dep.Specifier] = true
		}
	}
	b.resolveDur += time.Since(start)
	b.graph.insert(m)
	b.notify(Event{Module: id, Stage: StageResolved, Deps: len(deps), Elapsed: time.Since(start)})

	// reversed so the LIFO queue visits dependencies in source order
	for i := len(m.Order) - 1; i >= 0; i-- {
		target := m.Deps[m.Order[i]]
		if b.graph.Has(target) {
			continue
		}
		if b.queue.Push(target) {
			b.notify(Event{Module: target, Stage: StageDiscovered})
		}
	}
	return nil
}

func specifierSpan(f *source.File, dep transform.Dependency) source.Span {
	start := uint32(dep.Offset)       // #nosec G115 -- offset within file content
	end := start + uint32(dep.Length) // #nosec G115
	if int(end) > len(f.Content) {
		end = uint32(len(f.Content)) // #nosec G115
	}
	return source.Span{File: f.ID, Start: start, End: end}
}
