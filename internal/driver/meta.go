package driver

import (
	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/project/dag"
	"mako/internal/source"
)

// Metas summarizes every module, sorted by id, with module hashes filled in.
func (g *Graph) Metas(cc *compile.Context) []project.ModuleMeta {
	metas := make([]project.ModuleMeta, 0, g.Len())
	for _, id := range g.IDs() {
		m := g.Modules[id]
		meta := project.ModuleMeta{
			ID:      id,
			Path:    cc.Files.Rel(id.String()),
			Exports: cc.Symbols.ExportNames(id.String()),
		}
		if f := cc.Files.Get(m.File); f != nil {
			meta.Bytes = len(f.Content)
			meta.ContentHash = project.Digest(f.Hash)
			meta.Span = source.Span{File: f.ID, End: uint32(len(f.Content))} // #nosec G115 -- bounded by FileSet
		}
		for _, spec := range m.Order {
			meta.Imports = append(meta.Imports, project.ImportMeta{Specifier: spec, ID: m.Deps[spec]})
		}
		metas = append(metas, meta)
	}
	project.ComputeModuleHashes(metas)
	return metas
}

// Cycles lists the import cycles of the graph, each sorted by id, and
// reports one warning per cycle to reporter (which may be nil). Cycles are
// legal; the runtime loader handles them.
func Cycles(g *Graph, cc *compile.Context, reporter diag.Reporter) [][]project.ModuleID {
	metas := g.Metas(cc)
	idx := dag.BuildIndex(metas)
	graph := dag.BuildGraph(idx, metas, reporter)
	cycles := dag.Cycles(graph)
	dag.ReportCycles(idx, metas, cycles, reporter)

	out := make([][]project.ModuleID, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, idx.Names(c))
	}
	return out
}
