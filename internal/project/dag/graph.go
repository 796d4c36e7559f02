package dag

import (
	"fmt"
	"slices"

	"mako/internal/diag"
	"mako/internal/project"
)

type Graph struct {
	Edges   [][]ModuleID // Edges[importer] = dependencies, sorted, unique
	Indeg   []int        // число импортёров среди присутствующих модулей
	Present []bool       // модуль есть в метаданных, а не только упомянут в импорте
}

// BuildGraph turns metas into adjacency lists. A module importing itself is
// reported as a warning and left out of Edges; it is legal at runtime.
func BuildGraph(idx ModuleIndex, metas []project.ModuleMeta, reporter diag.Reporter) Graph {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	for _, meta := range metas {
		if id, ok := idx.NameToID[meta.ID]; ok {
			g.Present[int(id)] = true
		}
	}

	for _, meta := range metas {
		from, ok := idx.NameToID[meta.ID]
		if !ok {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(meta.Imports))
		for _, dep := range meta.Imports {
			to, ok := idx.NameToID[dep.ID]
			if !ok {
				continue
			}
			if to == from {
				if reporter != nil {
					msg := fmt.Sprintf("module %s imports itself via %q", meta.Path, dep.Specifier)
					diag.ReportWarning(reporter, diag.GraphSelfImport, dep.Span, msg).Emit()
				}
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[int(from)] = append(g.Edges[int(from)], to)
			if g.Present[int(to)] {
				g.Indeg[int(to)]++
			}
		}
		slices.Sort(g.Edges[int(from)])
	}
	return g
}
