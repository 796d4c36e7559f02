package driver

import (
	"slices"

	"mako/internal/project"
	"mako/internal/source"
	"mako/internal/transform"
)

// Module is one graph node. The tree belongs to the module; nothing else
// holds it.
type Module struct {
	ID   project.ModuleID
	File source.FileID
	Tree *transform.Tree
	// Deps maps each raw specifier to the id it resolved to.
	Deps map[string]project.ModuleID
	// Order lists the specifiers in first-appearance source order.
	Order []string
	// reexports holds specifiers that only appear in export-from
	// declarations.
	reexports map[string]bool
}

// ReexportOnly reports whether spec is requested only to re-export names.
func (m *Module) ReexportOnly(spec string) bool {
	return m.reexports[spec]
}

// Graph is the set of modules reachable from the entry. It only grows while
// building; after a successful Build every dependency id is a key.
type Graph struct {
	Entry     project.ModuleID
	Modules   map[project.ModuleID]*Module
	Discovery []project.ModuleID
}

func newGraph(entry project.ModuleID) *Graph {
	return &Graph{Entry: entry, Modules: make(map[project.ModuleID]*Module)}
}

func (g *Graph) insert(m *Module) {
	g.Modules[m.ID] = m
	g.Discovery = append(g.Discovery, m.ID)
}

// Has reports whether id is a node.
func (g *Graph) Has(id project.ModuleID) bool {
	_, ok := g.Modules[id]
	return ok
}

// Get returns the module with id.
func (g *Graph) Get(id project.ModuleID) (*Module, bool) {
	m, ok := g.Modules[id]
	return m, ok
}

func (g *Graph) Len() int { return len(g.Modules) }

// IDs returns every node id, sorted.
func (g *Graph) IDs() []project.ModuleID {
	ids := make([]project.ModuleID, 0, len(g.Modules))
	for id := range g.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Closed reports whether every recorded dependency is itself a node.
func (g *Graph) Closed() bool {
	for _, m := range g.Modules {
		for _, dep := range m.Deps {
			if !g.Has(dep) {
				return false
			}
		}
	}
	return true
}
