package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []ModuleID   // importers before their dependencies
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Blocked []ModuleID // узлы, не вошедшие в порядок из-за циклов
}

func toModuleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}

// ToposortKahn layers present modules so that every importer precedes the
// modules it imports. Modules on or behind a cycle end up in Blocked.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]ModuleID, 0, n)}

	active := 0
	var current []ModuleID
	for i := range n {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toModuleID(i))
		}
	}

	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		var next []ModuleID
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range n {
			if g.Present[i] && indeg[i] > 0 {
				topo.Blocked = append(topo.Blocked, toModuleID(i))
			}
		}
	}
	return topo
}

// Cycles returns the strongly connected components that contain a cycle,
// each sorted, ordered by their smallest member.
func Cycles(g Graph) [][]ModuleID {
	n := len(g.Edges)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack []ModuleID
		next  int
		out   [][]ModuleID
	)

	var connect func(v int)
	connect = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, toModuleID(v))
		onStack[v] = true
		for _, w := range g.Edges[v] {
			wi := int(w)
			if index[wi] < 0 {
				connect(wi)
				low[v] = min(low[v], low[wi])
			} else if onStack[wi] {
				low[v] = min(low[v], index[wi])
			}
		}
		if low[v] != index[v] {
			return
		}
		var comp []ModuleID
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[int(top)] = false
			comp = append(comp, top)
			if int(top) == v {
				break
			}
		}
		if len(comp) > 1 {
			slices.Sort(comp)
			out = append(out, comp)
		}
	}

	for v := range n {
		if index[v] < 0 {
			connect(v)
		}
	}
	slices.SortFunc(out, func(a, b []ModuleID) int { return int(a[0]) - int(b[0]) })
	return out
}
