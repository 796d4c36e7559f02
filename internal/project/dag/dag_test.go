package dag

import (
	"strings"
	"testing"

	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/source"
)

func meta(id string, deps ...string) project.ModuleMeta {
	m := project.ModuleMeta{ID: project.ModuleID(id), Path: strings.TrimPrefix(id, "/p/")}
	for _, d := range deps {
		m.Imports = append(m.Imports, project.ImportMeta{Specifier: "./" + strings.TrimPrefix(d, "/p/"), ID: project.ModuleID(d)})
	}
	return m
}

func names(idx ModuleIndex, ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range idx.Names(ids) {
		out[i] = strings.TrimPrefix(string(id), "/p/")
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	idx := BuildIndex([]project.ModuleMeta{meta("/p/main.js", "/p/lib/math.js", "/p/lib/util.js"), meta("/p/lib/util.js")})
	want := []string{"lib/math.js", "lib/util.js", "main.js"}
	got := names(idx, []ModuleID{0, 1, 2})
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDToName = %v; want %v", got, want)
		}
	}
	if id := idx.NameToID["/p/main.js"]; id != 2 {
		t.Fatalf("NameToID[main] = %d", id)
	}
}

func TestBuildGraphDedupsAndSkipsSelfImports(t *testing.T) {
	a := meta("/p/a.js", "/p/b.js", "/p/b.js", "/p/a.js")
	a.Imports[2].Span = source.Span{File: 3, Start: 7, End: 13}
	metas := []project.ModuleMeta{a, meta("/p/b.js")}
	idx := BuildIndex(metas)
	bag := diag.NewBag(10)
	g := BuildGraph(idx, metas, diag.BagReporter{Bag: bag})

	aID, bID := idx.NameToID["/p/a.js"], idx.NameToID["/p/b.js"]
	if edges := g.Edges[int(aID)]; len(edges) != 1 || edges[0] != bID {
		t.Fatalf("edges(a) = %v", edges)
	}
	if g.Indeg[int(bID)] != 1 || g.Indeg[int(aID)] != 0 {
		t.Fatalf("indeg = %v", g.Indeg)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.GraphSelfImport || bag.Items()[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	if bag.Items()[0].Primary.File != 3 {
		t.Fatal("self-import warning must point at the import")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	metas := []project.ModuleMeta{meta("/p/b.js", "/p/c.js"), meta("/p/a.js"), meta("/p/c.js")}
	idx := BuildIndex(metas)
	topo := ToposortKahn(BuildGraph(idx, metas, nil))
	if topo.Cyclic {
		t.Fatal("expected acyclic graph")
	}
	if got := strings.Join(names(idx, topo.Order), ","); got != "a.js,b.js,c.js" {
		t.Fatalf("order = %s", got)
	}
	if len(topo.Batches) != 2 || len(topo.Batches[0]) != 2 || len(topo.Batches[1]) != 1 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestCyclesFindsOnlyCycleMembers(t *testing.T) {
	metas := []project.ModuleMeta{
		meta("/p/index.js", "/p/a.js"),
		meta("/p/a.js", "/p/b.js"),
		meta("/p/b.js", "/p/a.js", "/p/leaf.js"),
		meta("/p/leaf.js"),
		meta("/p/x.js", "/p/y.js"),
		meta("/p/y.js", "/p/z.js"),
		meta("/p/z.js", "/p/x.js"),
	}
	idx := BuildIndex(metas)
	g := BuildGraph(idx, metas, nil)

	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatal("expected cyclic topo")
	}

	cycles := Cycles(g)
	if len(cycles) != 2 {
		t.Fatalf("cycles = %v", cycles)
	}
	if got := strings.Join(names(idx, cycles[0]), ","); got != "a.js,b.js" {
		t.Fatalf("first cycle = %s", got)
	}
	if got := strings.Join(names(idx, cycles[1]), ","); got != "x.js,y.js,z.js" {
		t.Fatalf("second cycle = %s", got)
	}

	bag := diag.NewBag(10)
	ReportCycles(idx, metas, cycles, diag.BagReporter{Bag: bag})
	if bag.Len() != 2 || bag.HasErrors() {
		t.Fatalf("cycle diagnostics = %+v", bag.Items())
	}
	if msg := bag.Items()[0].Message; msg != "import cycle between a.js, b.js" {
		t.Fatalf("message = %q", msg)
	}
}
