package symbols

import (
	"reflect"
	"testing"
)

func TestDeclareRejectsDuplicates(t *testing.T) {
	a := NewArena()
	scope := a.NewModuleScope("/p/a.js")
	first, ok := a.Declare(scope, Symbol{Name: "x", Kind: SymbolImport, Specifier: "./b", Imported: "x"})
	if !ok || !first.IsValid() {
		t.Fatal("first declaration must succeed")
	}
	again, ok := a.Declare(scope, Symbol{Name: "x", Kind: SymbolConst})
	if ok || again != first {
		t.Fatalf("duplicate declaration = %d,%v", again, ok)
	}
	if sym := a.Symbol(first); sym.Kind != SymbolImport || sym.Scope != scope {
		t.Fatalf("symbol = %+v", sym)
	}
}

func TestScopesAreIsolatedPerModule(t *testing.T) {
	a := NewArena()
	sa := a.NewModuleScope("/p/a.js")
	sb := a.NewModuleScope("/p/b.js")
	a.Declare(sa, Symbol{Name: "shared", Kind: SymbolVar})
	if _, ok := a.Lookup(sb, "shared"); ok {
		t.Fatal("symbol leaked into another module scope")
	}
	if _, ok := a.Declare(sb, Symbol{Name: "shared", Kind: SymbolVar}); !ok {
		t.Fatal("same name in another module must be allowed")
	}
	if got, _ := a.ModuleScope("/p/b.js"); got != sb {
		t.Fatalf("ModuleScope = %d; want %d", got, sb)
	}
	if a.Len() != 2 {
		t.Fatalf("Len = %d", a.Len())
	}
}

func TestFreshNameAvoidsReserved(t *testing.T) {
	a := NewArena()
	s := a.NewModuleScope("/p/a.js")
	a.Reserve(s, "_b", "_b1")
	a.Declare(s, Symbol{Name: "_default", Kind: SymbolVar})

	if got := a.FreshName(s, "_b"); got != "_b2" {
		t.Fatalf("FreshName(_b) = %s", got)
	}
	if got := a.FreshName(s, "_b"); got != "_b3" {
		t.Fatalf("second FreshName(_b) = %s", got)
	}
	if got := a.FreshName(s, "_default"); got != "_default1" {
		t.Fatalf("FreshName(_default) = %s", got)
	}
	if got := a.FreshName(s, "_c"); got != "_c" {
		t.Fatalf("FreshName(_c) = %s", got)
	}
}

func TestExportsAndGeneratedFlag(t *testing.T) {
	a := NewArena()
	s := a.NewModuleScope("/p/a.js")
	id, _ := a.Declare(s, Symbol{Name: "x", Kind: SymbolConst})
	a.AddExport(s, Export{Name: "y", Local: "x"})
	a.AddExport(s, Export{Name: "default", Local: "_default"})
	a.AddExport(s, Export{Name: "z", Local: "z", Specifier: "./c"})

	if a.Symbol(id).Flags&SymbolFlagExported == 0 {
		t.Fatal("local export must flag the symbol")
	}
	if got := a.ExportNames("/p/a.js"); !reflect.DeepEqual(got, []string{"default", "y", "z"}) {
		t.Fatalf("ExportNames = %v", got)
	}
	if !a.MarkGenerated(s) || a.MarkGenerated(s) {
		t.Fatal("MarkGenerated must succeed exactly once")
	}
}
