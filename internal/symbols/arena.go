package symbols

import (
	"fmt"
	"sort"
	"strconv"

	"fortio.org/safecast"
)

// ScopeID and SymbolID index into Arena; slot 0 of each slice is reserved,
// so the zero value means "none".
type (
	ScopeID  uint32
	SymbolID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Scope is the top-level scope record of one module.
type Scope struct {
	Module    string
	Symbols   []SymbolID
	NameIndex map[string]SymbolID
	Exports   []Export
	// StarExports holds specifiers of `export * from` declarations.
	StarExports []string
	// Reserved holds every identifier seen anywhere in the module; fresh
	// names never collide with them.
	Reserved  map[string]struct{}
	Generated bool
}

// Arena stores module scopes and their symbols for one compile.
type Arena struct {
	scopes   []Scope
	symbols  []Symbol
	byModule map[string]ScopeID
}

func NewArena() *Arena {
	return &Arena{
		scopes:   make([]Scope, 1, 16),
		symbols:  make([]Symbol, 1, 64),
		byModule: make(map[string]ScopeID),
	}
}

// NewModuleScope allocates a fresh scope for module. Registering the same
// module twice replaces the index entry; the old scope stays allocated.
func (a *Arena) NewModuleScope(module string) ScopeID {
	n, err := safecast.Conv[uint32](len(a.scopes))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(n)
	a.scopes = append(a.scopes, Scope{
		Module:    module,
		NameIndex: make(map[string]SymbolID),
		Reserved:  make(map[string]struct{}),
	})
	a.byModule[module] = id
	return id
}

// ModuleScope returns the current scope of module.
func (a *Arena) ModuleScope(module string) (ScopeID, bool) {
	id, ok := a.byModule[module]
	return id, ok
}

// Scope returns the scope pointer or nil if id is invalid.
func (a *Arena) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(a.scopes) {
		return nil
	}
	return &a.scopes[id]
}

// Symbol returns the symbol pointer or nil if id is invalid.
func (a *Arena) Symbol(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(a.symbols) {
		return nil
	}
	return &a.symbols[id]
}

// Len reports the number of module scopes.
func (a *Arena) Len() int { return len(a.scopes) - 1 }

// Declare adds sym to scope. When the name is already declared the existing
// symbol is returned with ok=false.
func (a *Arena) Declare(scope ScopeID, sym Symbol) (SymbolID, bool) {
	s := a.Scope(scope)
	if s == nil {
		return NoSymbolID, false
	}
	if prev, dup := s.NameIndex[sym.Name]; dup {
		return prev, false
	}
	n, err := safecast.Conv[uint32](len(a.symbols))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	id := SymbolID(n)
	sym.Scope = scope
	a.symbols = append(a.symbols, sym)
	s.Symbols = append(s.Symbols, id)
	s.NameIndex[sym.Name] = id
	s.Reserved[sym.Name] = struct{}{}
	return id, true
}

// Lookup finds a top-level symbol by name.
func (a *Arena) Lookup(scope ScopeID, name string) (SymbolID, bool) {
	s := a.Scope(scope)
	if s == nil {
		return NoSymbolID, false
	}
	id, ok := s.NameIndex[name]
	return id, ok
}

// Reserve marks names as taken in scope.
func (a *Arena) Reserve(scope ScopeID, names ...string) {
	s := a.Scope(scope)
	if s == nil {
		return
	}
	for _, name := range names {
		s.Reserved[name] = struct{}{}
	}
}

// FreshName returns base, or base with the smallest numeric suffix, that is
// not reserved in scope, and reserves it.
func (a *Arena) FreshName(scope ScopeID, base string) string {
	s := a.Scope(scope)
	if s == nil {
		return base
	}
	name := base
	for i := 1; ; i++ {
		if _, taken := s.Reserved[name]; !taken {
			break
		}
		name = base + strconv.Itoa(i)
	}
	s.Reserved[name] = struct{}{}
	return name
}

// AddExport records an exported name.
func (a *Arena) AddExport(scope ScopeID, e Export) {
	if s := a.Scope(scope); s != nil {
		s.Exports = append(s.Exports, e)
		if id, ok := s.NameIndex[e.Local]; ok && !e.IsReexport() {
			a.symbols[id].Flags |= SymbolFlagExported
		}
	}
}

// AddStarExport records an `export * from specifier` declaration.
func (a *Arena) AddStarExport(scope ScopeID, specifier string) {
	if s := a.Scope(scope); s != nil {
		s.StarExports = append(s.StarExports, specifier)
	}
}

// ExportNames returns the sorted explicit export names of module.
func (a *Arena) ExportNames(module string) []string {
	id, ok := a.byModule[module]
	if !ok {
		return nil
	}
	s := &a.scopes[id]
	out := make([]string, 0, len(s.Exports))
	for _, e := range s.Exports {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// MarkGenerated flags the scope as having gone through the interop rewrite.
// It returns false when it already had.
func (a *Arena) MarkGenerated(scope ScopeID) bool {
	s := a.Scope(scope)
	if s == nil || s.Generated {
		return false
	}
	s.Generated = true
	return true
}
