package transform

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/parse/v2/js"

	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/source"
	"mako/internal/symbols"
)

// Normalize parses f and applies the module-independent rewrites: shebang
// and legal comment removal, binding and export bookkeeping, and lowering
// of top-level let/const/class to var so that bindings read during an import
// cycle yield undefined instead of throwing.
func Normalize(cc *compile.Context, id project.ModuleID, f *source.File) (*Tree, error) {
	t, err := Parse(cc, id, f)
	if err != nil {
		return nil, err
	}
	if err := runStages(t, cc, NormalizeStages()); err != nil {
		return nil, err
	}
	t.Phase = PhaseNormalized
	return t, nil
}

func stripShebang(t *Tree, _ *compile.Context) error {
	list := t.body()
	if len(list) == 0 {
		return nil
	}
	if c, ok := list[0].(*js.Comment); ok && bytes.HasPrefix(c.Value, []byte("#!")) {
		t.setBody(list[1:])
	}
	return nil
}

// liftLegalComments moves top-level `/*! */` and `//!` comments into the
// compile context; the renderer prints them once in the bundle header.
func liftLegalComments(t *Tree, cc *compile.Context) error {
	list := t.body()
	out := list[:0]
	for _, stmt := range list {
		if c, ok := stmt.(*js.Comment); ok {
			cc.Comments.Add(t.Module.String(), string(bytes.TrimSpace(c.Value)))
			continue
		}
		out = append(out, stmt)
	}
	t.setBody(out)
	return nil
}

// runtimeNames are provided to every module factory and must not be
// redeclared at the top level.
func runtimeNames() map[string]struct{} {
	names := map[string]struct{}{"module": {}, "exports": {}, "require": {}}
	for _, h := range compile.HelperNames() {
		names[h] = struct{}{}
	}
	return names
}

type binder struct {
	t        *Tree
	arena    *symbols.Arena
	reserved map[string]struct{}
}

func (b *binder) fail(code diag.Code, format string, args ...any) error {
	return diag.NewTransformError(b.t.Module.String(), code, fmt.Sprintf(format, args...))
}

func (b *binder) declare(sym symbols.Symbol) error {
	if sym.Kind != symbols.SymbolImport {
		if _, bad := b.reserved[sym.Name]; bad {
			return b.fail(diag.XfmReservedName, "top-level %s %q shadows a name the module runtime provides", sym.Kind, sym.Name)
		}
	}
	id, ok := b.arena.Declare(b.t.Scope, sym)
	if ok {
		return nil
	}
	prev := b.arena.Symbol(id)
	switch {
	case prev.Kind == symbols.SymbolImport && sym.Kind == symbols.SymbolImport:
		return b.fail(diag.XfmDuplicateImport, "duplicate import binding %q", sym.Name)
	case prev.Kind == symbols.SymbolImport || sym.Kind == symbols.SymbolImport:
		return b.fail(diag.XfmImportCollision, "import binding %q collides with a top-level declaration", sym.Name)
	}
	// var/function redeclarations are legal; the parser already rejected the rest
	return nil
}

func (b *binder) declareBinding(binding js.IBinding, kind symbols.SymbolKind) error {
	for _, name := range bindingNames(binding, nil) {
		if err := b.declare(symbols.Symbol{Name: name, Kind: kind}); err != nil {
			return err
		}
	}
	return nil
}

func (b *binder) declareDecl(decl js.IExpr) error {
	switch d := decl.(type) {
	case *js.VarDecl:
		kind := symbols.SymbolVar
		switch d.TokenType {
		case js.LetToken:
			kind = symbols.SymbolLet
		case js.ConstToken:
			kind = symbols.SymbolConst
		}
		for _, el := range d.List {
			if err := b.declareBinding(el.Binding, kind); err != nil {
				return err
			}
		}
	case *js.FuncDecl:
		if d.Name != nil {
			return b.declare(symbols.Symbol{Name: string(d.Name.Data), Kind: symbols.SymbolFunction})
		}
	case *js.ClassDecl:
		if d.Name != nil {
			return b.declare(symbols.Symbol{Name: string(d.Name.Data), Kind: symbols.SymbolClass})
		}
	}
	return nil
}

func recordBindings(t *Tree, cc *compile.Context) error {
	b := &binder{t: t, arena: cc.Symbols, reserved: runtimeNames()}
	t.Scope = cc.Symbols.NewModuleScope(t.Module.String())

	for _, stmt := range t.body() {
		imp, ok := stmt.(*js.ImportStmt)
		if !ok {
			continue
		}
		spec, err := unquote(imp.Module)
		if err != nil {
			return b.fail(diag.XfmInfo, "bad import specifier %s: %v", imp.Module, err)
		}
		if imp.Default != nil {
			err := b.declare(symbols.Symbol{Name: string(imp.Default), Kind: symbols.SymbolImport, Specifier: spec, Imported: "default"})
			if err != nil {
				return err
			}
		}
		for _, a := range imp.List {
			if a.Binding == nil {
				continue
			}
			sym := symbols.Symbol{Name: string(a.Binding), Kind: symbols.SymbolImport, Specifier: spec, Imported: string(a.Binding)}
			if a.Name != nil {
				sym.Imported = string(a.Name)
			}
			if sym.Imported == "*" {
				sym.Flags |= symbols.SymbolFlagNamespace
			}
			if err := b.declare(sym); err != nil {
				return err
			}
		}
	}

	for _, stmt := range t.body() {
		var err error
		switch s := stmt.(type) {
		case *js.VarDecl:
			err = b.declareDecl(s)
		case *js.FuncDecl:
			err = b.declareDecl(s)
		case *js.ClassDecl:
			err = b.declareDecl(s)
		case *js.ExportStmt:
			if s.Decl != nil {
				err = b.declareDecl(s.Decl)
			}
		}
		if err != nil {
			return err
		}
	}

	// var and function declarations hoisted out of nested blocks
	for _, v := range t.AST.BlockStmt.Scope.Declared {
		switch v.Decl {
		case js.VariableDecl, js.FunctionDecl, js.LexicalDecl:
		default:
			continue
		}
		name := string(v.Data)
		if _, ok := cc.Symbols.Lookup(t.Scope, name); ok {
			continue
		}
		if err := b.declare(symbols.Symbol{Name: name, Kind: symbols.SymbolVar}); err != nil {
			return err
		}
	}

	js.Walk(&reserver{arena: cc.Symbols, scope: t.Scope}, t.AST)
	return nil
}

// reserver marks every identifier of the module as taken so generated
// names never shadow user code.
type reserver struct {
	arena *symbols.Arena
	scope symbols.ScopeID
}

func (r *reserver) Enter(n js.INode) js.IVisitor {
	if v, ok := n.(*js.Var); ok {
		r.arena.Reserve(r.scope, string(v.Data))
	}
	return r
}

func (r *reserver) Exit(js.INode) {}

func bindingNames(binding js.IBinding, out []string) []string {
	switch b := binding.(type) {
	case *js.Var:
		out = append(out, string(b.Data))
	case *js.BindingArray:
		for _, el := range b.List {
			out = bindingNames(el.Binding, out)
		}
		if b.Rest != nil {
			out = bindingNames(b.Rest, out)
		}
	case *js.BindingObject:
		for _, item := range b.List {
			out = bindingNames(item.Value.Binding, out)
		}
		if b.Rest != nil {
			out = append(out, string(b.Rest.Data))
		}
	}
	return out
}

func declNames(decl js.IExpr) []string {
	switch d := decl.(type) {
	case *js.VarDecl:
		var out []string
		for _, el := range d.List {
			out = bindingNames(el.Binding, out)
		}
		return out
	case *js.FuncDecl:
		if d.Name != nil {
			return []string{string(d.Name.Data)}
		}
	case *js.ClassDecl:
		if d.Name != nil {
			return []string{string(d.Name.Data)}
		}
	}
	return nil
}

func recordExports(t *Tree, cc *compile.Context) error {
	b := &binder{t: t, arena: cc.Symbols}
	seen := make(map[string]struct{})
	add := func(e symbols.Export) error {
		if _, dup := seen[e.Name]; dup {
			return b.fail(diag.XfmDuplicateExport, "duplicate export %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		cc.Symbols.AddExport(t.Scope, e)
		return nil
	}

	for _, stmt := range t.body() {
		exp, ok := stmt.(*js.ExportStmt)
		if !ok {
			continue
		}
		switch {
		case exp.Module != nil:
			spec, err := unquote(exp.Module)
			if err != nil {
				return b.fail(diag.XfmInfo, "bad export specifier %s: %v", exp.Module, err)
			}
			for _, a := range exp.List {
				if a.Binding == nil {
					continue
				}
				if a.Name == nil && string(a.Binding) == "*" {
					cc.Symbols.AddStarExport(t.Scope, spec)
					continue
				}
				local := string(a.Binding)
				if a.Name != nil {
					local = string(a.Name)
				}
				if err := add(symbols.Export{Name: string(a.Binding), Local: local, Specifier: spec}); err != nil {
					return err
				}
			}
		case exp.Default:
			// anonymous defaults get their local name from the interop stage
			local := ""
			if names := declNames(exp.Decl); len(names) == 1 {
				local = names[0]
			}
			if err := add(symbols.Export{Name: "default", Local: local}); err != nil {
				return err
			}
		case exp.Decl != nil:
			for _, name := range declNames(exp.Decl) {
				if err := add(symbols.Export{Name: name, Local: name}); err != nil {
					return err
				}
			}
		default:
			for _, a := range exp.List {
				if a.Binding == nil {
					continue
				}
				local := string(a.Binding)
				if a.Name != nil {
					local = string(a.Name)
				}
				if _, ok := cc.Symbols.Lookup(t.Scope, local); !ok {
					return b.fail(diag.XfmUnsupportedExport, "export of undeclared binding %q", local)
				}
				if err := add(symbols.Export{Name: string(a.Binding), Local: local}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func downlevelLexical(t *Tree, cc *compile.Context) error {
	list := t.body()
	for i, stmt := range list {
		switch s := stmt.(type) {
		case *js.VarDecl:
			downlevelVar(t, cc, s)
		case *js.ClassDecl:
			if s.Name != nil {
				list[i] = classAsVar(t, cc, s)
			}
		case *js.ExportStmt:
			if s.Default {
				continue
			}
			switch d := s.Decl.(type) {
			case *js.VarDecl:
				downlevelVar(t, cc, d)
			case *js.ClassDecl:
				s.Decl = classAsVar(t, cc, d)
			}
		}
	}
	return nil
}

func downlevelVar(t *Tree, cc *compile.Context, d *js.VarDecl) {
	if d.TokenType != js.LetToken && d.TokenType != js.ConstToken {
		return
	}
	d.TokenType = js.VarToken
	for _, name := range declNames(d) {
		markDownleveled(t, cc, name)
	}
}

// classAsVar turns `class C {}` into `var C = class C {}`.
func classAsVar(t *Tree, cc *compile.Context, c *js.ClassDecl) *js.VarDecl {
	markDownleveled(t, cc, string(c.Name.Data))
	return &js.VarDecl{
		TokenType: js.VarToken,
		List:      []js.BindingElement{{Binding: c.Name, Default: c}},
	}
}

func markDownleveled(t *Tree, cc *compile.Context, name string) {
	if id, ok := cc.Symbols.Lookup(t.Scope, name); ok {
		cc.Symbols.Symbol(id).Flags |= symbols.SymbolFlagDownleveled
	}
}
