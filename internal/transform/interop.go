package transform

import (
	"fmt"
	"path"
	"strings"

	"github.com/tdewolff/parse/v2/js"

	"mako/internal/compile"
	"mako/internal/diag"
)

// ToRuntimeForm rewrites a normalized tree so that it runs inside a module
// factory: imports become require() calls, exports become getters on the
// exports object, and the helpers the rewritten code calls are prepended.
// A tree goes through it exactly once.
func ToRuntimeForm(t *Tree, cc *compile.Context) (*Tree, error) {
	if err := runStages(t, cc, RuntimeStages()); err != nil {
		return nil, err
	}
	t.Phase = PhaseRuntime
	return t, nil
}

// request is one distinct module the tree depends on.
type request struct {
	id       string
	local    string
	named    bool
	dflt     bool
	reexport bool
	star     bool
	// namespace is the `import * as ns` binding, reused as the local name
	namespace string
	// defaultLocal holds the interop-wrapped module when the default binding
	// is read next to other bindings of the same request
	defaultLocal string
}

func (r *request) needsLocal() bool {
	return r.named || r.dflt || r.reexport || r.namespace != ""
}

// wrapDefault is true when the request only reads the default export, so a
// plain CommonJS module can be imported as a whole.
func (r *request) wrapDefault() bool {
	return r.dflt && !r.named && !r.reexport && !r.star && r.namespace == ""
}

type importRef struct {
	req      *request
	imported string
}

func (ref importRef) expr() string {
	if ref.imported == "*" {
		return ref.req.local
	}
	if ref.imported == "default" && ref.req.defaultLocal != "" {
		return ref.req.defaultLocal + ".default"
	}
	return ref.req.local + member(ref.imported)
}

type getter struct {
	name string
	expr string
}

type interopState struct {
	t        *Tree
	cc       *compile.Context
	order    []*request
	requests map[string]*request
	bindings map[string]importRef
	getters  []getter
	esm      bool
}

func (s *interopState) fail(code diag.Code, format string, args ...any) error {
	return diag.NewTransformError(s.t.Module.String(), code, fmt.Sprintf(format, args...))
}

func (s *interopState) request(raw []byte) (*request, error) {
	id, err := unquote(raw)
	if err != nil {
		return nil, s.fail(diag.XfmInfo, "bad specifier %s: %v", raw, err)
	}
	if r, ok := s.requests[id]; ok {
		return r, nil
	}
	r := &request{id: id}
	s.requests[id] = r
	s.order = append(s.order, r)
	return r, nil
}

func interop(t *Tree, cc *compile.Context) error {
	if t.Phase != PhaseNormalized {
		if t.Phase == PhaseRuntime {
			return diag.NewTransformError(t.Module.String(), diag.XfmInteropTwice, "interop rewrite already applied")
		}
		return diag.NewTransformError(t.Module.String(), diag.XfmInfo, "interop rewrite needs a normalized tree, got "+t.Phase.String())
	}
	if !cc.Symbols.MarkGenerated(t.Scope) {
		return diag.NewTransformError(t.Module.String(), diag.XfmInteropTwice, "interop rewrite already applied")
	}
	s := &interopState{
		t:        t,
		cc:       cc,
		requests: make(map[string]*request),
		bindings: make(map[string]importRef),
	}
	if err := s.collectRequests(); err != nil {
		return err
	}
	s.assignLocals()

	js.Walk(newRenamer(s.bindings), t.AST)

	body, err := s.rewriteBody()
	if err != nil {
		return err
	}
	head, err := parseSnippet(s.prelude())
	if err != nil {
		return s.fail(diag.XfmInfo, "generated prelude does not parse: %v", err)
	}
	glue, err := parseSnippet(s.glue())
	if err != nil {
		return s.fail(diag.XfmInfo, "generated module glue does not parse: %v", err)
	}
	out := make([]js.IStmt, 0, len(head)+len(glue)+len(body))
	out = append(out, head...)
	out = append(out, glue...)
	out = append(out, body...)
	t.setBody(out)
	t.preludeEnd = len(head)
	return nil
}

// collectRequests records, in source order, every module the tree requests
// and what each import binding refers to.
func (s *interopState) collectRequests() error {
	for _, stmt := range s.t.body() {
		switch d := stmt.(type) {
		case *js.ImportStmt:
			s.esm = true
			r, err := s.request(d.Module)
			if err != nil {
				return err
			}
			if d.Default != nil {
				r.dflt = true
				s.bindings[string(d.Default)] = importRef{req: r, imported: "default"}
			}
			for _, a := range d.List {
				if a.Binding == nil {
					continue
				}
				imported := string(a.Binding)
				if a.Name != nil {
					imported = string(a.Name)
				}
				binding := string(a.Binding)
				if imported == "*" && r.namespace == "" {
					r.namespace = binding
					continue
				}
				if imported != "*" {
					r.named = true
				}
				s.bindings[binding] = importRef{req: r, imported: imported}
			}
		case *js.ExportStmt:
			s.esm = true
			if d.Module == nil {
				continue
			}
			r, err := s.request(d.Module)
			if err != nil {
				return err
			}
			for _, a := range d.List {
				if a.Name == nil && string(a.Binding) == "*" {
					r.star = true
				} else if a.Binding != nil {
					r.reexport = true
				}
			}
		}
	}
	return nil
}

func (s *interopState) assignLocals() {
	for _, r := range s.order {
		switch {
		case r.namespace != "":
			r.local = r.namespace
		case r.needsLocal():
			r.local = s.cc.Symbols.FreshName(s.t.Scope, "_"+identBase(r.id))
		}
		if r.dflt && !r.wrapDefault() {
			r.defaultLocal = s.cc.Symbols.FreshName(s.t.Scope, r.local+"_default")
		}
	}
}

// rewriteBody drops import declarations and unwraps export declarations,
// recording one getter per exported name.
func (s *interopState) rewriteBody() ([]js.IStmt, error) {
	list := s.t.body()
	out := make([]js.IStmt, 0, len(list))
	for _, stmt := range list {
		switch d := stmt.(type) {
		case *js.ImportStmt:
			continue
		case *js.DirectivePrologueStmt:
			if isUseStrict(d.Value) {
				continue
			}
			out = append(out, d)
		case *js.ExportStmt:
			stmts, err := s.rewriteExport(d)
			if err != nil {
				return nil, err
			}
			out = append(out, stmts...)
		default:
			out = append(out, stmt)
		}
	}
	return out, nil
}

func (s *interopState) localExpr(name string) string {
	if ref, ok := s.bindings[name]; ok {
		return ref.expr()
	}
	return name
}

func (s *interopState) rewriteExport(d *js.ExportStmt) ([]js.IStmt, error) {
	switch {
	case d.Module != nil:
		r := s.requests[mustUnquote(d.Module)]
		for _, a := range d.List {
			if a.Binding == nil || (a.Name == nil && string(a.Binding) == "*") {
				continue
			}
			imported := string(a.Binding)
			if a.Name != nil {
				imported = string(a.Name)
			}
			s.getters = append(s.getters, getter{name: string(a.Binding), expr: importRef{req: r, imported: imported}.expr()})
		}
		return nil, nil

	case d.Default:
		return s.rewriteDefault(d.Decl)

	case d.Decl != nil:
		for _, name := range declNames(d.Decl) {
			s.getters = append(s.getters, getter{name: name, expr: name})
		}
		switch decl := d.Decl.(type) {
		case *js.VarDecl:
			return []js.IStmt{decl}, nil
		case *js.FuncDecl:
			return []js.IStmt{decl}, nil
		case *js.ClassDecl:
			return []js.IStmt{decl}, nil
		}
		return nil, s.fail(diag.XfmUnsupportedExport, "unsupported export declaration %s", d.Decl)

	default:
		for _, a := range d.List {
			if a.Binding == nil {
				continue
			}
			local := string(a.Binding)
			if a.Name != nil {
				local = string(a.Name)
			}
			s.getters = append(s.getters, getter{name: string(a.Binding), expr: s.localExpr(local)})
		}
		return nil, nil
	}
}

func (s *interopState) rewriteDefault(decl js.IExpr) ([]js.IStmt, error) {
	switch d := decl.(type) {
	case *js.FuncDecl:
		if d.Name == nil {
			d.Name = &js.Var{Data: []byte(s.defaultName()), Decl: js.FunctionDecl}
		}
		s.getters = append(s.getters, getter{name: "default", expr: string(d.Name.Data)})
		return []js.IStmt{d}, nil
	case *js.ClassDecl:
		var binding *js.Var
		if d.Name != nil {
			binding = d.Name
		} else {
			binding = &js.Var{Data: []byte(s.defaultName()), Decl: js.VariableDecl}
		}
		s.getters = append(s.getters, getter{name: "default", expr: string(binding.Data)})
		return []js.IStmt{&js.VarDecl{
			TokenType: js.VarToken,
			List:      []js.BindingElement{{Binding: binding, Default: d}},
		}}, nil
	case nil:
		return nil, s.fail(diag.XfmUnsupportedExport, "export default without a value")
	default:
		name := s.defaultName()
		s.getters = append(s.getters, getter{name: "default", expr: name})
		return []js.IStmt{&js.VarDecl{
			TokenType: js.VarToken,
			List:      []js.BindingElement{{Binding: &js.Var{Data: []byte(name), Decl: js.VariableDecl}, Default: d}},
		}}, nil
	}
}

func (s *interopState) defaultName() string {
	return s.cc.Symbols.FreshName(s.t.Scope, "_default")
}

// prelude is the code every factory body starts with.
func (s *interopState) prelude() string {
	var sb strings.Builder
	sb.WriteString("\"use strict\";\n")
	if s.esm {
		sb.WriteString("Object.defineProperty(exports, \"__esModule\", {\n    value: true\n});\n")
	}
	return sb.String()
}

// glue defines the export getters before any require() runs, so a module
// that is re-entered through a cycle already exposes its names.
func (s *interopState) glue() string {
	var sb strings.Builder
	mod := s.t.Module.String()
	if len(s.getters) > 0 {
		s.cc.Helpers.Require(mod, compile.HelperExport)
		sb.WriteString("_export(exports, {\n")
		for i, g := range s.getters {
			if i > 0 {
				sb.WriteString(",\n")
			}
			fmt.Fprintf(&sb, "    %s: function () {\n        return %s;\n    }", propertyKey(g.name), g.expr)
		}
		sb.WriteString("\n});\n")
	}
	for _, r := range s.order {
		req := "require(" + string(quote(r.id)) + ")"
		if r.local != "" {
			if r.wrapDefault() {
				s.cc.Helpers.Require(mod, compile.HelperInteropDefault)
				req = "_interop_require_default(" + req + ")"
			}
			fmt.Fprintf(&sb, "var %s = %s;\n", r.local, req)
			req = r.local
		}
		if r.defaultLocal != "" {
			s.cc.Helpers.Require(mod, compile.HelperInteropDefault)
			fmt.Fprintf(&sb, "var %s = _interop_require_default(%s);\n", r.defaultLocal, r.local)
		}
		switch {
		case r.star:
			s.cc.Helpers.Require(mod, compile.HelperExportStar)
			fmt.Fprintf(&sb, "_export_star(%s, exports);\n", req)
		case r.local == "":
			sb.WriteString(req + ";\n")
		}
	}
	return sb.String()
}

func isUseStrict(v []byte) bool {
	s := string(v)
	return s == `"use strict"` || s == `'use strict'`
}

func mustUnquote(raw []byte) string {
	s, err := unquote(raw)
	if err != nil {
		return string(raw)
	}
	return s
}

// member renders property access for name.
func member(name string) string {
	if isIdent(name) {
		return "." + name
	}
	return "[" + string(quote(exportName(name))) + "]"
}

func propertyKey(name string) string {
	if isIdent(name) {
		return name
	}
	return string(quote(exportName(name)))
}

// exportName strips the quotes of a string export name.
func exportName(name string) string {
	if len(name) >= 2 && (name[0] == '"' || name[0] == '\'') {
		return mustUnquote([]byte(name))
	}
	return name
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// identBase derives a readable identifier from a module id: "/p/lib/my-util.js" -> "my_util".
func identBase(id string) string {
	base := path.Base(id)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	var sb strings.Builder
	for i, c := range base {
		switch {
		case c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			sb.WriteRune(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "module"
	}
	return sb.String()
}
