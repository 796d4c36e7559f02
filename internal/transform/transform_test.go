package transform

import (
	"reflect"
	"strings"
	"testing"

	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/symbols"
)

const testModule = project.ModuleID("/p/index.js")

func normalize(t *testing.T, cc *compile.Context, src string) (*Tree, error) {
	t.Helper()
	fid := cc.Files.AddVirtual(testModule.String(), []byte(src))
	return Normalize(cc, testModule, cc.Files.Get(fid))
}

func mustNormalize(t *testing.T, cc *compile.Context, src string) *Tree {
	t.Helper()
	tree, err := normalize(t, cc, src)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return tree
}

func printTree(tree *Tree) string {
	var sb strings.Builder
	tree.AST.JS(&sb)
	return sb.String()
}

// runtimeCode rewrites relative specifiers "./x" to "/p/x.js" and returns the
// printed runtime form.
func runtimeCode(t *testing.T, src string) string {
	t.Helper()
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, src)
	err := RewriteSpecifiers(tree, func(spec string) (string, bool) {
		return "/p/" + strings.TrimPrefix(spec, "./") + ".js", true
	})
	if err != nil {
		t.Fatalf("RewriteSpecifiers: %v", err)
	}
	if _, err := ToRuntimeForm(tree, cc); err != nil {
		t.Fatalf("ToRuntimeForm: %v", err)
	}
	return printTree(tree)
}

func TestDependenciesSourceOrder(t *testing.T) {
	src := "import a from './a';\nexport * from './c';\nimport {b} from './b';\nimport './a';\nexport {d} from \"./d\";\n"
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, src)
	deps, err := Dependencies(tree, []byte(src))
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	var specs []string
	for _, d := range deps {
		specs = append(specs, d.Specifier)
	}
	if want := []string{"./a", "./c", "./b", "./d"}; !reflect.DeepEqual(specs, want) {
		t.Fatalf("specs = %v; want %v", specs, want)
	}
	if deps[0].Offset != strings.Index(src, "'./a'") {
		t.Fatalf("offset of ./a = %d", deps[0].Offset)
	}
	if deps[0].Reexport || !deps[1].Reexport || deps[2].Reexport || !deps[3].Reexport {
		t.Fatalf("reexport flags = %+v", deps)
	}
}

func TestNormalizeDownlevelsTopLevelLexicals(t *testing.T) {
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, "#!/usr/bin/env node\n/*! (c) mako */\nlet a = 1;\nconst b = 2;\nclass C {}\nexport class D {}\nfunction f() { let inner = 1; return inner; }\n")
	out := printTree(tree)
	for _, want := range []string{"var a = 1;", "var b = 2;", "var C = class C {};", "let inner = 1;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "#!") || strings.Contains(out, "(c) mako") {
		t.Fatalf("shebang or legal comment left in body:\n%s", out)
	}
	if got := cc.Comments.For(testModule.String()); len(got) != 1 || got[0] != "/*! (c) mako */" {
		t.Fatalf("legal comments = %q", got)
	}
	id, ok := cc.Symbols.Lookup(tree.Scope, "D")
	if !ok {
		t.Fatal("D not declared")
	}
	sym := cc.Symbols.Symbol(id)
	if sym.Kind != symbols.SymbolClass || sym.Flags&symbols.SymbolFlagDownleveled == 0 || sym.Flags&symbols.SymbolFlagExported == 0 {
		t.Fatalf("D = %+v", sym)
	}
	if tree.Phase != PhaseNormalized {
		t.Fatalf("phase = %s", tree.Phase)
	}
}

func TestNormalizeParseError(t *testing.T) {
	cc := compile.NewContext("/p")
	_, err := normalize(t, cc, "var ok = 1;\nvar = 2;\n")
	e, ok := diag.AsError(err)
	if !ok || e.Kind != diag.ParseError {
		t.Fatalf("want ParseError, got %v", err)
	}
	if !e.HasSpan {
		t.Fatal("parse error has no span")
	}
	start, _ := cc.Files.Resolve(e.Span)
	if start.Line != 2 {
		t.Fatalf("error at line %d; want 2", start.Line)
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"import collides with var", "import {a} from './a';\nvar a = 1;\n", diag.XfmImportCollision},
		{"import collides with function", "import a from './a';\nfunction a() {}\n", diag.XfmImportCollision},
		{"duplicate import", "import {a} from './a';\nimport {b as a} from './b';\n", diag.XfmDuplicateImport},
		{"require redeclared", "var require = null;\n", diag.XfmReservedName},
		{"exports redeclared", "export function exports() {}\n", diag.XfmReservedName},
		{"export of undeclared", "export {nope};\n", diag.XfmUnsupportedExport},
		{"duplicate export", "var a, b;\nexport {a as x, b as x};\n", diag.XfmDuplicateExport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalize(t, compile.NewContext("/p"), tt.src)
			e, ok := diag.AsError(err)
			if !ok || e.Kind != diag.TransformError || e.Code != tt.code {
				t.Fatalf("want TransformError %s, got %v", tt.code.ID(), err)
			}
			if e.Module != testModule.String() {
				t.Fatalf("error names %q", e.Module)
			}
		})
	}
}

func TestRecordsExports(t *testing.T) {
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, "var a = 1;\nexport {a as b};\nexport function f() {}\nexport default 3;\nexport * from './x';\nexport {y as z} from './y';\n")
	if got, want := cc.Symbols.ExportNames(testModule.String()), []string{"b", "default", "f", "z"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("exports = %v; want %v", got, want)
	}
	if s := cc.Symbols.Scope(tree.Scope); !reflect.DeepEqual(s.StarExports, []string{"./x"}) {
		t.Fatalf("star exports = %v", s.StarExports)
	}
}

func TestRuntimeFormNamedImport(t *testing.T) {
	out := runtimeCode(t, "import {x} from './a';\nconsole.log(x);\n")
	for _, want := range []string{`"use strict";`, `Object.defineProperty(exports, "__esModule"`, `var _a = require("/p/a.js");`, "console.log(_a.x);"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "import") {
		t.Fatalf("import left in output:\n%s", out)
	}
}

func TestRuntimeFormRenamesEveryUse(t *testing.T) {
	out := runtimeCode(t, `import {x, f} from './a';
var o = {x};
function g() { return x + 1; }
function h(x) { return x; }
f(1);
`)
	for _, want := range []string{"x: _a.x", "return _a.x + 1;", "return x;", "(0,_a.f)(1);"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRuntimeFormDefaultAndNamespace(t *testing.T) {
	out := runtimeCode(t, "import d from './d';\nimport * as ns from './n';\nimport './side';\nd(ns.v);\n")
	for _, want := range []string{
		`var _d = _interop_require_default(require("/p/d.js"));`,
		`var ns = require("/p/n.js");`,
		`require("/p/side.js");`,
		"(0,_d.default)(ns.v);",
		"function _interop_require_default(obj)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRuntimeFormDefaultBesideNamedImport(t *testing.T) {
	out := runtimeCode(t, "import lib, {kind} from './legacy';\nconsole.log(lib, kind);\n")
	for _, want := range []string{
		`var _legacy = require("/p/legacy.js");`,
		"var _legacy_default = _interop_require_default(_legacy);",
		"console.log(_legacy_default.default, _legacy.kind);",
		"function _interop_require_default(obj)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRuntimeFormExports(t *testing.T) {
	out := runtimeCode(t, `import {y} from './y';
export const a = 1;
export default function () { return a; }
export {y};
export * from './star';
`)
	for _, want := range []string{
		"function _export(target, all)",
		"function _export_star(from, to)",
		"var a = 1;",
		"function _default()",
		"return _default;",
		"return _y.y;",
		`_export_star(require("/p/star.js"), exports);`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	getters := strings.Index(out, "_export(exports")
	req := strings.Index(out, `require("/p/y.js")`)
	if getters < 0 || req < 0 || getters > req {
		t.Fatalf("getters must be defined before dependencies are required:\n%s", out)
	}
}

func TestRuntimeFormDefaultClassAndExpression(t *testing.T) {
	out := runtimeCode(t, "export default class {}\n")
	if !strings.Contains(out, "var _default = class {}") {
		t.Fatalf("anonymous class:\n%s", out)
	}
	out = runtimeCode(t, "var _default = 0;\nexport default 1 + 2;\n")
	if !strings.Contains(out, "var _default1 = 1 + 2;") || !strings.Contains(out, "return _default1;") {
		t.Fatalf("default expression must not reuse a taken name:\n%s", out)
	}
}

func TestRuntimeFormPlainScript(t *testing.T) {
	out := runtimeCode(t, "module.exports = 7;\n")
	if strings.Contains(out, "__esModule") || !strings.Contains(out, "module.exports = 7;") {
		t.Fatalf("plain script:\n%s", out)
	}
}

func TestInteropRunsOnce(t *testing.T) {
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, "export var a = 1;\n")
	if _, err := ToRuntimeForm(tree, cc); err != nil {
		t.Fatalf("first run: %v", err)
	}
	_, err := ToRuntimeForm(tree, cc)
	e, ok := diag.AsError(err)
	if !ok || e.Kind != diag.TransformError || e.Code != diag.XfmInteropTwice {
		t.Fatalf("want XfmInteropTwice, got %v", err)
	}
}

func TestRewriteSpecifiersUnknown(t *testing.T) {
	cc := compile.NewContext("/p")
	tree := mustNormalize(t, cc, "import './a';\n")
	err := RewriteSpecifiers(tree, func(string) (string, bool) { return "", false })
	if diag.KindOf(err) != diag.TransformError {
		t.Fatalf("want TransformError, got %v", err)
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
		bad  bool
	}{
		{`'./a'`, "./a", false},
		{`"./b"`, "./b", false},
		{`"caf\u00e9"`, "café", false},
		{`'\x41\u{42}\'c'`, "AB'c", false},
		{`"unterminated`, "", true},
		{`'\u12'`, "", true},
	}
	for _, tt := range tests {
		got, err := unquote([]byte(tt.in))
		if (err != nil) != tt.bad || got != tt.want {
			t.Fatalf("unquote(%s) = %q, %v", tt.in, got, err)
		}
	}
	if got := Quote("a\"b"); got != `"a\"b"` {
		t.Fatalf("Quote = %s", got)
	}
}

func TestIdentBase(t *testing.T) {
	tests := map[string]string{
		"/p/a.js":             "a",
		"/p/lib/my-util.mjs":  "my_util",
		"/p/node_modules/x/1": "_1",
		"/p/.hidden":          "_hidden",
	}
	for in, want := range tests {
		if got := identBase(in); got != want {
			t.Fatalf("identBase(%s) = %q; want %q", in, got, want)
		}
	}
}
