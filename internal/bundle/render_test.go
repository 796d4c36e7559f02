package bundle_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mako/internal/bundle"
	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/driver"
	"mako/internal/emit"
	"mako/internal/generate"
	"mako/internal/project"
	"mako/internal/resolve"
	"mako/internal/vm"
)

func TestRenderLayout(t *testing.T) {
	tab := &generate.Table{
		Entry: "/p/index.js",
		Code: map[project.ModuleID]string{
			"/p/index.js": "require(\"/p/a.js\");",
			"/p/a.js":     "exports.a = 1;\n",
		},
	}
	out, err := bundle.Render(tab, tab.Entry, bundle.Options{Banner: true, Legal: []string{"/*! MIT */"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(out, "/*! MIT */\n// mako bundle: 2 modules\n(function () {") {
		t.Fatalf("header:\n%s", out)
	}
	a := strings.Index(out, `define("/p/a.js", function (module, exports, require) {`)
	idx := strings.Index(out, `define("/p/index.js", function (module, exports, require) {`)
	if a < 0 || idx < 0 || a > idx {
		t.Fatalf("defines missing or unsorted:\n%s", out)
	}
	if !strings.HasSuffix(out, "});\nrequire(\"/p/index.js\");\n})();\n") {
		t.Fatalf("trailer:\n%s", out)
	}
}

func TestRenderUnknownEntry(t *testing.T) {
	tab := &generate.Table{Code: map[project.ModuleID]string{"/p/a.js": ""}}
	_, err := bundle.Render(tab, "/p/index.js", bundle.Options{})
	if diag.KindOf(err) != diag.EmitError {
		t.Fatalf("want EmitError, got %v", err)
	}
}

func TestMissingModuleAtRuntime(t *testing.T) {
	tab := &generate.Table{
		Entry: "/p/index.js",
		Code:  map[project.ModuleID]string{"/p/index.js": `require("/p/gone.js");`},
	}
	out, err := bundle.Render(tab, tab.Entry, bundle.Options{})
	if err != nil {
		t.Fatal(err)
	}
	err = vm.New(vm.Options{}).Run(context.Background(), "bundle.js", out)
	var rerr *vm.RuntimeError
	if !errors.As(err, &rerr) || !strings.Contains(rerr.Message, "Module '/p/gone.js' does not exist.") {
		t.Fatalf("got %v", err)
	}
}

// compileAndRun bundles files and executes the result, returning stdout.
func compileAndRun(t *testing.T, files map[string]string) (string, *driver.Graph) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	ctx := context.Background()
	cc := compile.NewContext(root)
	g, err := driver.Build(ctx, cc, resolve.NewFS(root, nil, nil), "index")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tab, err := generate.Generate(ctx, cc, g, emit.Emitter{Verify: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out, err := bundle.Render(tab, g.Entry, bundle.Options{Legal: cc.Comments.Legal()})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var stdout bytes.Buffer
	if err := vm.New(vm.Options{Stdout: &stdout}).Run(ctx, "bundle.js", out); err != nil {
		t.Fatalf("Run: %v\n%s", err, out)
	}
	return stdout.String(), g
}

func TestBundleRunsNamedImport(t *testing.T) {
	out, g := compileAndRun(t, map[string]string{
		"index.js": "import {x} from './a';\nconsole.log(x);\n",
		"a.js":     "export const x = 42;\n",
	})
	if g.Len() != 2 {
		t.Fatalf("graph has %d modules", g.Len())
	}
	if out != "42\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestBundleCycleDoesNotThrow(t *testing.T) {
	out, _ := compileAndRun(t, map[string]string{
		"index.js": "import {a, fromB} from './a';\nconsole.log(a, fromB());\n",
		"a.js":     "import {b} from './b';\nexport const a = 'A';\nexport function fromB() { return b; }\n",
		"b.js":     "import {a} from './a';\nexport const b = 'B';\nexport const seen = String(a);\n",
	})
	if out != "A B\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestBundleCommonJSDefaultBesideNamed(t *testing.T) {
	out, _ := compileAndRun(t, map[string]string{
		"index.js":  "import lib, {kind} from './legacy';\nimport esm, {tag} from './esm';\nconsole.log(lib.kind, kind, esm, tag);\n",
		"legacy.js": "module.exports = {kind: 'cjs'};\n",
		"esm.js":    "export const tag = 't';\nexport default 'esm';\n",
	})
	if out != "cjs cjs esm t\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestBundleInteropForms(t *testing.T) {
	out, _ := compileAndRun(t, map[string]string{
		"index.js": strings.Join([]string{
			"#!/usr/bin/env node",
			"/*! license text */",
			"import greet, {name as who} from './lib/greet';",
			"import * as math from './lib/math';",
			"import legacy from './legacy';",
			"import {double} from './lib';",
			"let n = math.add(1, 2);",
			"class Box { get v() { return double(n); } }",
			"console.log(greet(who), n, new Box().v, legacy.kind);",
			"",
		}, "\n"),
		"lib/greet.js": "export const name = 'mako';\nexport default function (s) { return 'hi ' + s; }\n",
		"lib/math.js":  "export function add(a, b) { return a + b; }\n",
		"lib/index.js": "export * from './math';\nexport {double} from './twice';\n",
		"lib/twice.js": "export function double(x) { return x * 2; }\n",
		"legacy.js":    "module.exports = {kind: 'cjs'};\n",
	})
	if out != "hi mako 3 6 cjs\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestBundleDefaultClassAndLiveBinding(t *testing.T) {
	out, _ := compileAndRun(t, map[string]string{
		"index.js": "import Counter, {count, bump} from './counter';\nbump(); bump();\nconsole.log(count, new Counter().name);\n",
		"counter.js": strings.Join([]string{
			"export let count = 0;",
			"export function bump() { count++; }",
			"export default class Counter { constructor() { this.name = 'counter'; } }",
			"",
		}, "\n"),
	})
	if out != "2 counter\n" {
		t.Fatalf("stdout = %q", out)
	}
}
