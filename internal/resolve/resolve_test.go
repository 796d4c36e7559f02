package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mako/internal/project"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func canonical(t *testing.T, p string) project.ModuleID {
	t.Helper()
	id, err := project.Canonicalize(p)
	if err != nil {
		t.Fatalf("Canonicalize(%s): %v", p, err)
	}
	return id
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.js":                              "",
		"a.js":                                  "",
		"b.mjs":                                 "",
		"lib/index.js":                          "",
		"lib/util.js":                           "",
		"src/components/button.js":              "",
		"node_modules/left/package.json":        `{"main": "lib/main.js", "module": "esm/index"}`,
		"node_modules/left/esm/index.js":        "",
		"node_modules/left/lib/main.js":         "",
		"node_modules/plain/index.js":           "",
		"node_modules/@scope/pkg/package.json":  `{"main": "./dist/entry.js"}`,
		"node_modules/@scope/pkg/dist/entry.js": "",
		"node_modules/@scope/pkg/extra.js":      "",
		"sub/deeper/file.js":                    "",
	})
	r := NewFS(root, nil, map[string]string{"@/": "src/", "@/components/": "src/components/"})

	tests := []struct {
		dir  string
		spec string
		want string
	}{
		{root, "./a", "a.js"},
		{root, "./a.js", "a.js"},
		{root, "./b", "b.mjs"},
		{root, "./lib", "lib/index.js"},
		{root, "./lib/util", "lib/util.js"},
		{filepath.Join(root, "lib"), "../a", "a.js"},
		{root, filepath.ToSlash(filepath.Join(root, "a.js")), "a.js"},
		{root, "left", "node_modules/left/esm/index.js"},
		{filepath.Join(root, "sub", "deeper"), "plain", "node_modules/plain/index.js"},
		{root, "@scope/pkg", "node_modules/@scope/pkg/dist/entry.js"},
		{root, "@scope/pkg/extra", "node_modules/@scope/pkg/extra.js"},
		{filepath.Join(root, "sub"), "@/components/button", "src/components/button.js"},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.dir, tt.spec)
		if err != nil {
			t.Fatalf("Resolve(%s, %s): %v", tt.dir, tt.spec, err)
		}
		if want := canonical(t, filepath.Join(root, filepath.FromSlash(tt.want))); got != want {
			t.Fatalf("Resolve(%s, %s) = %s; want %s", tt.dir, tt.spec, got, want)
		}
	}
}

func TestResolveDedupSameFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"shared/x.js": "", "a/entry.js": ""})
	if err := os.Symlink(filepath.Join(root, "shared"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	r := NewFS(root, nil, nil)
	specs := []struct{ dir, spec string }{
		{root, "./shared/x"},
		{root, "./shared/x.js"},
		{filepath.Join(root, "a"), "../shared/x"},
		{root, "./shared/../shared/x.js"},
		{root, "./link/x"},
	}
	var first project.ModuleID
	for i, s := range specs {
		id, err := r.Resolve(s.dir, s.spec)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", s.spec, err)
		}
		if i == 0 {
			first = id
			continue
		}
		if id != first {
			t.Fatalf("%s resolved to %s; want %s", s.spec, id, first)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.js": "", "a.mjs": "", "a/index.js": ""})
	r := NewFS(root, []string{".js", ".mjs"}, nil)
	first, err := r.Resolve(root, "./a")
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		got, err := r.Resolve(root, "./a")
		if err != nil || got != first {
			t.Fatalf("Resolve = %s, %v; want %s", got, err, first)
		}
	}
	if want := canonical(t, filepath.Join(root, "a.js")); first != want {
		t.Fatalf("extension order ignored: %s", first)
	}
}

func TestResolveFailures(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"node_modules/broken/package.json": "{"})
	r := NewFS(root, nil, nil)
	tests := []struct {
		spec string
		want error
	}{
		{"./missing", ErrNotFound},
		{"nopkg", ErrNotFound},
		{"broken", ErrBadPackage},
		{"", ErrEmptySpecifier},
	}
	for _, tt := range tests {
		_, err := r.Resolve(root, tt.spec)
		if !errors.Is(err, tt.want) {
			t.Fatalf("Resolve(%q) = %v; want %v", tt.spec, err, tt.want)
		}
	}
}

func TestSplitPackage(t *testing.T) {
	tests := []struct{ in, name, sub string }{
		{"left", "left", ""},
		{"left/pad", "left", "pad"},
		{"@s/p", "@s/p", ""},
		{"@s/p/a/b", "@s/p", "a/b"},
	}
	for _, tt := range tests {
		name, sub := splitPackage(tt.in)
		if name != tt.name || sub != tt.sub {
			t.Fatalf("splitPackage(%s) = %s, %s", tt.in, name, sub)
		}
	}
}
