package runtimeembed

import (
	"io/fs"
	"strings"
	"testing"
)

func TestLoaderCachesBeforeInvokingFactory(t *testing.T) {
	src := Loader()
	set := strings.Index(src, "cache.set(id, module)")
	call := strings.Index(src, "factory.call(")
	if set < 0 || call < 0 || set > call {
		t.Fatalf("module record must be cached before the factory runs:\n%s", src)
	}
	if !strings.Contains(src, "does not exist.") {
		t.Fatal("missing-module error text")
	}
}

func TestHelpers(t *testing.T) {
	for _, name := range []string{"_export", "_export_star", "_interop_require_default"} {
		src, err := Helper(name)
		if err != nil {
			t.Fatalf("Helper(%s): %v", name, err)
		}
		if !strings.HasPrefix(src, "function "+name+"(") {
			t.Fatalf("helper %s starts with %q", name, src[:20])
		}
	}
	if _, err := Helper("_nope"); err == nil {
		t.Fatal("expected error for unknown helper")
	}
	entries, err := fs.ReadDir(HelpersFS(), "helpers")
	if err != nil || len(entries) != 3 {
		t.Fatalf("helpers dir = %v, %v", entries, err)
	}
}
