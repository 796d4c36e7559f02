package diag

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"mako/internal/source"
)

func TestResolutionErrorNamesImporterAndSpecifier(t *testing.T) {
	err := NewResolutionError("/proj/index.js", "./missing", fs.ErrNotExist)
	msg := err.Error()
	for _, want := range []string{"/proj/index.js", `"./missing"`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q lacks %q", msg, want)
		}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("cause must unwrap")
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{NewLoadError("/a.js", fs.ErrPermission), LoadError},
		{fmt.Errorf("build: %w", NewParseError("/a.js", source.Span{}, "unexpected }")), ParseError},
		{fmt.Errorf("generate: %w", NewTransformError("/a.js", XfmInteropTwice, "again")), TransformError},
		{NewEmitError("/a.js", EmitFailed, errors.New("boom")), EmitError},
		{NewWriteError("/dist/bundle.js", IOWriteOutput, fs.ErrPermission), WriteError},
		{errors.New("plain"), KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s; want %s", tt.err, got, tt.want)
		}
	}
}

func TestErrorDiagnostic(t *testing.T) {
	e := NewParseError("/p/a.js", source.Span{File: 2, Start: 3, End: 4}, "expected ;")
	d := e.Diagnostic()
	if d.Severity != SevError || d.Code != SynParse || d.Primary.File != 2 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if !strings.HasPrefix(d.Message, "ParseError: /p/a.js") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		IOLoadFile:       "IO1001",
		SynParse:         "SYN2001",
		XfmInteropTwice:  "XFM3003",
		ResUnresolved:    "RES4001",
		EmitFailed:       "EMT5001",
		GraphImportCycle: "GRF6001",
		UnknownCode:      "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s; want %s", code, got, want)
		}
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportWarning(r, GraphImportCycle, source.Span{File: 1, Start: 5}, "cycle b").Emit()
	ReportWarning(r, GraphImportCycle, source.Span{File: 0, Start: 9}, "cycle a").Emit()
	ReportWarning(r, GraphImportCycle, source.Span{File: 0, Start: 9}, "cycle a").Emit()
	if b.Add(New(SevInfo, GraphInfo, source.Span{}, "over")) {
		t.Fatal("limit ignored")
	}
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 2 || items[0].Message != "cycle a" {
		t.Fatalf("unexpected items %+v", items)
	}
	if b.HasErrors() {
		t.Fatal("warnings only")
	}
}
