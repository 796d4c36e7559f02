package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"mako/internal/diag"
	"mako/internal/source"
)

func TestPrettyPathModes(t *testing.T) {
	fs := source.NewFileSet("/home/user/app")
	content := []byte("import {x} from './missing';\nconsole.log(x);\n")
	id := fs.AddVirtual("/home/user/app/src/index.js", content)

	err := diag.NewResolutionError("/home/user/app/src/index.js", "./missing", nil).
		At(source.Span{File: id, Start: 16, End: 27})
	d := err.Diagnostic()

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeRelative, "--> src/index.js:1:17"},
		{PathModeAbsolute, "--> /home/user/app/src/index.js:1:17"},
		{PathModeBasename, "--> index.js:1:17"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		PrettyOne(&buf, &d, fs, PrettyOpts{PathMode: tt.mode})
		out := buf.String()
		if !strings.Contains(out, tt.want) {
			t.Errorf("mode %d: output lacks %q:\n%s", tt.mode, tt.want, out)
		}
	}
}

func TestPrettyCaretUnderSpan(t *testing.T) {
	fs := source.NewFileSet("/p")
	id := fs.AddVirtual("/p/a.js", []byte("let a = ;\n"))
	d := diag.NewParseError("/p/a.js", source.Span{File: id, Start: 8, End: 9}, "unexpected ;").Diagnostic()

	var buf bytes.Buffer
	PrettyOne(&buf, &d, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "error[SYN2001]: ParseError: /p/a.js") {
		t.Fatalf("header = %q", lines[0])
	}
	var caret string
	for _, l := range lines {
		if strings.HasSuffix(l, "^") {
			caret = l
		}
	}
	if want := "  | " + strings.Repeat(" ", 8) + "^"; caret != want {
		t.Fatalf("caret line = %q\n%s", caret, buf.String())
	}
}

func TestPrettyWithoutSpan(t *testing.T) {
	d := diag.NewWriteError("/p/dist/bundle.js", diag.IOWriteOutput, nil).Diagnostic()
	var buf bytes.Buffer
	PrettyOne(&buf, &d, source.NewFileSet("/p"), PrettyOpts{})
	if !strings.Contains(buf.String(), "--> dist/bundle.js") {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet("/p")
	id := fs.AddVirtual("/p/a.js", []byte("import './b';\n"))
	bag := diag.NewBag(10)
	diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.GraphImportCycle, source.Span{File: id, Start: 7, End: 12}, "import cycle a.js -> b.js -> a.js").Emit()

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "GRF6001" {
		t.Fatalf("unexpected output %+v", out)
	}
	loc := out.Diagnostics[0].Location
	if loc == nil || loc.File != "a.js" || loc.StartLine != 1 || loc.StartCol != 8 {
		t.Fatalf("location = %+v", loc)
	}
}
