package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mako/internal/diag"
	"mako/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	error[RES4001]: message
//	  --> path:line:col
//	   |
//	 3 | import {x} from './missing';
//	   |                 ^~~~~~~~~~~
//
// Bag is expected to be sorted already.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		PrettyOne(w, &d, fs, opts)
	}
}

// PrettyOne renders a single diagnostic.
func PrettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	head := fmt.Sprintf("%s[%s]", d.Severity, d.Code.ID())
	fmt.Fprintf(w, "%s: %s\n", p.severity(d.Severity).Sprint(head), p.bold.Sprint(d.Message))

	path, ok := location(d, fs)
	if !ok {
		if path != "" {
			fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprint("-->"), formatPath(fs, path, opts.PathMode))
		}
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "  %s %s:%d:%d\n", p.gutter.Sprint("-->"), formatPath(fs, path, opts.PathMode), start.Line, start.Col)
	writeSnippet(w, p, fs.Get(d.Primary.File), start, end, opts.Context)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if int(n.Span.File) >= fs.Len() {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			continue
		}
		pos, _ := fs.Resolve(n.Span)
		np := formatPath(fs, fs.Get(n.Span.File).Path, opts.PathMode)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), np, pos.Line, pos.Col, n.Msg)
	}
}

func writeSnippet(w io.Writer, p palette, f *source.File, start, end source.LineCol, context uint8) {
	first := start.Line
	if uint32(context) < first {
		first -= uint32(context)
	} else {
		first = 1
	}
	width := len(fmt.Sprint(start.Line))
	pad := strings.Repeat(" ", width)
	fmt.Fprintf(w, "%s %s\n", pad, p.gutter.Sprint("|"))
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%*d %s %s\n", width, ln, p.gutter.Sprint("|"), f.GetLine(ln))
	}
	line := f.GetLine(start.Line)
	col := int(start.Col) - 1
	col = max(0, min(col, len(line)))
	n := 1
	if end.Line == start.Line && end.Col > start.Col {
		n = int(end.Col - start.Col)
	}
	marker := "^" + strings.Repeat("~", n-1)
	// tabs keep their width so the caret lines up
	prefix := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:col])
	fmt.Fprintf(w, "%s %s %s%s\n", pad, p.gutter.Sprint("|"), prefix, p.caret.Sprint(marker))
}
