package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2/js"

	"mako/internal/diag"
)

// DeclVisitor receives the top-level import and export declarations of a
// tree in source order.
type DeclVisitor interface {
	VisitImport(*js.ImportStmt) error
	VisitExport(*js.ExportStmt) error
}

// WalkModuleDecls calls v for every top-level import and export. Nested
// code cannot hold module declarations, so only the top-level list is read.
func WalkModuleDecls(t *Tree, v DeclVisitor) error {
	for _, stmt := range t.body() {
		var err error
		switch s := stmt.(type) {
		case *js.ImportStmt:
			err = v.VisitImport(s)
		case *js.ExportStmt:
			err = v.VisitExport(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Dependency is one module request found in the source.
type Dependency struct {
	Specifier string
	// Offset is the byte offset of the quoted specifier in the source, or -1
	Offset int
	// Length is the byte length of the quoted specifier as written.
	Length int
	// Reexport is set while the specifier was only seen in export-from
	// declarations.
	Reexport bool
}

type depCollector struct {
	src  []byte
	seen map[string]int
	out  []Dependency
	from int
}

func (c *depCollector) add(raw []byte, reexport bool) error {
	spec, err := unquote(raw)
	if err != nil {
		return err
	}
	off := -1
	if i := bytes.Index(c.src[c.from:], raw); i >= 0 {
		off = c.from + i
		c.from = off + len(raw)
	}
	if i, dup := c.seen[spec]; dup {
		c.out[i].Reexport = c.out[i].Reexport && reexport
		return nil
	}
	c.seen[spec] = len(c.out)
	c.out = append(c.out, Dependency{Specifier: spec, Offset: off, Length: len(raw), Reexport: reexport})
	return nil
}

func (c *depCollector) VisitImport(s *js.ImportStmt) error {
	return c.add(s.Module, false)
}

func (c *depCollector) VisitExport(s *js.ExportStmt) error {
	if s.Module == nil {
		return nil
	}
	return c.add(s.Module, true)
}

// Dependencies lists the distinct specifiers the module requests, first
// occurrence first. src is the module text; it is only used to locate each
// specifier for diagnostics.
func Dependencies(t *Tree, src []byte) ([]Dependency, error) {
	c := &depCollector{src: src, seen: make(map[string]int)}
	if err := WalkModuleDecls(t, c); err != nil {
		return nil, diag.NewTransformError(t.Module.String(), diag.XfmInfo, err.Error())
	}
	return c.out, nil
}

type specRewriter struct {
	mapping func(string) (string, bool)
}

func (r specRewriter) rewrite(raw []byte) ([]byte, error) {
	spec, err := unquote(raw)
	if err != nil {
		return nil, err
	}
	id, ok := r.mapping(spec)
	if !ok {
		return nil, fmt.Errorf("no module recorded for %q", spec)
	}
	return quote(id), nil
}

func (r specRewriter) VisitImport(s *js.ImportStmt) error {
	q, err := r.rewrite(s.Module)
	if err != nil {
		return err
	}
	s.Module = q
	return nil
}

func (r specRewriter) VisitExport(s *js.ExportStmt) error {
	if s.Module == nil {
		return nil
	}
	q, err := r.rewrite(s.Module)
	if err != nil {
		return err
	}
	s.Module = q
	return nil
}

// RewriteSpecifiers replaces every import/export specifier with the
// canonical id mapping returns for it.
func RewriteSpecifiers(t *Tree, mapping func(spec string) (id string, ok bool)) error {
	if err := WalkModuleDecls(t, specRewriter{mapping: mapping}); err != nil {
		return diag.NewTransformError(t.Module.String(), diag.XfmInfo, err.Error())
	}
	return nil
}

// quote renders s as a JavaScript string literal.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// Quote is quote for callers outside the package.
func Quote(s string) string {
	return string(quote(s))
}

var errBadString = errors.New("malformed string literal")

// unquote decodes a JavaScript string literal as the parser hands it over.
func unquote(lit []byte) (string, error) {
	if len(lit) < 2 || (lit[0] != '"' && lit[0] != '\'') || lit[len(lit)-1] != lit[0] {
		return "", errBadString
	}
	body := lit[1 : len(lit)-1]
	if bytes.IndexByte(body, '\\') < 0 {
		return string(body), nil
	}
	var sb strings.Builder
	for len(body) > 0 {
		c := body[0]
		if c != '\\' {
			sb.WriteByte(c)
			body = body[1:]
			continue
		}
		if len(body) < 2 {
			return "", errBadString
		}
		esc := body[1]
		body = body[2:]
		switch esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			r, rest, err := hexRune(body, 2)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			body = rest
		case 'u':
			if len(body) > 0 && body[0] == '{' {
				end := bytes.IndexByte(body, '}')
				if end < 0 {
					return "", errBadString
				}
				r, _, err := hexRune(body[1:end], end-1)
				if err != nil {
					return "", err
				}
				sb.WriteRune(r)
				body = body[end+1:]
				continue
			}
			r, rest, err := hexRune(body, 4)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			body = rest
		default:
			sb.WriteByte(esc)
		}
	}
	return sb.String(), nil
}

func hexRune(b []byte, n int) (rune, []byte, error) {
	if n == 0 || len(b) < n {
		return 0, nil, errBadString
	}
	v, err := strconv.ParseUint(string(b[:n]), 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, nil, errBadString
	}
	return rune(v), b[n:], nil
}
