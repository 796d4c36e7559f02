package transform

import (
	"errors"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"mako/internal/compile"
	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/source"
)

// Parse builds the syntax tree of f. Syntax errors become ParseError with a
// span pointing at the offending position.
func Parse(cc *compile.Context, id project.ModuleID, f *source.File) (*Tree, error) {
	// the parser writes a terminator into spare capacity; give it its own copy
	ast, err := js.Parse(parse.NewInputString(string(f.Content)), js.Options{})
	if err != nil {
		return nil, parseError(id, f, err)
	}
	return &Tree{Module: id, File: f.ID, AST: ast, Phase: PhaseParsed}, nil
}

func parseError(id project.ModuleID, f *source.File, err error) error {
	var perr *parse.Error
	if !errors.As(err, &perr) {
		return diag.NewParseError(id.String(), source.Span{File: f.ID}, err.Error())
	}
	start := f.Offset(perr.Line, perr.Column)
	end := start
	if int(end) < len(f.Content) {
		end++
	}
	return diag.NewParseError(id.String(), source.Span{File: f.ID, Start: start, End: end}, perr.Message)
}

// parseSnippet parses generated code into statements.
func parseSnippet(src string) ([]js.IStmt, error) {
	ast, err := js.Parse(parse.NewInputString(src), js.Options{})
	if err != nil {
		return nil, err
	}
	return ast.BlockStmt.List, nil
}
