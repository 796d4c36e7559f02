// Package emit serializes runtime-form trees back into JavaScript text.
package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"mako/internal/diag"
	"mako/internal/transform"
)

// Emitter prints trees. With Verify set, every result is parsed again and
// rejected if it is not valid JavaScript.
type Emitter struct {
	Verify bool
}

var errNoTree = errors.New("no syntax tree")

// Emit returns the code for t. Any failure, including a panic inside the
// printer, becomes an EmitError naming the module.
func (e Emitter) Emit(t *transform.Tree) (code string, err error) {
	if t == nil || t.AST == nil {
		module := ""
		if t != nil {
			module = t.Module.String()
		}
		return "", diag.NewEmitError(module, diag.EmitFailed, errNoTree)
	}
	defer func() {
		if r := recover(); r != nil {
			code = ""
			err = diag.NewEmitError(t.Module.String(), diag.EmitFailed, fmt.Errorf("printer panic: %v", r))
		}
	}()

	var sb strings.Builder
	t.AST.JS(&sb)
	code = sb.String()

	if e.Verify {
		if _, perr := js.Parse(parse.NewInputString(code), js.Options{}); perr != nil {
			return "", diag.NewEmitError(t.Module.String(), diag.EmitInvalidOutput, perr)
		}
	}
	return code, nil
}
