package transform

import (
	"github.com/tdewolff/parse/v2/js"

	"mako/internal/compile"
	"mako/internal/diag"
	"mako/runtimeembed"
)

// injectHelpers prepends the source of every helper the interop rewrite
// asked for, right after the prelude.
func injectHelpers(t *Tree, cc *compile.Context) error {
	used := cc.Helpers.Used(t.Module.String())
	if len(used) == 0 {
		return nil
	}
	var fns []js.IStmt
	for _, h := range used {
		src, err := runtimeembed.Helper(h.Name())
		if err != nil {
			return diag.NewTransformError(t.Module.String(), diag.XfmHelperMissing, err.Error())
		}
		stmts, err := parseSnippet(src)
		if err != nil {
			return diag.NewTransformError(t.Module.String(), diag.XfmHelperMissing, h.Name()+": "+err.Error())
		}
		fns = append(fns, stmts...)
	}
	list := t.body()
	at := min(t.preludeEnd, len(list))
	out := make([]js.IStmt, 0, len(list)+len(fns))
	out = append(out, list[:at]...)
	out = append(out, fns...)
	out = append(out, list[at:]...)
	t.setBody(out)
	return nil
}
