package transform

import (
	"github.com/tdewolff/parse/v2/js"
)

// renamer rewrites every use of an import binding into a member access on
// the required module, following variable links to the module-level use.
type renamer struct {
	targets map[string]importRef
	roots   map[*js.Var]*importRef
}

func newRenamer(targets map[string]importRef) *renamer {
	return &renamer{targets: targets, roots: make(map[*js.Var]*importRef)}
}

func (r *renamer) lookup(v *js.Var) *importRef {
	root := v
	for root.Link != nil {
		root = root.Link
	}
	if ref, ok := r.roots[root]; ok {
		return ref
	}
	var ref *importRef
	// import bindings are never declared, so their uses stay unresolved
	if root.Decl == js.NoDecl {
		if found, ok := r.targets[string(root.Data)]; ok {
			ref = &found
		}
	}
	r.roots[root] = ref
	return ref
}

// unbound wraps a member call target so it is invoked without a receiver:
// f() where f is an imported function must not see the exports object as this.
func (r *renamer) unbound(x js.IExpr) js.IExpr {
	v, ok := x.(*js.Var)
	if !ok || v == nil {
		return x
	}
	ref := r.lookup(v)
	if ref == nil || ref.imported == "*" {
		return x
	}
	return &js.GroupExpr{X: &js.CommaExpr{List: []js.IExpr{
		&js.LiteralExpr{TokenType: js.DecimalToken, Data: []byte("0")},
		v,
	}}}
}

func (r *renamer) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.Var:
		if n == nil {
			return nil
		}
		if ref := r.lookup(n); ref != nil {
			n.Data = []byte(ref.expr())
		}
	case *js.CallExpr:
		n.X = r.unbound(n.X)
	case *js.TemplateExpr:
		if n.Tag != nil {
			n.Tag = r.unbound(n.Tag)
		}
	}
	return r
}

func (r *renamer) Exit(js.INode) {}
