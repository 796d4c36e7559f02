package compile

import "strings"

// Helper names a runtime helper function the interop rewrite may reference.
type Helper uint8

const (
	// HelperExport defines getters on exports: _export(exports, {name: getter}).
	HelperExport Helper = 1 << iota
	// HelperExportStar copies another module's exports: _export_star(from, to).
	HelperExportStar
	// HelperInteropDefault wraps non-module exports: {default: exports}.
	HelperInteropDefault
)

var helperNames = []struct {
	h    Helper
	name string
}{
	{HelperExport, "_export"},
	{HelperExportStar, "_export_star"},
	{HelperInteropDefault, "_interop_require_default"},
}

// HelperNames lists every helper function name.
func HelperNames() []string {
	out := make([]string, 0, len(helperNames))
	for _, hn := range helperNames {
		out = append(out, hn.name)
	}
	return out
}

func (h Helper) String() string {
	var parts []string
	for _, hn := range helperNames {
		if h&hn.h != 0 {
			parts = append(parts, hn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Name returns the function name of a single helper.
func (h Helper) Name() string {
	for _, hn := range helperNames {
		if h == hn.h {
			return hn.name
		}
	}
	return ""
}

// HelperRegistry records, per module, which helpers its rewritten code calls.
type HelperRegistry struct {
	used map[string]Helper
}

func NewHelperRegistry() *HelperRegistry {
	return &HelperRegistry{used: make(map[string]Helper)}
}

// Require marks h as used by module.
func (r *HelperRegistry) Require(module string, h Helper) {
	r.used[module] |= h
}

// Used returns the helpers module needs, in declaration order.
func (r *HelperRegistry) Used(module string) []Helper {
	set := r.used[module]
	var out []Helper
	for _, hn := range helperNames {
		if set&hn.h != 0 {
			out = append(out, hn.h)
		}
	}
	return out
}
