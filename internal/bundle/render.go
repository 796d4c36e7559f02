// Package bundle assembles generated module code into a single script.
package bundle

import (
	"errors"
	"fmt"
	"strings"

	"mako/runtimeembed"

	"mako/internal/diag"
	"mako/internal/generate"
	"mako/internal/project"
	"mako/internal/transform"
)

// Options control the bundle header.
type Options struct {
	// Banner adds a "// mako bundle: <n> modules" line.
	Banner bool
	// Legal comments are printed first, one per line, in the given order.
	Legal []string
}

var errEntryNotGenerated = errors.New("entry module has no generated code")

// Render returns the bundle text: header, loader, one define() per table
// entry in id order, then the call that starts entry.
func Render(tab *generate.Table, entry project.ModuleID, opts Options) (string, error) {
	if _, ok := tab.Code[entry]; !ok {
		return "", diag.NewEmitError(entry.String(), diag.EmitFailed, errEntryNotGenerated)
	}

	var sb strings.Builder
	sb.Grow(tab.Bytes() + len(runtimeembed.Loader()) + 128*tab.Len())

	for _, c := range opts.Legal {
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	if opts.Banner {
		fmt.Fprintf(&sb, "// mako bundle: %d modules\n", tab.Len())
	}

	sb.WriteString(runtimeembed.Loader())
	if !strings.HasSuffix(runtimeembed.Loader(), "\n") {
		sb.WriteByte('\n')
	}
	for _, id := range tab.IDs() {
		fmt.Fprintf(&sb, "define(%s, function (module, exports, require) {\n", transform.Quote(id.String()))
		code := tab.Code[id]
		sb.WriteString(code)
		if !strings.HasSuffix(code, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteString("});\n")
	}
	fmt.Fprintf(&sb, "require(%s);\n", transform.Quote(entry.String()))
	sb.WriteString("})();\n")
	return sb.String(), nil
}
