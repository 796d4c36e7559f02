// Package runtimeembed provides the JavaScript sources embedded into every
// bundle: the module loader preamble and the interop helpers.
package runtimeembed

import (
	"embed"
	"fmt"
	"io/fs"
)

// loader.js opens the bundle's outer function; the renderer appends the
// define() calls, the entry require() and the closing "})();".
//
//go:embed loader.js
var loader string

//go:embed helpers/*.js
var helpersFS embed.FS

// Loader returns the preamble defining define() and require().
func Loader() string {
	return loader
}

// Helper returns the source of the named helper function.
func Helper(name string) (string, error) {
	data, err := helpersFS.ReadFile("helpers/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("unknown runtime helper %q: %w", name, err)
	}
	return string(data), nil
}

// HelpersFS exposes the embedded helper sources.
func HelpersFS() fs.FS {
	return helpersFS
}
