package diagfmt

import (
	"path/filepath"

	"mako/internal/diag"
	"mako/internal/source"
)

func formatPath(fs *source.FileSet, path string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeBasename:
		return filepath.Base(path)
	default:
		if fs == nil {
			return path
		}
		return fs.Rel(path)
	}
}

// location returns the file path of d and whether its span can be resolved.
func location(d *diag.Diagnostic, fs *source.FileSet) (string, bool) {
	if d.NoSpan || fs == nil || int(d.Primary.File) >= fs.Len() {
		return d.Path, false
	}
	return fs.Get(d.Primary.File).Path, true
}
