package project

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// ModuleID is the canonical identifier of a module: an absolute, cleaned,
// symlink-free path with forward slashes, NFC-normalized when the file
// system accepts the NFC spelling for the same file. It is the graph
// dedup key and the string the runtime loader is keyed by.
type ModuleID string

func (id ModuleID) String() string { return string(id) }

// Dir returns the directory relative specifiers of this module resolve against.
func (id ModuleID) Dir() string {
	return filepath.Dir(filepath.FromSlash(string(id)))
}

// Canonicalize maps an existing file path to its ModuleID. The id always
// names the physical file: NFC is applied only when the normalized path
// reaches the same file as the symlink-resolved one.
func Canonicalize(path string) (ModuleID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to make %q absolute: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	resolved = filepath.Clean(resolved)
	if nfc := norm.NFC.String(resolved); nfc != resolved && sameFile(resolved, nfc) {
		resolved = nfc
	}
	return ModuleID(filepath.ToSlash(resolved)), nil
}

func sameFile(a, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}
