package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"mako/internal/driver"
)

// displayPath shows a module id relative to root when it lies inside it.
func displayPath(root, id string) string {
	path := filepath.Clean(filepath.FromSlash(id))
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// ModuleFiles lists the graph's modules as display paths, sorted and
// deduplicated.
func ModuleFiles(root string, g *driver.Graph) []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]struct{}, g.Len())
	files := make([]string, 0, g.Len())
	for _, id := range g.IDs() {
		path := displayPath(root, id.String())
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}
