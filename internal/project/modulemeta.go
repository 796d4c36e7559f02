package project

import (
	"sort"

	"mako/internal/source"
)

// ImportMeta is one resolved dependency edge of a module.
type ImportMeta struct {
	Specifier string
	ID        ModuleID
	Span      source.Span
}

// ModuleMeta is the serializable summary of a graph node used for cycle
// analysis, graph dumps and the metafile.
type ModuleMeta struct {
	ID          ModuleID
	Path        string      // путь относительно корня проекта
	Span        source.Span // span всего файла
	Bytes       int
	Imports     []ImportMeta
	Exports     []string
	ContentHash Digest
	ModuleHash  Digest // хеш модуля с учётом зависимостей
}

// SortMetas orders metas by id.
func SortMetas(metas []ModuleMeta) {
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
}

// ComputeModuleHashes fills ModuleHash for every meta as the combination of
// its content hash and the content hashes of its direct dependencies in
// id order. Dependencies outside metas are skipped.
func ComputeModuleHashes(metas []ModuleMeta) {
	content := make(map[ModuleID]Digest, len(metas))
	for i := range metas {
		content[metas[i].ID] = metas[i].ContentHash
	}
	for i := range metas {
		ids := make([]ModuleID, 0, len(metas[i].Imports))
		seen := make(map[ModuleID]struct{}, len(metas[i].Imports))
		for _, imp := range metas[i].Imports {
			if _, dup := seen[imp.ID]; dup {
				continue
			}
			if _, ok := content[imp.ID]; !ok {
				continue
			}
			seen[imp.ID] = struct{}{}
			ids = append(ids, imp.ID)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		deps := make([]Digest, len(ids))
		for k, id := range ids {
			deps[k] = content[id]
		}
		metas[i].ModuleHash = Combine(metas[i].ContentHash, deps...)
	}
}

// GraphHash combines the module hashes of metas in id order. The result
// identifies a build input set independent of discovery order.
func GraphHash(metas []ModuleMeta) Digest {
	sorted := append([]ModuleMeta(nil), metas...)
	SortMetas(sorted)
	hashes := make([]Digest, len(sorted))
	for i := range sorted {
		hashes[i] = sorted[i].ModuleHash
	}
	return Combine(Digest{}, hashes...)
}
