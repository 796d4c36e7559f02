package dag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"mako/internal/project"
)

// ModuleID is a dense index into ModuleIndex.IDToName.
type ModuleID uint32

type ModuleIndex struct {
	NameToID map[project.ModuleID]ModuleID
	IDToName []project.ModuleID
}

// BuildIndex собирает уникальные id модулей и их импортов, сортирует и
// раздаёт плотные номера по порядку.
func BuildIndex(metas []project.ModuleMeta) ModuleIndex {
	uniq := make(map[project.ModuleID]struct{}, len(metas))
	for _, meta := range metas {
		if meta.ID != "" {
			uniq[meta.ID] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.ID != "" {
				uniq[dep.ID] = struct{}{}
			}
		}
	}

	names := make([]project.ModuleID, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	nameToID := make(map[project.ModuleID]ModuleID, len(names))
	for i, name := range names {
		id, err := safecast.Conv[ModuleID](i)
		if err != nil {
			panic(fmt.Errorf("module id overflow: %w", err))
		}
		nameToID[name] = id
	}
	return ModuleIndex{NameToID: nameToID, IDToName: names}
}

// Names maps dense ids back to module ids.
func (idx ModuleIndex) Names(ids []ModuleID) []project.ModuleID {
	out := make([]project.ModuleID, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
