package dag

import (
	"fmt"
	"strings"

	"mako/internal/diag"
	"mako/internal/project"
	"mako/internal/source"
)

// ReportCycles emits one warning per import cycle, anchored at the cycle's
// first module. Cycles are legal; the warning only points them out.
func ReportCycles(idx ModuleIndex, metas []project.ModuleMeta, cycles [][]ModuleID, reporter diag.Reporter) {
	if reporter == nil || len(cycles) == 0 {
		return
	}
	byID := make(map[project.ModuleID]*project.ModuleMeta, len(metas))
	for i := range metas {
		byID[metas[i].ID] = &metas[i]
	}
	display := func(id project.ModuleID) string {
		if m, ok := byID[id]; ok && m.Path != "" {
			return m.Path
		}
		return string(id)
	}

	for _, cycle := range cycles {
		names := make([]string, 0, len(cycle))
		for _, id := range cycle {
			names = append(names, display(idx.IDToName[int(id)]))
		}
		head := idx.IDToName[int(cycle[0])]
		var span source.Span
		if m, ok := byID[head]; ok {
			span = m.Span
		}
		msg := fmt.Sprintf("import cycle between %s", strings.Join(names, ", "))
		diag.ReportWarning(reporter, diag.GraphImportCycle, span, msg).Emit()
	}
}
