package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// ввод-вывод
	IOInfo            Code = 1000
	IOLoadFile        Code = 1001
	IOWriteOutput     Code = 1002
	IOCreateOutputDir Code = 1003

	// синтаксис
	SynInfo  Code = 2000
	SynParse Code = 2001

	// transform stages
	XfmInfo              Code = 3000
	XfmImportCollision   Code = 3001
	XfmDuplicateImport   Code = 3002
	XfmInteropTwice      Code = 3003
	XfmUnsupportedExport Code = 3004
	XfmHelperMissing     Code = 3005
	XfmReservedName      Code = 3006
	XfmDuplicateExport   Code = 3007

	// resolution
	ResInfo           Code = 4000
	ResUnresolved     Code = 4001
	ResEntryMissing   Code = 4002
	ResBadPackage     Code = 4003
	ResEmptySpecifier Code = 4004

	// emitter
	EmitInfo          Code = 5000
	EmitFailed        Code = 5001
	EmitInvalidOutput Code = 5002

	// module graph
	GraphInfo        Code = 6000
	GraphImportCycle Code = 6001
	GraphSelfImport  Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	IOInfo:               "I/O information",
	IOLoadFile:           "Cannot load module source",
	IOWriteOutput:        "Cannot write bundle",
	IOCreateOutputDir:    "Cannot create output directory",
	SynInfo:              "Syntax information",
	SynParse:             "Invalid module syntax",
	XfmInfo:              "Transform information",
	XfmImportCollision:   "Import binding collides with a module declaration",
	XfmDuplicateImport:   "Duplicate import binding",
	XfmInteropTwice:      "Interop transform applied twice",
	XfmUnsupportedExport: "Unsupported export form",
	XfmHelperMissing:     "Unknown runtime helper",
	XfmReservedName:      "Declaration shadows a module runtime name",
	XfmDuplicateExport:   "Duplicate export name",
	ResInfo:              "Resolution information",
	ResUnresolved:        "Unresolved import",
	ResEntryMissing:      "Entry module not found",
	ResBadPackage:        "Invalid package manifest",
	ResEmptySpecifier:    "Empty import specifier",
	EmitInfo:             "Emitter information",
	EmitFailed:           "Code emission failed",
	EmitInvalidOutput:    "Emitted code does not parse",
	GraphInfo:            "Module graph information",
	GraphImportCycle:     "Import cycle",
	GraphSelfImport:      "Module imports itself",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("XFM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("GRF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
