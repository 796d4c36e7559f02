package source

import (
	"strings"
	"unicode/utf8"
)

// FileID indexes FileSet.files. Reloading a path yields a new FileID.
type FileID uint32

// FileFlags records what Load did to the bytes before they were stored.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // no disk read (AddVirtual)
	FileHadBOM
	FileNormalizedCRLF
)

var flagNames = [...]string{"virtual", "bom", "crlf"}

// Has reports whether every bit of flag is set.
func (f FileFlags) Has(flag FileFlags) bool { return f&flag == flag }

func (f FileFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for i, name := range flagNames {
		if f.Has(1 << i) {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// File is one module text as the bundler sees it: Content is already
// BOM-stripped and LF-only, so spans and line numbers index into it directly.
type File struct {
	ID      FileID
	Path    string // slash-separated
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte // sha256 of Content
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line, Col uint32
}

// Offset converts a 1-based line and rune column back into a byte offset,
// clamped to the end of that line.
func (f *File) Offset(line, col int) uint32 {
	size := uint32(len(f.Content)) // #nosec G115 -- bounded in Add
	if line < 1 {
		return 0
	}
	var start uint32
	if line > 1 {
		if line-2 >= len(f.LineIdx) {
			return size
		}
		start = f.LineIdx[line-2] + 1
	}
	end := size
	if line-1 < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	rest := f.Content[start:end]
	for i := 1; i < col && len(rest) > 0; i++ {
		_, n := utf8.DecodeRune(rest)
		rest = rest[n:]
		start += uint32(n) // #nosec G115
	}
	return start
}

// GetLine returns the text of a 1-based line without its newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	n := len(f.LineIdx)
	var start int
	if lineNum > 1 {
		if int(lineNum-2) >= n {
			return ""
		}
		start = int(f.LineIdx[lineNum-2]) + 1
	}
	end := len(f.Content)
	if int(lineNum-1) < n {
		end = int(f.LineIdx[lineNum-1])
	}
	if start >= len(f.Content) {
		return ""
	}
	return string(f.Content[start:end])
}
