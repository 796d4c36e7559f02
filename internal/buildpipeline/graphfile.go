package buildpipeline

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"mako/internal/project"
)

// graphSchemaVersion is bumped whenever GraphSnapshot changes shape.
const graphSchemaVersion uint16 = 1

// GraphSnapshot is the serializable module graph: `mako graph` prints it and
// builds with graph_snapshot enabled store it next to the bundle.
type GraphSnapshot struct {
	Schema  uint16           `msgpack:"schema" json:"schema"`
	Entry   string           `msgpack:"entry" json:"entry"`
	Hash    string           `msgpack:"hash" json:"hash"`
	Modules []ModuleSnapshot `msgpack:"modules" json:"modules"`
	Cycles  [][]string       `msgpack:"cycles" json:"cycles,omitempty"`
}

type ModuleSnapshot struct {
	ID         string           `msgpack:"id" json:"id"`
	Path       string           `msgpack:"path" json:"path"`
	Bytes      int              `msgpack:"bytes" json:"bytes"`
	Exports    []string         `msgpack:"exports" json:"exports,omitempty"`
	Imports    []ImportSnapshot `msgpack:"imports" json:"imports,omitempty"`
	ModuleHash string           `msgpack:"module_hash" json:"module_hash"`
}

type ImportSnapshot struct {
	Specifier string `msgpack:"specifier" json:"specifier"`
	ID        string `msgpack:"id" json:"id"`
}

// NewGraphSnapshot captures the graph of a discovered or compiled result.
func NewGraphSnapshot(result CompileResult) GraphSnapshot {
	metas := result.Graph.Metas(result.Context)
	snap := GraphSnapshot{
		Schema:  graphSchemaVersion,
		Entry:   result.Graph.Entry.String(),
		Hash:    project.GraphHash(metas).String(),
		Modules: make([]ModuleSnapshot, 0, len(metas)),
	}
	for _, meta := range metas {
		ms := ModuleSnapshot{
			ID:         meta.ID.String(),
			Path:       meta.Path,
			Bytes:      meta.Bytes,
			Exports:    meta.Exports,
			ModuleHash: meta.ModuleHash.Short(),
		}
		for _, imp := range meta.Imports {
			ms.Imports = append(ms.Imports, ImportSnapshot{Specifier: imp.Specifier, ID: imp.ID.String()})
		}
		snap.Modules = append(snap.Modules, ms)
	}
	for _, cycle := range result.Cycles {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = id.String()
		}
		snap.Cycles = append(snap.Cycles, names)
	}
	return snap
}

// EncodeMsgpack serializes the snapshot.
func (s GraphSnapshot) EncodeMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGraphSnapshot reads a snapshot written by EncodeMsgpack.
func DecodeGraphSnapshot(data []byte) (GraphSnapshot, error) {
	var s GraphSnapshot
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return GraphSnapshot{}, err
	}
	if s.Schema != graphSchemaVersion {
		return GraphSnapshot{}, fmt.Errorf("graph snapshot schema %d, want %d", s.Schema, graphSchemaVersion)
	}
	return s, nil
}
