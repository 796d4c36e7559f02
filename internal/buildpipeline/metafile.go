package buildpipeline

import (
	"encoding/json"

	"mako/internal/project"
)

// Metafile describes a build in the shape esbuild uses, so existing bundle
// analyzers can read it.
type Metafile struct {
	Inputs  map[string]MetaInput  `json:"inputs"`
	Outputs map[string]MetaOutput `json:"outputs"`
}

type MetaInput struct {
	Bytes   int          `json:"bytes"`
	Imports []MetaImport `json:"imports"`
	Hash    string       `json:"hash"`
}

type MetaImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Original string `json:"original"`
}

type MetaOutput struct {
	Bytes      int                       `json:"bytes"`
	EntryPoint string                    `json:"entryPoint"`
	Inputs     map[string]MetaOutputSize `json:"inputs"`
}

type MetaOutputSize struct {
	BytesInOutput int `json:"bytesInOutput"`
}

// NewMetafile summarizes a compiled result written to outPath.
func NewMetafile(result CompileResult, outPath string) Metafile {
	root := result.Context.Root
	mf := Metafile{
		Inputs:  make(map[string]MetaInput, result.Graph.Len()),
		Outputs: make(map[string]MetaOutput, 1),
	}
	out := MetaOutput{
		Bytes:      len(result.Bundle),
		EntryPoint: displayPath(root, result.Graph.Entry.String()),
		Inputs:     make(map[string]MetaOutputSize, result.Graph.Len()),
	}
	for _, meta := range result.Graph.Metas(result.Context) {
		path := displayPath(root, meta.ID.String())
		in := MetaInput{
			Bytes:   meta.Bytes,
			Imports: make([]MetaImport, 0, len(meta.Imports)),
			Hash:    meta.ContentHash.Short(),
		}
		for _, imp := range meta.Imports {
			in.Imports = append(in.Imports, MetaImport{
				Path:     displayPath(root, imp.ID.String()),
				Kind:     importKind(result, meta.ID, imp),
				Original: imp.Specifier,
			})
		}
		mf.Inputs[path] = in
		if result.Table != nil {
			out.Inputs[path] = MetaOutputSize{BytesInOutput: len(result.Table.Code[meta.ID])}
		}
	}
	mf.Outputs[displayPath(root, outPath)] = out
	return mf
}

// importKind is "import-statement" unless the specifier only appears in an
// export-from declaration.
func importKind(result CompileResult, id project.ModuleID, imp project.ImportMeta) string {
	m, ok := result.Graph.Get(id)
	if !ok {
		return "import-statement"
	}
	if m.ReexportOnly(imp.Specifier) {
		return "export-statement"
	}
	return "import-statement"
}

// Encode renders the metafile as indented JSON.
func (m Metafile) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
