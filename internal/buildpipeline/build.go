package buildpipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mako/internal/trace"
)

// Side files written next to the bundle when enabled.
const (
	MetafileName  = "meta.json"
	GraphFileName = "graph.msgpack"
)

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	CompileResult
	OutputPath   string
	MetafilePath string
	GraphPath    string
}

// Build compiles and writes the bundle. Nothing is written, and the output
// directory is not created, unless the whole compile succeeded.
func Build(ctx context.Context, req *CompileRequest) (BuildResult, error) {
	var result BuildResult
	compileRes, err := Compile(ctx, req)
	result.CompileResult = compileRes
	if err != nil {
		return result, err
	}
	cfg := req.Config

	writeStart := time.Now()
	emitStage(req.Progress, StageWrite, StatusWorking, nil, 0)
	_, span := trace.Start(ctx, trace.ScopeStage, "write")
	idx := result.Timer.Begin("write")
	err = result.write(cfg.OutputDir(), cfg.OutFile, cfg.Metafile, cfg.GraphFile)
	if err != nil {
		span.End("failed")
		emitStage(req.Progress, StageWrite, StatusError, err, 0)
		return result, err
	}
	span.End(result.OutputPath)
	result.Timer.End(idx, displayPath(cfg.Root, result.OutputPath))
	result.Timings.Set(StageWrite, time.Since(writeStart))
	emitStage(req.Progress, StageWrite, StatusDone, nil, time.Since(writeStart))
	return result, nil
}

// sideFile is an output written next to the bundle.
type sideFile struct {
	name   string
	encode func() ([]byte, error)
	path   *string
}

func (r *BuildResult) write(dir, file string, metafile, graph bool) error {
	out := filepath.Join(dir, file)
	var sides []sideFile
	if metafile {
		sides = append(sides, sideFile{
			name:   MetafileName,
			encode: func() ([]byte, error) { return NewMetafile(r.CompileResult, out).Encode() },
			path:   &r.MetafilePath,
		})
	}
	if graph {
		sides = append(sides, sideFile{
			name:   GraphFileName,
			encode: func() ([]byte, error) { return NewGraphSnapshot(r.CompileResult).EncodeMsgpack() },
			path:   &r.GraphPath,
		})
	}
	if err := writeOutputs(dir, file, []byte(r.Bundle), sides); err != nil {
		return err
	}
	r.OutputPath = out
	return nil
}

// writeOutputs encodes every side file before touching the disk, so a
// failed encode leaves the previous outputs in place.
func writeOutputs(dir, file string, bundle []byte, sides []sideFile) error {
	encoded := make([][]byte, len(sides))
	for i, side := range sides {
		data, err := side.encode()
		if err != nil {
			return fmt.Errorf("%s: %w", side.name, err)
		}
		encoded[i] = data
	}
	if err := writeAtomic(dir, file, bundle); err != nil {
		return err
	}
	for i, side := range sides {
		if err := writeAtomic(dir, side.name, encoded[i]); err != nil {
			return err
		}
		if side.path != nil {
			*side.path = filepath.Join(dir, side.name)
		}
	}
	return nil
}
