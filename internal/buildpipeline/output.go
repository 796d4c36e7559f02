package buildpipeline

import (
	"errors"
	"os"
	"path/filepath"

	"mako/internal/diag"
)

// writeAtomic writes data to dir/name through a temp file in dir and a
// rename, so a reader never sees a partial file. dir is created here and
// nowhere earlier.
func writeAtomic(dir, name string, data []byte) (err error) {
	target := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return diag.NewWriteError(dir, diag.IOCreateOutputDir, err)
	}
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	defer func() {
		if err != nil {
			// временный файл больше не нужен
			err = errors.Join(err, removeIfExists(f.Name()))
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	if err := f.Close(); err != nil {
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	// #nosec G302 -- bundles are meant to be readable by other tools
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	if err := os.Rename(f.Name(), target); err != nil {
		return diag.NewWriteError(target, diag.IOWriteOutput, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
