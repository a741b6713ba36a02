package store

import (
	"errors"
	"os"
	"path/filepath"
)

// rename is swapped in tests to simulate a crash before the final step.
var rename = os.Rename

// writeFileAtomic replaces path with data. The target is only touched by the
// final rename, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err = rename(tmpName, path); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return nil
}
