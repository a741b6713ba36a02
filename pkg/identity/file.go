package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePerm restricts the identity file to its owner.
const FilePerm os.FileMode = 0o600

// Path returns the location of the identity file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether an identity file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the UUID stored at path and derives its identity.
// A missing file is reported as ErrIdentityNotFound.
func Load(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, path)
		}
		return Identity{}, errors.Join(ErrFailedToReadFile, err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: %s", ErrIdentityFileIsEmpty, path)
	}
	return Parse(raw)
}

// Save writes the UUID of ident to path with owner-only permissions.
// The file is written to a temporary sibling first and renamed into place, so a
// failed save leaves no partial identity behind.
func Save(path string, ident Identity) error {
	if ident.IsZero() {
		return errors.Join(ErrFailedToWriteFile, ErrInvalidUUID)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+FileName+".*.tmp")
	if err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(ident.UUID().String()); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return nil
}
