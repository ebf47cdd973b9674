package fsutil

import (
	"os"
	"path/filepath"

	"github.com/bnema/teamboard/internal/domain"
)

const DirMode = 0o755

// WriteFileAtomic replaces path through a temp file in the same directory
// and a rename, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return &domain.IOError{Op: "create directory", Path: dir, Err: err}
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &domain.IOError{Op: "create temp file", Path: dir, Err: err}
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return &domain.IOError{Op: "write temp file", Path: tempName, Err: err}
	}

	if err := tempFile.Chmod(mode); err != nil {
		_ = tempFile.Close()
		return &domain.IOError{Op: "chmod temp file", Path: tempName, Err: err}
	}

	if err := tempFile.Close(); err != nil {
		return &domain.IOError{Op: "close temp file", Path: tempName, Err: err}
	}

	if err := os.Rename(tempName, path); err != nil {
		return &domain.IOError{Op: "replace file", Path: path, Err: err}
	}

	cleanup = false

	return nil
}
