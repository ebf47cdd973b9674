package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bnema/teamboard/internal/adapters/fsutil"
	"github.com/bnema/teamboard/internal/domain"
)

// readJSONFile decodes path into target and reports whether it did. A
// missing, empty or malformed file reports false so callers fall back to the
// empty default; malformed content is logged.
func readJSONFile(path string, target any, logger *slog.Logger) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &domain.IOError{Op: "read", Path: path, Err: err}
	}

	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		logger.Warn("ignoring malformed state file", "path", path, "error", err)
		return false, nil
	}

	return true, nil
}

func writeJSONFile(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	return fsutil.WriteFileAtomic(path, append(data, '\n'), stateFileMode)
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return logger
}
