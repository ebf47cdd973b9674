package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

const maxBoardLineBytes = 4 << 20

// BoardRepository is the append-only message log, one JSON object per line.
type BoardRepository struct {
	path   string
	mu     *sync.RWMutex
	logger *slog.Logger
}

var _ ports.BoardRepository = (*BoardRepository)(nil)

func NewBoardRepository(layout Layout, logger *slog.Logger) *BoardRepository {
	path := layout.BoardFile()
	return &BoardRepository{path: path, mu: lockForPath(path), logger: discardIfNil(logger)}
}

// List decodes every line in file order. Lines that fail to decode are
// skipped with a warning.
func (r *BoardRepository) List(ctx context.Context) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]domain.Message, 0)
	err := r.scan(func(line []byte, number int) {
		var message domain.Message
		if err := json.Unmarshal(line, &message); err != nil {
			r.logger.Warn("skipping malformed board line", "path", r.path, "line", number, "error", err)
			return
		}
		messages = append(messages, message)
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// Count includes malformed lines so ids stay monotonic past a corrupt entry.
func (r *BoardRepository) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var count uint64
	err := r.scan(func([]byte, int) { count++ })
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *BoardRepository) Append(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message %d: %w", message.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), stateDirMode); err != nil {
		return &domain.IOError{Op: "create directory", Path: filepath.Dir(r.path), Err: err}
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, stateFileMode)
	if err != nil {
		return &domain.IOError{Op: "open", Path: r.path, Err: err}
	}
	defer file.Close()

	missingNewline, err := r.lacksTrailingNewline()
	if err != nil {
		return err
	}

	payload := make([]byte, 0, len(line)+2)
	if missingNewline {
		payload = append(payload, '\n')
	}
	payload = append(payload, line...)
	payload = append(payload, '\n')

	if _, err := file.Write(payload); err != nil {
		return &domain.IOError{Op: "append", Path: r.path, Err: err}
	}

	return nil
}

func (r *BoardRepository) scan(visit func(line []byte, number int)) error {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &domain.IOError{Op: "open", Path: r.path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBoardLineBytes)

	number := 0
	for scanner.Scan() {
		number++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		visit(line, number)
	}
	if err := scanner.Err(); err != nil {
		return &domain.IOError{Op: "read", Path: r.path, Err: err}
	}

	return nil
}

// lacksTrailingNewline reports whether a previous writer left a partial
// line, which the next append must terminate first.
func (r *BoardRepository) lacksTrailingNewline() (bool, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return false, &domain.IOError{Op: "open", Path: r.path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return false, &domain.IOError{Op: "stat", Path: r.path, Err: err}
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, &domain.IOError{Op: "read", Path: r.path, Err: err}
	}

	return last[0] != '\n', nil
}
