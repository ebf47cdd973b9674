package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

type LastSeenRepository struct {
	dir    string
	clock  ports.Clock
	logger *slog.Logger
}

var _ ports.LastSeenRepository = (*LastSeenRepository)(nil)

func NewLastSeenRepository(layout Layout, clock ports.Clock, logger *slog.Logger) *LastSeenRepository {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &LastSeenRepository{dir: layout.LastSeenDir(), clock: clock, logger: discardIfNil(logger)}
}

// Get returns zero for a session that never read the board.
func (r *LastSeenRepository) Get(ctx context.Context, sessionID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := r.pathFor(sessionID)
	if err != nil {
		return 0, err
	}

	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	var marker lastSeenSchema
	found, err := readJSONFile(path, &marker, r.logger)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	return marker.LastSeenID, nil
}

func (r *LastSeenRepository) Set(ctx context.Context, sessionID string, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.pathFor(sessionID)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	return writeJSONFile(path, lastSeenSchema{
		LastSeenID: id,
		UpdatedAt:  domain.FormatTimestamp(r.clock.Now()),
	})
}

func (r *LastSeenRepository) pathFor(sessionID string) (string, error) {
	name := sanitizeSessionID(sessionID)
	if name == "" {
		return "", fmt.Errorf("%w: session id %q has no usable characters", domain.ErrInvalidInput, sessionID)
	}

	return filepath.Join(r.dir, name+".json"), nil
}

// sanitizeSessionID maps the id onto [A-Za-z0-9._-]; anything else becomes '_'.
func sanitizeSessionID(sessionID string) string {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" || strings.Trim(trimmed, ".") == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// lockForPath shares one in-process mutex per state file across repository
// instances. Cross-process exclusion is the file lock's job.
func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu

	return mu
}
