package jsonfile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

type SessionRepository struct {
	path   string
	mu     *sync.RWMutex
	logger *slog.Logger
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(layout Layout, logger *slog.Logger) *SessionRepository {
	path := layout.SessionsFile()
	return &SessionRepository{path: path, mu: lockForPath(path), logger: discardIfNil(logger)}
}

func (r *SessionRepository) Load(ctx context.Context) (domain.Bindings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file sessionsFileSchema
	found, err := readJSONFile(r.path, &file, r.logger)
	if err != nil {
		return nil, err
	}
	if !found {
		file = sessionsFileSchema{}
	}

	bindings := make(domain.Bindings, 0, len(file.Bindings))
	for _, entry := range file.Bindings {
		if entry.Role == "" || entry.SessionID == "" {
			r.logger.Warn("skipping incomplete session binding", "path", r.path, "role", entry.Role)
			continue
		}
		bindings = append(bindings, entry.toDomain())
	}

	return bindings, nil
}

func (r *SessionRepository) Save(ctx context.Context, bindings domain.Bindings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := sessionsFileSchema{Bindings: make([]bindingSchema, 0, len(bindings))}
	for _, binding := range bindings {
		file.Bindings = append(file.Bindings, bindingToSchema(binding))
	}

	return writeJSONFile(r.path, file)
}
