package jsonfile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

type ClaimRepository struct {
	path   string
	mu     *sync.RWMutex
	logger *slog.Logger
}

var _ ports.ClaimRepository = (*ClaimRepository)(nil)

func NewClaimRepository(layout Layout, logger *slog.Logger) *ClaimRepository {
	path := layout.ClaimsFile()
	return &ClaimRepository{path: path, mu: lockForPath(path), logger: discardIfNil(logger)}
}

func (r *ClaimRepository) Load(ctx context.Context) (domain.ClaimSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file := map[string]claimSchema{}
	found, err := readJSONFile(r.path, &file, r.logger)
	if err != nil {
		return nil, err
	}
	if !found {
		file = map[string]claimSchema{}
	}

	claims := make(domain.ClaimSet, len(file))
	for holder, entry := range file {
		claims[holder] = entry.toDomain()
	}

	return claims, nil
}

func (r *ClaimRepository) Save(ctx context.Context, claims domain.ClaimSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := make(map[string]claimSchema, len(claims))
	for holder, claim := range claims {
		file[holder] = claimToSchema(claim)
	}

	return writeJSONFile(r.path, file)
}
