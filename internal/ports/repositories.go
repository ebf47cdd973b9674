package ports

import (
	"context"

	"github.com/bnema/teamboard/internal/domain"
)

type SessionRepository interface {
	Load(ctx context.Context) (domain.Bindings, error)
	Save(ctx context.Context, bindings domain.Bindings) error
}

type BoardRepository interface {
	List(ctx context.Context) ([]domain.Message, error)
	// Count returns the number of non-blank lines in the log.
	Count(ctx context.Context) (uint64, error)
	Append(ctx context.Context, message domain.Message) error
}

type ClaimRepository interface {
	Load(ctx context.Context) (domain.ClaimSet, error)
	Save(ctx context.Context, claims domain.ClaimSet) error
}

type LastSeenRepository interface {
	Get(ctx context.Context, sessionID string) (uint64, error)
	Set(ctx context.Context, sessionID string, id uint64) error
}

type BriefingStore interface {
	Get(ctx context.Context, role domain.RoleSlug) (string, error)
	Put(ctx context.Context, role domain.RoleSlug, content string, updatedBy string) error
}
