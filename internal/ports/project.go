package ports

import (
	"context"

	"github.com/bnema/teamboard/internal/domain"
)

// ProjectConfigReader loads the roster fresh on every call so edits to the
// project definition take effect without restarting agents.
type ProjectConfigReader interface {
	Load(ctx context.Context) (domain.ProjectConfig, error)
}
