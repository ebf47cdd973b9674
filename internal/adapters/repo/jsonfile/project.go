package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
	"github.com/tidwall/jsonc"
)

type ProjectConfigReader struct {
	path string
}

var _ ports.ProjectConfigReader = (*ProjectConfigReader)(nil)

func NewProjectConfigReader(layout Layout) *ProjectConfigReader {
	return &ProjectConfigReader{path: layout.ProjectFile()}
}

// Load reads project.json on every call. Comments and trailing commas are
// accepted. Unlike the other state files a missing or corrupt config is an
// error: role definitions cannot be guessed.
func (r *ProjectConfigReader) Load(ctx context.Context) (domain.ProjectConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProjectConfig{}, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ProjectConfig{}, fmt.Errorf("%w: %s not found", domain.ErrConfigInvalid, r.path)
		}
		return domain.ProjectConfig{}, &domain.IOError{Op: "read", Path: r.path, Err: err}
	}

	var schema projectSchema
	if err := json.Unmarshal(jsonc.ToJSON(data), &schema); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("%w: decode %s: %v", domain.ErrConfigInvalid, r.path, err)
	}

	cfg := schema.toDomain()
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, err
	}

	return cfg, nil
}
