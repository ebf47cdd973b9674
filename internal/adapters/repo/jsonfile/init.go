package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/teamboard/internal/adapters/fsutil"
	"github.com/bnema/teamboard/internal/domain"
)

var ErrProjectExists = errors.New("project already initialized")

// DefaultProject is the roster written by InitProject.
func DefaultProject(name string) domain.ProjectConfig {
	retention := domain.DefaultMessageRetentionDays

	return domain.ProjectConfig{
		Name: name,
		Roles: map[domain.RoleSlug]domain.Role{
			"lead": {
				Title:        "Tech Lead",
				MaxInstances: 1,
				Permissions:  []domain.Capability{domain.CapabilityBroadcast, domain.CapabilityAssignTasks},
				Description:  "Plans the work, assigns tasks and keeps the team unblocked.",
			},
			"developer": {
				Title:        "Developer",
				MaxInstances: 2,
				Permissions:  []domain.Capability{},
				Description:  "Implements assigned tasks and claims files before editing them.",
			},
			"reviewer": {
				Title:        "Reviewer",
				MaxInstances: 1,
				Permissions:  []domain.Capability{},
				Description:  "Reviews finished work and reports findings to the author.",
			},
		},
		Settings: domain.Settings{
			HeartbeatTimeoutSeconds: domain.DefaultHeartbeatTimeoutSeconds,
			MessageRetentionDays:    &retention,
			WorkflowType:            "pipeline",
		},
	}
}

// InitProject scaffolds the state directory with the default roster and one
// briefing per role. It refuses to overwrite an existing project.json.
func InitProject(projectDir, name string) (Layout, error) {
	layout, err := NewLayout(projectDir)
	if err != nil {
		return Layout{}, err
	}

	if _, err := os.Stat(layout.ProjectFile()); err == nil {
		return Layout{}, fmt.Errorf("%w: %s", ErrProjectExists, layout.ProjectFile())
	} else if !errors.Is(err, os.ErrNotExist) {
		return Layout{}, &domain.IOError{Op: "stat", Path: layout.ProjectFile(), Err: err}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = filepath.Base(layout.Root)
	}

	cfg := DefaultProject(name)
	if err := writeJSONFile(layout.ProjectFile(), projectToSchema(cfg)); err != nil {
		return Layout{}, err
	}

	for _, slug := range cfg.RoleSlugs() {
		role := cfg.Roles[slug]
		path := filepath.Join(layout.RolesDir(), string(slug)+".md")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		body := fmt.Sprintf("# %s\n\n%s\n", role.Title, role.Description)
		if err := fsutil.WriteFileAtomic(path, []byte(body), stateFileMode); err != nil {
			return Layout{}, err
		}
	}

	if err := os.MkdirAll(layout.LastSeenDir(), stateDirMode); err != nil {
		return Layout{}, &domain.IOError{Op: "create directory", Path: layout.LastSeenDir(), Err: err}
	}

	return layout, nil
}
