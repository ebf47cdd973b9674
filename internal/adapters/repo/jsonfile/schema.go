package jsonfile

import "github.com/bnema/teamboard/internal/domain"

type projectSchema struct {
	Name     string                `json:"name"`
	Roles    map[string]roleSchema `json:"roles"`
	Settings settingsSchema        `json:"settings"`
}

type roleSchema struct {
	Title        string   `json:"title"`
	MaxInstances int      `json:"max_instances"`
	Permissions  []string `json:"permissions"`
	Description  string   `json:"description"`
}

type settingsSchema struct {
	HeartbeatTimeoutSeconds int    `json:"heartbeat_timeout_seconds,omitempty"`
	MessageRetentionDays    *int   `json:"message_retention_days,omitempty"`
	HumanInLoop             bool   `json:"human_in_loop"`
	AutoCollab              bool   `json:"auto_collab"`
	WorkflowType            string `json:"workflow_type,omitempty"`
}

type sessionsFileSchema struct {
	Bindings []bindingSchema `json:"bindings"`
}

type bindingSchema struct {
	Role          string `json:"role"`
	Instance      int    `json:"instance"`
	SessionID     string `json:"session_id"`
	ClaimedAt     string `json:"claimed_at"`
	LastHeartbeat string `json:"last_heartbeat"`
	Status        string `json:"status"`
}

type claimSchema struct {
	Files       []string `json:"files"`
	Description string   `json:"description"`
	ClaimedAt   string   `json:"claimed_at"`
	SessionID   string   `json:"session_id"`
}

type lastSeenSchema struct {
	LastSeenID uint64 `json:"last_seen_id"`
	UpdatedAt  string `json:"updated_at"`
}

func (s projectSchema) toDomain() domain.ProjectConfig {
	cfg := domain.ProjectConfig{
		Name:  s.Name,
		Roles: make(map[domain.RoleSlug]domain.Role, len(s.Roles)),
		Settings: domain.Settings{
			HeartbeatTimeoutSeconds: s.Settings.HeartbeatTimeoutSeconds,
			MessageRetentionDays:    s.Settings.MessageRetentionDays,
			HumanInLoop:             s.Settings.HumanInLoop,
			AutoCollab:              s.Settings.AutoCollab,
			WorkflowType:            s.Settings.WorkflowType,
		},
	}

	for slug, role := range s.Roles {
		permissions := make([]domain.Capability, 0, len(role.Permissions))
		for _, permission := range role.Permissions {
			permissions = append(permissions, domain.Capability(permission))
		}
		cfg.Roles[domain.RoleSlug(slug)] = domain.Role{
			Title:        role.Title,
			MaxInstances: role.MaxInstances,
			Permissions:  permissions,
			Description:  role.Description,
		}
	}

	return cfg
}

func projectToSchema(cfg domain.ProjectConfig) projectSchema {
	out := projectSchema{
		Name:  cfg.Name,
		Roles: make(map[string]roleSchema, len(cfg.Roles)),
		Settings: settingsSchema{
			HeartbeatTimeoutSeconds: cfg.Settings.HeartbeatTimeoutSeconds,
			MessageRetentionDays:    cfg.Settings.MessageRetentionDays,
			HumanInLoop:             cfg.Settings.HumanInLoop,
			AutoCollab:              cfg.Settings.AutoCollab,
			WorkflowType:            cfg.Settings.WorkflowType,
		},
	}

	for slug, role := range cfg.Roles {
		permissions := make([]string, 0, len(role.Permissions))
		for _, permission := range role.Permissions {
			permissions = append(permissions, string(permission))
		}
		out.Roles[string(slug)] = roleSchema{
			Title:        role.Title,
			MaxInstances: role.MaxInstances,
			Permissions:  permissions,
			Description:  role.Description,
		}
	}

	return out
}

func (s bindingSchema) toDomain() domain.SessionBinding {
	claimedAt, _ := domain.ParseTimestamp(s.ClaimedAt)
	lastHeartbeat, _ := domain.ParseTimestamp(s.LastHeartbeat)

	status := domain.BindingStatus(s.Status)
	if status == "" {
		status = domain.BindingActive
	}

	return domain.SessionBinding{
		Role:          domain.RoleSlug(s.Role),
		Instance:      s.Instance,
		SessionID:     s.SessionID,
		ClaimedAt:     claimedAt,
		LastHeartbeat: lastHeartbeat,
		Status:        status,
	}
}

func bindingToSchema(binding domain.SessionBinding) bindingSchema {
	return bindingSchema{
		Role:          string(binding.Role),
		Instance:      binding.Instance,
		SessionID:     binding.SessionID,
		ClaimedAt:     domain.FormatTimestamp(binding.ClaimedAt),
		LastHeartbeat: domain.FormatTimestamp(binding.LastHeartbeat),
		Status:        string(binding.Status),
	}
}

func (s claimSchema) toDomain() domain.Claim {
	claimedAt, _ := domain.ParseTimestamp(s.ClaimedAt)

	return domain.Claim{
		Files:       s.Files,
		Description: s.Description,
		ClaimedAt:   claimedAt,
		SessionID:   s.SessionID,
	}
}

func claimToSchema(claim domain.Claim) claimSchema {
	files := claim.Files
	if files == nil {
		files = []string{}
	}

	return claimSchema{
		Files:       files,
		Description: claim.Description,
		ClaimedAt:   domain.FormatTimestamp(claim.ClaimedAt),
		SessionID:   claim.SessionID,
	}
}
