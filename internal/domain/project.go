package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type RoleSlug string
type Capability string

const (
	CapabilityBroadcast   Capability = "broadcast"
	CapabilityAssignTasks Capability = "assign_tasks"
)

const (
	DefaultHeartbeatTimeoutSeconds = 120
	DefaultMessageRetentionDays    = 7
	DefaultMaxInstances            = 1
)

type ProjectConfig struct {
	Name     string
	Roles    map[RoleSlug]Role
	Settings Settings
}

type Role struct {
	Title        string
	MaxInstances int
	Permissions  []Capability
	Description  string
}

type Settings struct {
	HeartbeatTimeoutSeconds int
	// MessageRetentionDays is nil when unset; zero keeps messages forever.
	MessageRetentionDays *int
	HumanInLoop          bool
	AutoCollab           bool
	WorkflowType         string
}

func (c ProjectConfig) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf("%w: roster has no roles", ErrConfigInvalid)
	}

	for slug := range c.Roles {
		if err := ValidateRoleSlug(slug); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
	}

	return nil
}

func (c ProjectConfig) Role(slug RoleSlug) (Role, error) {
	role, ok := c.Roles[slug]
	if !ok {
		return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, slug)
	}

	return role, nil
}

// RoleSlugs returns the roster in a stable order.
func (c ProjectConfig) RoleSlugs() []RoleSlug {
	slugs := make([]RoleSlug, 0, len(c.Roles))
	for slug := range c.Roles {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })

	return slugs
}

func (c ProjectConfig) HeartbeatTimeout() time.Duration {
	seconds := c.Settings.HeartbeatTimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultHeartbeatTimeoutSeconds
	}

	return time.Duration(seconds) * time.Second
}

// Retention returns zero when messages never expire.
func (c ProjectConfig) Retention() time.Duration {
	days := DefaultMessageRetentionDays
	if c.Settings.MessageRetentionDays != nil {
		days = *c.Settings.MessageRetentionDays
	}
	if days <= 0 {
		return 0
	}

	return time.Duration(days) * 24 * time.Hour
}

func (r Role) Capacity() int {
	if r.MaxInstances < 1 {
		return DefaultMaxInstances
	}

	return r.MaxInstances
}

func (r Role) Can(capability Capability) bool {
	for _, held := range r.Permissions {
		if held == capability {
			return true
		}
	}

	return false
}

func (r Role) CanBroadcast() bool {
	return r.Can(CapabilityBroadcast) || r.Can(CapabilityAssignTasks)
}

func ValidateRoleSlug(slug RoleSlug) error {
	trimmed := strings.TrimSpace(string(slug))
	if trimmed == "" {
		return fmt.Errorf("role slug is empty")
	}
	if trimmed != string(slug) || strings.ContainsAny(trimmed, ":/\\ ") {
		return fmt.Errorf("invalid role slug %q", slug)
	}
	if slug == RecipientAll || slug == RecipientHuman {
		return fmt.Errorf("role slug %q is reserved", slug)
	}

	return nil
}
