package application

import (
	"context"
	"fmt"

	"github.com/bnema/teamboard/internal/domain"
)

func (s *Service) Briefing(ctx context.Context, role domain.RoleSlug) (string, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return "", err
	}
	if _, err := cfg.Role(role); err != nil {
		return "", err
	}

	return s.briefings.Get(ctx, role)
}

// UpdateBriefing rewrites the briefing shown to agents joining cmd.Role. The
// caller's role must hold assign_tasks.
func (s *Service) UpdateBriefing(ctx context.Context, sess *Session, cmd UpdateBriefingCommand) error {
	if err := sess.validate(); err != nil {
		return err
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}

	caller, err := cfg.Role(sess.Role)
	if err != nil {
		return err
	}
	if !caller.Can(domain.CapabilityAssignTasks) {
		return fmt.Errorf("%w: updating briefings requires %s", domain.ErrPermissionDenied, domain.CapabilityAssignTasks)
	}
	if _, err := cfg.Role(cmd.Role); err != nil {
		return err
	}

	err = s.lock.WithLock(ctx, func() error {
		return s.briefings.Put(ctx, cmd.Role, cmd.Content, sess.Key())
	})
	if err != nil {
		return fmt.Errorf("write briefing: %w", err)
	}

	s.notify(ctx, "briefing")

	return nil
}
