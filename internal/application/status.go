package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/bnema/teamboard/internal/domain"
)

// Status summarizes the roster, live members and board counters. It reads
// without the lock and may observe a slightly stale snapshot.
func (s *Service) Status(ctx context.Context) (TeamStatus, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return TeamStatus{}, err
	}

	bindings, err := s.sessions.Load(ctx)
	if err != nil {
		return TeamStatus{}, fmt.Errorf("load sessions: %w", err)
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return TeamStatus{}, fmt.Errorf("read board: %w", err)
	}

	claims, err := s.claims.Load(ctx)
	if err != nil {
		return TeamStatus{}, fmt.Errorf("load claims: %w", err)
	}

	now := s.clock.Now()
	timeout := cfg.HeartbeatTimeout()
	live, _ := claims.Prune(bindings, now, timeout)

	status := TeamStatus{
		Project:      cfg.Name,
		WorkflowType: cfg.Settings.WorkflowType,
		HumanInLoop:  cfg.Settings.HumanInLoop,
		AutoCollab:   cfg.Settings.AutoCollab,
		Roles:        make([]RoleStatus, 0, len(cfg.Roles)),
		MessageCount: len(domain.RetainedMessages(messages, now, cfg.Retention())),
		LatestID:     domain.LatestID(messages),
		ClaimCount:   len(live),
		GeneratedAt:  now,
	}

	for _, slug := range cfg.RoleSlugs() {
		role := cfg.Roles[slug]
		members := make([]MemberStatus, 0)
		for _, binding := range bindings.ActiveFor(slug) {
			members = append(members, MemberStatus{
				Key:           binding.Key(),
				Instance:      binding.Instance,
				SessionID:     binding.SessionID,
				ClaimedAt:     binding.ClaimedAt,
				LastHeartbeat: binding.LastHeartbeat,
				Stale:         domain.IsStale(binding.LastHeartbeat, now, timeout),
			})
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Instance < members[j].Instance })

		status.Roles = append(status.Roles, RoleStatus{
			Slug:        slug,
			Title:       role.Title,
			Description: role.Description,
			Capacity:    role.Capacity(),
			Members:     members,
		})
	}

	return status, nil
}
