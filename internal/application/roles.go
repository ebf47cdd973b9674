package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/domain"
)

// Join binds sessionID to a slot of role. Re-joining the same role is
// idempotent; joining another role drops the session's previous binding.
func (s *Service) Join(ctx context.Context, role domain.RoleSlug, sessionID string) (JoinResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return JoinResult{}, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return JoinResult{}, err
	}

	roleDef, err := cfg.Role(role)
	if err != nil {
		return JoinResult{}, err
	}

	var sess *Session
	err = s.lock.WithLock(ctx, func() error {
		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		now := s.clock.Now()

		if existing, idx, ok := bindings.BySession(sessionID); ok && existing.Role == role {
			bindings[idx].LastHeartbeat = now
			bindings[idx].Status = domain.BindingActive
			sess = &Session{SessionID: sessionID, Role: role, Instance: existing.Instance}
			return s.sessions.Save(ctx, bindings)
		}

		bindings = bindings.WithoutSession(sessionID)
		for {
			active := len(bindings.ActiveFor(role))
			if active < roleDef.Capacity() {
				instance := bindings.NextInstance(role)
				bindings = append(bindings, domain.SessionBinding{
					Role:          role,
					Instance:      instance,
					SessionID:     sessionID,
					ClaimedAt:     now,
					LastHeartbeat: now,
					Status:        domain.BindingActive,
				})
				sess = &Session{SessionID: sessionID, Role: role, Instance: instance}
				return s.sessions.Save(ctx, bindings)
			}

			idx, ok := bindings.Evictable(role, now, cfg.HeartbeatTimeout())
			if !ok {
				return fmt.Errorf("%w: %s has %d/%d active instances", domain.ErrRoleFull, role, active, roleDef.Capacity())
			}

			evicted := bindings[idx]
			s.logger.Info("evicting stale binding",
				"role", evicted.Role,
				"instance", evicted.Instance,
				"session", evicted.SessionID,
				"last_heartbeat", domain.FormatTimestamp(evicted.LastHeartbeat),
			)
			bindings = bindings.Without(idx)
		}
	})
	if err != nil {
		return JoinResult{}, err
	}

	s.logger.Info("joined", "role", sess.Role, "instance", sess.Instance, "session", sess.SessionID)
	s.notify(ctx, "join")

	result := JoinResult{
		Session:  *sess,
		Instance: sess.Instance,
		Title:    roleDef.Title,
	}

	briefing, err := s.briefings.Get(ctx, role)
	if err != nil {
		return JoinResult{}, fmt.Errorf("load briefing: %w", err)
	}
	result.Briefing = briefing

	messages, err := s.board.List(ctx)
	if err != nil {
		return JoinResult{}, fmt.Errorf("read board: %w", err)
	}
	visible := domain.FilterMessages(messages, domain.MessageFilter{
		Role:      sess.Role,
		Instance:  sess.Instance,
		Now:       s.clock.Now(),
		Retention: cfg.Retention(),
	})
	if len(visible) > recentMessageCount {
		visible = visible[len(visible)-recentMessageCount:]
	}
	result.RecentMessages = visible

	if err := s.advanceLastSeen(ctx, sess, domain.LatestID(messages)); err != nil {
		return JoinResult{}, err
	}

	team, err := s.Status(ctx)
	if err != nil {
		return JoinResult{}, err
	}
	result.Team = team

	return result, nil
}

// Leave releases every slot and the claim held by the session.
func (s *Service) Leave(ctx context.Context, sess *Session) error {
	if err := sess.validate(); err != nil {
		return err
	}

	err := s.lock.WithLock(ctx, func() error {
		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		if err := s.sessions.Save(ctx, bindings.WithoutSession(sess.SessionID)); err != nil {
			return fmt.Errorf("save sessions: %w", err)
		}

		claims, err := s.claims.Load(ctx)
		if err != nil {
			return fmt.Errorf("load claims: %w", err)
		}
		claim, ok := claims[sess.Key()]
		if !ok || claim.SessionID != sess.SessionID {
			return nil
		}
		delete(claims, sess.Key())

		return s.claims.Save(ctx, claims)
	})
	if err != nil {
		return err
	}

	s.logger.Info("left", "role", sess.Role, "instance", sess.Instance, "session", sess.SessionID)
	s.notify(ctx, "leave")

	return nil
}

// Heartbeat stamps the session's binding. A binding removed by a concurrent
// eviction is recreated when its slot is still free; a session whose slot
// went to someone else gets ErrNotJoined and must join again.
func (s *Service) Heartbeat(ctx context.Context, sess *Session) error {
	if err := sess.validate(); err != nil {
		return err
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	capacity, err := roleCapacity(cfg, sess)
	if err != nil {
		return err
	}

	return s.lock.WithLock(ctx, func() error {
		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}

		bindings, err = refreshBinding(bindings, sess, s.clock.Now(), capacity)
		if err != nil {
			return err
		}

		return s.sessions.Save(ctx, bindings)
	})
}
