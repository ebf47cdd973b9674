package application

import (
	"context"
	"fmt"

	"github.com/bnema/teamboard/internal/domain"
)

// Claim records the session's file reservation. Overlaps with other live
// claims are reported but never block the write.
func (s *Service) Claim(ctx context.Context, sess *Session, cmd ClaimCommand) (ClaimResult, error) {
	if err := sess.validate(); err != nil {
		return ClaimResult{}, err
	}

	files := domain.NormalizeFiles(cmd.Files)
	if len(files) == 0 {
		return ClaimResult{}, fmt.Errorf("%w: at least one file or directory is required", domain.ErrInvalidInput)
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return ClaimResult{}, err
	}

	capacity, err := roleCapacity(cfg, sess)
	if err != nil {
		return ClaimResult{}, err
	}

	result := ClaimResult{Holder: sess.Key(), Files: files}
	err = s.lock.WithLock(ctx, func() error {
		now := s.clock.Now()

		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		bindings, err = refreshBinding(bindings, sess, now, capacity)
		if err != nil {
			return err
		}
		if err := s.sessions.Save(ctx, bindings); err != nil {
			return fmt.Errorf("save sessions: %w", err)
		}

		claims, err := s.claims.Load(ctx)
		if err != nil {
			return fmt.Errorf("load claims: %w", err)
		}
		claims, result.Pruned = claims.Prune(bindings, now, cfg.HeartbeatTimeout())
		result.Conflicts = claims.Conflicts(sess.Key(), files)

		claims[sess.Key()] = domain.Claim{
			Files:       files,
			Description: cmd.Description,
			ClaimedAt:   now,
			SessionID:   sess.SessionID,
		}

		return s.claims.Save(ctx, claims)
	})
	if err != nil {
		return ClaimResult{}, err
	}

	result.Status = ClaimClaimed
	if len(result.Conflicts) > 0 {
		result.Status = ClaimClaimedWithConflicts
		s.logger.Warn("claim overlaps other claims", "holder", sess.Key(), "conflicts", len(result.Conflicts))
	}
	s.logPruned(result.Pruned)
	s.notify(ctx, "claim")

	return result, nil
}

// Release drops the caller's own claim and leaves every other claim intact,
// including one a newer session now holds under the same key.
func (s *Service) Release(ctx context.Context, sess *Session) error {
	if err := sess.validate(); err != nil {
		return err
	}

	released := false
	err := s.lock.WithLock(ctx, func() error {
		claims, err := s.claims.Load(ctx)
		if err != nil {
			return fmt.Errorf("load claims: %w", err)
		}
		claim, ok := claims[sess.Key()]
		if !ok || claim.SessionID != sess.SessionID {
			return nil
		}
		delete(claims, sess.Key())
		released = true

		return s.claims.Save(ctx, claims)
	})
	if err != nil {
		return err
	}

	if released {
		s.notify(ctx, "release")
	}

	return nil
}

// Claims returns the live claims, persisting the removal of stale ones.
func (s *Service) Claims(ctx context.Context) ([]ClaimView, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	var live domain.ClaimSet
	var pruned []string
	err = s.lock.WithLock(ctx, func() error {
		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		claims, err := s.claims.Load(ctx)
		if err != nil {
			return fmt.Errorf("load claims: %w", err)
		}

		live, pruned = claims.Prune(bindings, s.clock.Now(), cfg.HeartbeatTimeout())
		if len(pruned) == 0 {
			return nil
		}

		return s.claims.Save(ctx, live)
	})
	if err != nil {
		return nil, err
	}
	s.logPruned(pruned)

	views := make([]ClaimView, 0, len(live))
	for _, holder := range live.Keys() {
		claim := live[holder]
		views = append(views, ClaimView{
			Holder:      holder,
			Files:       claim.Files,
			Description: claim.Description,
			ClaimedAt:   claim.ClaimedAt,
			SessionID:   claim.SessionID,
		})
	}

	return views, nil
}

func (s *Service) logPruned(holders []string) {
	for _, holder := range holders {
		s.logger.Info("pruned stale claim", "holder", holder)
	}
}
