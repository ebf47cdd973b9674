package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/teamboard/internal/domain"
)

// Wait blocks until messages newer than the session's last-seen marker
// arrive or timeout elapses. It heartbeats while waiting and wakes early on
// board changes when a watcher is configured. A session evicted while waiting
// gets ErrNotJoined.
func (s *Service) Wait(ctx context.Context, sess *Session, timeout time.Duration) (WaitResult, error) {
	if err := sess.validate(); err != nil {
		return WaitResult{}, err
	}
	if timeout <= 0 {
		timeout = s.opts.WaitTimeout
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return WaitResult{}, err
	}

	changes, stop := s.watchBoard(ctx)
	defer stop()

	started := time.Now()
	var lastBeat time.Time

	for {
		elapsed := time.Since(started)

		if lastBeat.IsZero() || time.Since(lastBeat) >= s.opts.HeartbeatInterval {
			if err := s.Heartbeat(ctx, sess); err != nil {
				if errors.Is(err, domain.ErrNotJoined) {
					return WaitResult{}, err
				}
				s.logger.Warn("heartbeat while waiting failed", "session", sess.SessionID, "error", err)
			}
			lastBeat = time.Now()
		}

		fresh, err := s.unseen(ctx, cfg, sess)
		if err != nil {
			return WaitResult{}, err
		}
		if len(fresh) > 0 {
			if err := s.advanceLastSeen(ctx, sess, domain.LatestID(fresh)); err != nil {
				return WaitResult{}, err
			}
			return newWaitResult(WaitMessagesReceived, fresh, elapsed), nil
		}

		if elapsed >= timeout {
			return newWaitResult(WaitTimedOut, []domain.Message{}, elapsed), nil
		}

		pause := s.opts.PollInterval
		if remaining := timeout - elapsed; remaining < pause {
			pause = remaining
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return WaitResult{}, ctx.Err()
		case <-timer.C:
		case _, ok := <-changes:
			timer.Stop()
			if !ok {
				changes = nil
			}
		}
	}
}

func (s *Service) unseen(ctx context.Context, cfg domain.ProjectConfig, sess *Session) ([]domain.Message, error) {
	marker, err := s.lastSeen.Get(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("read last-seen marker: %w", err)
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	return domain.FilterMessages(messages, domain.MessageFilter{
		Role:      sess.Role,
		Instance:  sess.Instance,
		AfterID:   marker,
		Now:       s.clock.Now(),
		Retention: cfg.Retention(),
	}), nil
}

// watchBoard falls back to a nil channel, which never fires, when no watcher
// is configured or the watch cannot be established.
func (s *Service) watchBoard(ctx context.Context) (<-chan struct{}, func()) {
	if s.watcher == nil {
		return nil, func() {}
	}

	changes, stop, err := s.watcher.Watch(ctx)
	if err != nil {
		s.logger.Debug("board watch unavailable, polling only", "error", err)
		return nil, func() {}
	}

	return changes, stop
}
