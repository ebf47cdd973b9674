package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/domain"
)

// Send appends one message to the board and returns its id.
func (s *Service) Send(ctx context.Context, sess *Session, cmd SendCommand) (uint64, error) {
	if err := sess.validate(); err != nil {
		return 0, err
	}

	to := strings.TrimSpace(cmd.To)
	if to == "" {
		return 0, fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}
	messageType := strings.TrimSpace(cmd.Type)
	if messageType == "" {
		messageType = domain.MessageTypeDefault
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return 0, err
	}

	sender, err := cfg.Role(sess.Role)
	if err != nil {
		return 0, err
	}
	if err := authorizeRecipient(cfg, sender, to); err != nil {
		return 0, err
	}

	var id uint64
	err = s.lock.WithLock(ctx, func() error {
		now := s.clock.Now()

		bindings, err := s.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		bindings, err = refreshBinding(bindings, sess, now, sender.Capacity())
		if err != nil {
			return err
		}

		count, err := s.board.Count(ctx)
		if err != nil {
			return fmt.Errorf("count board: %w", err)
		}
		id = count + 1

		message := domain.Message{
			ID:        id,
			From:      sess.Key(),
			To:        to,
			Type:      messageType,
			Timestamp: domain.FormatTimestamp(now),
			Subject:   strings.TrimSpace(cmd.Subject),
			Body:      cmd.Body,
			Metadata:  cmd.Metadata,
		}
		if err := s.board.Append(ctx, message); err != nil {
			return fmt.Errorf("append message: %w", err)
		}

		if err := s.sessions.Save(ctx, bindings); err != nil {
			s.logger.Warn("heartbeat after send skipped", "session", sess.SessionID, "error", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("message sent", "id", id, "from", sess.Key(), "to", to, "type", messageType)
	s.notify(ctx, "message")

	return id, nil
}

func authorizeRecipient(cfg domain.ProjectConfig, sender domain.Role, to string) error {
	switch to {
	case domain.RecipientAll:
		if !sender.CanBroadcast() {
			return fmt.Errorf("%w: broadcast requires %s or %s", domain.ErrPermissionDenied, domain.CapabilityBroadcast, domain.CapabilityAssignTasks)
		}
		return nil
	case domain.RecipientHuman:
		return nil
	}

	slug, _, err := domain.ParseMemberKey(to)
	if err != nil {
		return err
	}
	_, err = cfg.Role(slug)

	return err
}

// Read returns the visible, retained messages with id above afterID. A
// positive limit keeps only the newest entries.
func (s *Service) Read(ctx context.Context, sess *Session, afterID uint64, limit int) ([]domain.Message, error) {
	if err := sess.validate(); err != nil {
		return nil, err
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	visible := domain.FilterMessages(messages, domain.MessageFilter{
		Role:      sess.Role,
		Instance:  sess.Instance,
		AfterID:   afterID,
		Now:       s.clock.Now(),
		Retention: cfg.Retention(),
	})
	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	return visible, nil
}

// Check returns messages newer than lastSeen plus the current latest id, so
// callers can advance their marker even when nothing new is visible.
func (s *Service) Check(ctx context.Context, sess *Session, lastSeen uint64) (CheckResult, error) {
	if err := sess.validate(); err != nil {
		return CheckResult{}, err
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("read board: %w", err)
	}

	latest := domain.LatestID(messages)
	if latest < lastSeen {
		latest = lastSeen
	}

	result := CheckResult{
		Messages: domain.FilterMessages(messages, domain.MessageFilter{
			Role:      sess.Role,
			Instance:  sess.Instance,
			AfterID:   lastSeen,
			Now:       s.clock.Now(),
			Retention: cfg.Retention(),
		}),
		LatestID: latest,
	}

	if err := s.advanceLastSeen(ctx, sess, latest); err != nil {
		return CheckResult{}, err
	}
	s.touch(ctx, sess)

	team, err := s.Status(ctx)
	if err != nil {
		return CheckResult{}, err
	}
	result.Team = team

	return result, nil
}

// LastSeen returns the session's persisted read marker.
func (s *Service) LastSeen(ctx context.Context, sess *Session) (uint64, error) {
	if err := sess.validate(); err != nil {
		return 0, err
	}

	marker, err := s.lastSeen.Get(ctx, sess.SessionID)
	if err != nil {
		return 0, fmt.Errorf("read last-seen marker: %w", err)
	}

	return marker, nil
}

// advanceLastSeen moves the session's marker forward only.
func (s *Service) advanceLastSeen(ctx context.Context, sess *Session, id uint64) error {
	current, err := s.lastSeen.Get(ctx, sess.SessionID)
	if err != nil {
		return fmt.Errorf("read last-seen marker: %w", err)
	}
	if id <= current {
		return nil
	}
	if err := s.lastSeen.Set(ctx, sess.SessionID, id); err != nil {
		return fmt.Errorf("write last-seen marker: %w", err)
	}

	return nil
}
