package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

const (
	DefaultPollInterval      = 3 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultWaitTimeout       = 300 * time.Second

	recentMessageCount = 10
)

type Dependencies struct {
	Config    ports.ProjectConfigReader
	Sessions  ports.SessionRepository
	Board     ports.BoardRepository
	Claims    ports.ClaimRepository
	LastSeen  ports.LastSeenRepository
	Briefings ports.BriefingStore
	Lock      ports.Locker
	Notifier  ports.Notifier
	// Watcher is optional; without it Wait relies on polling alone.
	Watcher ports.ChangeWatcher
	Clock   ports.Clock
	Logger  *slog.Logger
}

type Options struct {
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	WaitTimeout       time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}

	return o
}

// Service implements the coordination protocol for one project directory.
type Service struct {
	config    ports.ProjectConfigReader
	sessions  ports.SessionRepository
	board     ports.BoardRepository
	claims    ports.ClaimRepository
	lastSeen  ports.LastSeenRepository
	briefings ports.BriefingStore
	lock      ports.Locker
	notifier  ports.Notifier
	watcher   ports.ChangeWatcher
	clock     ports.Clock
	logger    *slog.Logger
	opts      Options
}

func NewService(deps Dependencies, opts Options) *Service {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Notifier == nil {
		deps.Notifier = ports.NopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		config:    deps.Config,
		sessions:  deps.Sessions,
		board:     deps.Board,
		claims:    deps.Claims,
		lastSeen:  deps.LastSeen,
		briefings: deps.Briefings,
		lock:      deps.Lock,
		notifier:  deps.Notifier,
		watcher:   deps.Watcher,
		clock:     deps.Clock,
		logger:    deps.Logger,
		opts:      opts.withDefaults(),
	}
}

func (s *Service) Options() Options {
	return s.opts
}

// Project returns the current project definition.
func (s *Service) Project(ctx context.Context) (domain.ProjectConfig, error) {
	return s.loadConfig(ctx)
}

func (s *Service) loadConfig(ctx context.Context) (domain.ProjectConfig, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("load project config: %w", err)
	}

	return cfg, nil
}

func (s *Service) notify(ctx context.Context, event string) {
	s.notifier.Notify(ctx, event)
}

// refreshBinding stamps the session's heartbeat. A binding removed by a
// concurrent eviction is recreated only while its slot is free and the role
// has room; otherwise the session was replaced and ErrNotJoined is returned.
func refreshBinding(bindings domain.Bindings, sess *Session, now time.Time, capacity int) (domain.Bindings, error) {
	if _, idx, ok := bindings.BySession(sess.SessionID); ok {
		bindings[idx].LastHeartbeat = now
		bindings[idx].Status = domain.BindingActive
		return bindings, nil
	}

	if holder, taken := bindings.SlotHolder(sess.Role, sess.Instance); taken {
		return bindings, fmt.Errorf("%w: %s was evicted and now belongs to session %s", domain.ErrNotJoined, sess.Key(), holder.SessionID)
	}
	if active := len(bindings.ActiveFor(sess.Role)); active >= capacity {
		return bindings, fmt.Errorf("%w: %s was evicted and %s is full (%d/%d)", domain.ErrNotJoined, sess.Key(), sess.Role, active, capacity)
	}

	return append(bindings, domain.SessionBinding{
		Role:          sess.Role,
		Instance:      sess.Instance,
		SessionID:     sess.SessionID,
		ClaimedAt:     now,
		LastHeartbeat: now,
		Status:        domain.BindingActive,
	}), nil
}

// roleCapacity returns the capacity of the session's role.
func roleCapacity(cfg domain.ProjectConfig, sess *Session) (int, error) {
	role, err := cfg.Role(sess.Role)
	if err != nil {
		return 0, err
	}

	return role.Capacity(), nil
}

// touch refreshes the heartbeat as a side effect of another operation.
// Failures are logged because the primary operation already succeeded.
func (s *Service) touch(ctx context.Context, sess *Session) {
	if err := s.Heartbeat(ctx, sess); err != nil {
		s.logger.Warn("opportunistic heartbeat failed", "session", sess.SessionID, "error", err)
	}
}
