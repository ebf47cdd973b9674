package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	briefingfile "github.com/bnema/teamboard/internal/adapters/briefing/file"
	"github.com/bnema/teamboard/internal/adapters/config"
	"github.com/bnema/teamboard/internal/adapters/lock"
	"github.com/bnema/teamboard/internal/adapters/notify"
	statusadapter "github.com/bnema/teamboard/internal/adapters/render/status"
	"github.com/bnema/teamboard/internal/adapters/repo/jsonfile"
	"github.com/bnema/teamboard/internal/adapters/watch"
	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg            config.Config
	layout         jsonfile.Layout
	service        *application.Service
	logger         *slog.Logger
	statusRenderer func(application.TeamStatus, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	// flush waits for background notifications before the process exits.
	flush func()
}

// wireApp resolves configuration and builds the service for the project
// found from the configured directory or the working directory. Wiring never
// touches project.json, so commands that create it can still run.
func wireApp(v *viper.Viper, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger(logOutput)

	start := cfg.ProjectDir
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	root, err := jsonfile.FindProjectRoot(start)
	if err != nil {
		return nil, err
	}

	layout, err := jsonfile.NewLayout(root)
	if err != nil {
		return nil, err
	}

	clock := ports.SystemClock{}
	configReader := jsonfile.NewProjectConfigReader(layout)
	notifier, flush := newNotifier(cfg, configReader, logger)

	service := application.NewService(application.Dependencies{
		Config:    configReader,
		Sessions:  jsonfile.NewSessionRepository(layout, logger),
		Board:     jsonfile.NewBoardRepository(layout, logger),
		Claims:    jsonfile.NewClaimRepository(layout, logger),
		LastSeen:  jsonfile.NewLastSeenRepository(layout, clock, logger),
		Briefings: briefingfile.NewStore(layout.RolesDir(), clock),
		Lock:      lock.NewGate(layout.LockFile(), lock.DefaultTimeout),
		Notifier:  notifier,
		Watcher:   watch.NewBoardWatcher(layout.BoardFile(), logger),
		Clock:     clock,
		Logger:    logger,
	}, cfg.ServiceOptions())

	return &app{
		cfg:            cfg,
		layout:         layout,
		service:        service,
		logger:         logger,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
		flush:          flush,
	}, nil
}

func newNotifier(cfg config.Config, reader ports.ProjectConfigReader, logger *slog.Logger) (ports.Notifier, func()) {
	if cfg.NotifyURL == "" {
		return ports.NopNotifier{}, func() {}
	}

	notifier := &notify.HTTPNotifier{
		URL:     cfg.NotifyURL,
		Project: projectName(reader),
		Logger:  logger,
	}

	return notifier, notifier.Wait
}

// projectName labels notifications; an unreadable config leaves it blank.
func projectName(reader ports.ProjectConfigReader) string {
	project, err := reader.Load(context.Background())
	if err != nil {
		return ""
	}

	return project.Name
}

// session resumes the binding for the configured session id.
func (a *app) session(ctx context.Context) (*application.Session, error) {
	if a.cfg.SessionID == "" {
		return nil, fmt.Errorf("%w: pass --session or set TEAMBOARD_SESSION_ID", domain.ErrNotJoined)
	}

	return a.service.Resume(ctx, a.cfg.SessionID)
}
