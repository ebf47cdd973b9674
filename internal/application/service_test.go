package application_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	briefingfile "github.com/bnema/teamboard/internal/adapters/briefing/file"
	"github.com/bnema/teamboard/internal/adapters/lock"
	"github.com/bnema/teamboard/internal/adapters/repo/jsonfile"
	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type harness struct {
	service  *application.Service
	layout   jsonfile.Layout
	clock    *fakeClock
	notifier *recordingNotifier
	sessions *jsonfile.SessionRepository
	claims   *jsonfile.ClaimRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithOptions(t, application.Options{
		PollInterval:      10 * time.Millisecond,
		HeartbeatInterval: time.Hour,
	})
}

func newHarnessWithOptions(t *testing.T, opts application.Options) *harness {
	t.Helper()

	layout, err := jsonfile.InitProject(t.TempDir(), "demo")
	require.NoError(t, err)

	clock := newFakeClock()
	notifier := &recordingNotifier{}
	sessions := jsonfile.NewSessionRepository(layout, nil)
	claims := jsonfile.NewClaimRepository(layout, nil)

	service := application.NewService(application.Dependencies{
		Config:    jsonfile.NewProjectConfigReader(layout),
		Sessions:  sessions,
		Board:     jsonfile.NewBoardRepository(layout, nil),
		Claims:    claims,
		LastSeen:  jsonfile.NewLastSeenRepository(layout, clock, nil),
		Briefings: briefingfile.NewStore(layout.RolesDir(), clock),
		Lock:      lock.NewGate(layout.LockFile(), 5*time.Second),
		Notifier:  notifier,
		Clock:     clock,
	}, opts)

	return &harness{
		service:  service,
		layout:   layout,
		clock:    clock,
		notifier: notifier,
		sessions: sessions,
		claims:   claims,
	}
}

func (h *harness) join(t *testing.T, role domain.RoleSlug, sessionID string) *application.Session {
	t.Helper()

	result, err := h.service.Join(context.Background(), role, sessionID)
	require.NoError(t, err)

	sess := result.Session
	return &sess
}

func (h *harness) send(t *testing.T, sess *application.Session, to, body string) uint64 {
	t.Helper()

	id, err := h.service.Send(context.Background(), sess, application.SendCommand{To: to, Body: body})
	require.NoError(t, err)

	return id
}

// writeProject replaces project.json; the reader picks it up on the next call.
func (h *harness) writeProject(t *testing.T, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(h.layout.ProjectFile(), []byte(content), 0o644))
}
