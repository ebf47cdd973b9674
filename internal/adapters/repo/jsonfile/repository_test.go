package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newLayout(t *testing.T) Layout {
	t.Helper()

	layout, err := NewLayout(t.TempDir())
	require.NoError(t, err)

	return layout
}

func writeState(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProjectConfigReaderAcceptsComments(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	writeState(t, layout.ProjectFile(), `{
  // team roster
  "name": "demo",
  "roles": {
    "developer": {"title": "Developer", "max_instances": 2, "permissions": [],},
    "lead": {"title": "Lead", "permissions": ["broadcast", "assign_tasks"]},
  },
  "settings": {"heartbeat_timeout_seconds": 60, "message_retention_days": 0},
}`)

	cfg, err := NewProjectConfigReader(layout).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, []domain.RoleSlug{"developer", "lead"}, cfg.RoleSlugs())
	assert.Equal(t, 2, cfg.Roles["developer"].Capacity())
	assert.Equal(t, 1, cfg.Roles["lead"].Capacity())
	assert.True(t, cfg.Roles["lead"].CanBroadcast())
	assert.Equal(t, time.Minute, cfg.HeartbeatTimeout())
	assert.Zero(t, cfg.Retention())
}

func TestProjectConfigReaderMissingOrCorruptIsFatal(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	reader := NewProjectConfigReader(layout)

	_, err := reader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrConfigInvalid)

	writeState(t, layout.ProjectFile(), `{"name": "demo", "roles": `)
	_, err = reader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrConfigInvalid)

	writeState(t, layout.ProjectFile(), `{"name": "demo", "roles": {}}`)
	_, err = reader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	repo := NewSessionRepository(layout, nil)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	empty, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	bindings := domain.Bindings{
		{Role: "developer", Instance: 0, SessionID: "s-1", ClaimedAt: now, LastHeartbeat: now, Status: domain.BindingActive},
		{Role: "developer", Instance: 1, SessionID: "s-2", ClaimedAt: now, LastHeartbeat: now.Add(time.Minute), Status: domain.BindingActive},
	}
	require.NoError(t, repo.Save(context.Background(), bindings))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bindings, got)

	raw, err := os.ReadFile(layout.SessionsFile())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bindings"`)
	assert.Contains(t, string(raw), `"last_heartbeat": "2026-03-01T10:01:00Z"`)
}

func TestSessionRepositoryMalformedFileIsEmpty(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	writeState(t, layout.SessionsFile(), "{not json")

	got, err := NewSessionRepository(layout, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBoardRepositoryAppendListCount(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	repo := NewBoardRepository(layout, nil)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	first := domain.Message{ID: 1, From: "lead:0", To: "all", Type: "message", Timestamp: "2026-03-01T10:00:00Z", Subject: "kickoff", Body: "hello"}
	second := domain.Message{ID: 2, From: "developer:0", To: "lead:0", Type: "message", Timestamp: "2026-03-01T10:01:00Z", Subject: "ack", Body: "ok", Metadata: map[string]any{"task": "T-1"}}
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	messages, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first, messages[0])
	assert.Equal(t, "T-1", messages[1].MetadataString("task"))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestBoardRepositorySkipsMalformedLinesButCountsThem(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	writeState(t, layout.BoardFile(), strings.Join([]string{
		`{"id":1,"from":"lead:0","to":"all","type":"message","timestamp":"2026-03-01T10:00:00Z","subject":"a","body":""}`,
		``,
		`{broken`,
	}, "\n"))

	repo := NewBoardRepository(layout, nil)
	ctx := context.Background()

	messages, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, repo.Append(ctx, domain.Message{ID: 3, From: "lead:0", To: "all", Type: "message", Timestamp: "2026-03-01T10:02:00Z"}))

	messages, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, uint64(3), messages[1].ID)
}

func TestClaimRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	repo := NewClaimRepository(layout, nil)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	claims := domain.ClaimSet{
		"developer:0": {Files: []string{"src/api/"}, Description: "api work", ClaimedAt: now, SessionID: "s-1"},
	}
	require.NoError(t, repo.Save(context.Background(), claims))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestLastSeenRepository(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewLastSeenRepository(layout, fixedClock{now: now}, nil)
	ctx := context.Background()

	got, err := repo.Get(ctx, "agent/one")
	require.NoError(t, err)
	assert.Zero(t, got)

	require.NoError(t, repo.Set(ctx, "agent/one", 7))

	got, err = repo.Get(ctx, "agent/one")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got)

	raw, err := os.ReadFile(filepath.Join(layout.LastSeenDir(), "agent_one.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_seen_id": 7`)
	assert.Contains(t, string(raw), `"updated_at": "2026-03-01T10:00:00Z"`)

	err = repo.Set(ctx, "..", 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSanitizeSessionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "abc-123", want: "abc-123"},
		{in: "a b:c", want: "a_b_c"},
		{in: "../etc", want: ".._etc"},
		{in: "   ", want: ""},
		{in: "...", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSessionID(tt.in), tt.in)
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	layout := newLayout(t)
	require.NoError(t, writeJSONFile(layout.ClaimsFile(), map[string]string{}))

	entries, err := os.ReadDir(layout.StateDir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
	}
}

func TestInitProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	layout, err := InitProject(dir, "demo")
	require.NoError(t, err)

	cfg, err := NewProjectConfigReader(layout).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, []domain.RoleSlug{"developer", "lead", "reviewer"}, cfg.RoleSlugs())
	assert.Equal(t, 2, cfg.Roles["developer"].Capacity())
	assert.True(t, cfg.Roles["lead"].Can(domain.CapabilityAssignTasks))

	_, err = os.Stat(filepath.Join(layout.RolesDir(), "developer.md"))
	require.NoError(t, err)

	_, err = InitProject(dir, "demo")
	require.True(t, errors.Is(err, ErrProjectExists))
}

func TestFindProjectRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := InitProject(root, "demo")
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
