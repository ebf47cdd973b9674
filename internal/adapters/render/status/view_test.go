package status

import (
	"testing"
	"time"

	"github.com/bnema/teamboard/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTeamStatus(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(application.TeamStatus{
		Project:      "demo",
		WorkflowType: "pipeline",
		MessageCount: 4,
		LatestID:     9,
		ClaimCount:   1,
		Roles: []application.RoleStatus{
			{
				Slug:     "developer",
				Title:    "Developer",
				Capacity: 2,
				Members: []application.MemberStatus{
					{Key: "developer:0", Instance: 0, LastHeartbeat: now.Add(-30 * time.Second)},
					{Key: "developer:1", Instance: 1, LastHeartbeat: now.Add(-5 * time.Minute), Stale: true},
				},
			},
			{Slug: "reviewer", Title: "Reviewer", Capacity: 1},
		},
	}, RenderOptions{
		Now:              now,
		HeartbeatTimeout: 2 * time.Minute,
		Claims: []application.ClaimView{
			{Holder: "developer:0", Files: []string{"src/api/"}, Description: "api work"},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "Team: demo (pipeline)")
	assert.Contains(t, output, "messages: 4  latest: #9  claims: 1")
	assert.Contains(t, output, "Developer (developer)")
	assert.Contains(t, output, "2/2")
	assert.Contains(t, output, "developer:0")
	assert.Contains(t, output, "seen just now")
	assert.Contains(t, output, "seen 5 minutes ago")
	assert.Contains(t, output, "[stale]")
	assert.Contains(t, output, "Reviewer (reviewer)")
	assert.Contains(t, output, "vacant")
	assert.Contains(t, output, "src/api/")
	assert.Contains(t, output, "api work")
}

func TestRenderWithoutRoles(t *testing.T) {
	output, err := Render(application.TeamStatus{Project: "empty"}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Team: empty")
	assert.Contains(t, output, "No roles defined.")
	assert.NotContains(t, output, "stale")
}

func TestFormatHeartbeat(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, "never seen", formatHeartbeat(time.Time{}, now))
	assert.Equal(t, "seen 1 minute ago", formatHeartbeat(now.Add(-90*time.Second), now))
	assert.Equal(t, "seen 3 hours ago", formatHeartbeat(now.Add(-3*time.Hour), now))
	assert.Equal(t, "seen 2026-02-14T10:00:00Z", formatHeartbeat(now.Add(-time.Hour), time.Time{}))
}

func TestRenderOccupancyBar(t *testing.T) {
	s := newStyles()

	assert.Contains(t, renderOccupancyBar(1, 2, 4, s), "==")
	assert.Empty(t, renderOccupancyBar(1, 0, 4, s))
}
