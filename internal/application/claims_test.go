package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimReportsOverlapWithoutBlocking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.join(t, "developer", "dev-1")
	second := h.join(t, "developer", "dev-2")

	result, err := h.service.Claim(ctx, first, application.ClaimCommand{
		Files:       []string{"src/api/", "README.md"},
		Description: "api rewrite",
	})
	require.NoError(t, err)
	assert.Equal(t, application.ClaimClaimed, result.Status)
	assert.Empty(t, result.Conflicts)

	result, err = h.service.Claim(ctx, second, application.ClaimCommand{
		Files: []string{"src/api/routes.go", "src/api/routes.go", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, application.ClaimClaimedWithConflicts, result.Status)
	assert.Equal(t, []string{"src/api/routes.go"}, result.Files)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "developer:0", result.Conflicts[0].Holder)
	assert.Equal(t, "api rewrite", result.Conflicts[0].Description)
	assert.Equal(t, []string{"src/api/"}, result.Conflicts[0].Files)

	views, err := h.service.Claims(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "developer:0", views[0].Holder)
	assert.Equal(t, "developer:1", views[1].Holder)
}

func TestClaimReplacesOwnClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	dev := h.join(t, "developer", "dev-1")
	_, err := h.service.Claim(ctx, dev, application.ClaimCommand{Files: []string{"a.go"}})
	require.NoError(t, err)
	result, err := h.service.Claim(ctx, dev, application.ClaimCommand{Files: []string{"a.go", "b.go"}})
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)

	claims, err := h.claims.Load(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, []string{"a.go", "b.go"}, claims["developer:0"].Files)
}

func TestClaimRequiresFiles(t *testing.T) {
	h := newHarness(t)

	dev := h.join(t, "developer", "dev-1")
	_, err := h.service.Claim(context.Background(), dev, application.ClaimCommand{Files: []string{" ", ""}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStaleClaimsArePrunedAndPersisted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	dev := h.join(t, "developer", "dev-1")
	_, err := h.service.Claim(ctx, dev, application.ClaimCommand{Files: []string{"src/"}})
	require.NoError(t, err)

	h.clock.Advance(200 * time.Second)
	views, err := h.service.Claims(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1, "a missed heartbeat alone keeps the claim")

	h.clock.Advance(101 * time.Second)
	views, err = h.service.Claims(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)

	stored, err := h.claims.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestClaimDropsClaimsOfUnboundSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.join(t, "developer", "dev-1")
	second := h.join(t, "developer", "dev-2")
	_, err := h.service.Claim(ctx, first, application.ClaimCommand{Files: []string{"src/"}})
	require.NoError(t, err)

	require.NoError(t, h.sessions.Save(ctx, domain.Bindings{}))

	result, err := h.service.Claim(ctx, second, application.ClaimCommand{Files: []string{"src/main.go"}})
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, []string{"developer:0"}, result.Pruned)
}

func TestReleaseKeepsOtherClaims(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.join(t, "developer", "dev-1")
	second := h.join(t, "developer", "dev-2")
	_, err := h.service.Claim(ctx, first, application.ClaimCommand{Files: []string{"a/"}})
	require.NoError(t, err)
	_, err = h.service.Claim(ctx, second, application.ClaimCommand{Files: []string{"b/"}})
	require.NoError(t, err)

	require.NoError(t, h.service.Release(ctx, first))
	require.NoError(t, h.service.Release(ctx, first))

	views, err := h.service.Claims(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "developer:1", views[0].Holder)
}

func TestReleaseByEvictedSessionKeepsNewHoldersClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	evicted := h.join(t, "reviewer", "rev-a")
	h.clock.Advance(10 * time.Minute)
	replacement := h.join(t, "reviewer", "rev-b")

	_, err := h.service.Claim(ctx, replacement, application.ClaimCommand{Files: []string{"src/"}})
	require.NoError(t, err)

	require.NoError(t, h.service.Release(ctx, evicted))

	views, err := h.service.Claims(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "reviewer:0", views[0].Holder)
	assert.Equal(t, "rev-b", views[0].SessionID)
	assert.NotContains(t, h.notifier.Events(), "release")
}
