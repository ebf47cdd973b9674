package application_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeveloperReviewerHandoff(t *testing.T) {
	h := newHarness(t)
	h.writeProject(t, `{
		"name": "pair",
		"roles": {
			"developer": {"title": "Developer", "max_instances": 1},
			"reviewer": {"title": "Reviewer", "max_instances": 1}
		}
	}`)
	ctx := context.Background()

	agentA, err := h.service.Join(ctx, "developer", "agent-a")
	require.NoError(t, err)
	assert.Equal(t, 0, agentA.Instance)

	_, err = h.service.Join(ctx, "developer", "agent-b")
	require.ErrorIs(t, err, domain.ErrRoleFull)

	agentB, err := h.service.Join(ctx, "reviewer", "agent-b")
	require.NoError(t, err)
	assert.Equal(t, 0, agentB.Instance)

	id, err := h.service.Send(ctx, &agentA.Session, application.SendCommand{To: "reviewer", Subject: "done"})
	require.NoError(t, err)

	check, err := h.service.Check(ctx, &agentB.Session, 0)
	require.NoError(t, err)
	require.Len(t, check.Messages, 1)
	assert.Equal(t, id, check.Messages[0].ID)
	assert.Equal(t, "developer:0", check.Messages[0].From)
	assert.Equal(t, "reviewer", check.Messages[0].To)
	assert.Equal(t, "done", check.Messages[0].Subject)
	assert.Equal(t, id, check.LatestID)
}

func TestRetentionSettingAppliesToOldMessages(t *testing.T) {
	tests := []struct {
		name      string
		retention int
		want      int
	}{
		{name: "zero keeps everything", retention: 0, want: 1},
		{name: "one day drops a year old message", retention: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.writeProject(t, fmt.Sprintf(`{
				"name": "retention",
				"roles": {"lead": {"title": "Lead", "permissions": ["broadcast"]}},
				"settings": {"message_retention_days": %d}
			}`, tt.retention))
			ctx := context.Background()

			lead := h.join(t, "lead", "lead-1")
			old := `{"id":1,"from":"lead:0","to":"all","type":"message","timestamp":"` +
				domain.FormatTimestamp(h.clock.Now().AddDate(-1, 0, 0)) + `","subject":"","body":"last year"}` + "\n"
			require.NoError(t, os.WriteFile(h.layout.BoardFile(), []byte(old), 0o644))

			check, err := h.service.Check(ctx, lead, 0)
			require.NoError(t, err)
			assert.Len(t, check.Messages, tt.want)

			read, err := h.service.Read(ctx, lead, 0, 0)
			require.NoError(t, err)
			assert.Len(t, read, tt.want)
		})
	}
}

func TestCheckReturnsOnlyVisibleMessagesAfterMarker(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	lead := h.join(t, "lead", "lead-1")
	dev := h.join(t, "developer", "dev-1")

	h.send(t, lead, "developer", "role wide")
	h.send(t, lead, "developer:1", "other slot")
	h.send(t, lead, "all", "everyone")
	h.send(t, lead, "reviewer", "reviewers")
	h.send(t, lead, "developer:0", "just you")

	check, err := h.service.Check(ctx, dev, 0)
	require.NoError(t, err)

	bodies := make([]string, 0, len(check.Messages))
	for _, message := range check.Messages {
		bodies = append(bodies, message.Body)
	}
	assert.Equal(t, []string{"role wide", "everyone", "just you"}, bodies)
	assert.Equal(t, uint64(5), check.LatestID)

	check, err = h.service.Check(ctx, dev, 3)
	require.NoError(t, err)
	require.Len(t, check.Messages, 1)
	assert.Equal(t, uint64(5), check.Messages[0].ID)

	marker, err := h.service.LastSeen(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), marker)
}

func TestSendEnforcesRecipientRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	dev := h.join(t, "developer", "dev-1")

	_, err := h.service.Send(ctx, dev, application.SendCommand{To: "all", Body: "hello"})
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = h.service.Send(ctx, dev, application.SendCommand{To: "designer", Body: "hello"})
	require.ErrorIs(t, err, domain.ErrUnknownRole)

	_, err = h.service.Send(ctx, dev, application.SendCommand{To: "reviewer:x", Body: "hello"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.service.Send(ctx, dev, application.SendCommand{To: "  ", Body: "hello"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	id, err := h.service.Send(ctx, dev, application.SendCommand{To: "human", Body: "question"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	lead := h.join(t, "lead", "lead-1")
	id, err = h.service.Send(ctx, lead, application.SendCommand{To: "all", Body: "standup"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestSendAssignsMonotonicIDsUnderConcurrency(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	senders := []*application.Session{
		h.join(t, "developer", "dev-1"),
		h.join(t, "developer", "dev-2"),
		h.join(t, "reviewer", "rev-1"),
	}

	const perSender = 8
	ids := make(chan uint64, len(senders)*perSender)
	var wg sync.WaitGroup
	for _, sess := range senders {
		wg.Add(1)
		go func(sess *application.Session) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				id, err := h.service.Send(ctx, sess, application.SendCommand{To: "human", Body: "tick"})
				if !assert.NoError(t, err) {
					return
				}
				ids <- id
			}
		}(sess)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	total := uint64(len(senders) * perSender)
	require.Len(t, seen, int(total))
	for id := uint64(1); id <= total; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}

func TestSendSkipsPastMalformedLines(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	lead := h.join(t, "lead", "lead-1")
	h.send(t, lead, "all", "one")

	f, err := os.OpenFile(h.layout.BoardFile(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	id := h.send(t, lead, "all", "three")
	assert.Equal(t, uint64(3), id)

	messages, err := h.service.Read(ctx, lead, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, uint64(3), messages[1].ID)
}

func TestRetentionHidesExpiredMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	lead := h.join(t, "lead", "lead-1")
	h.send(t, lead, "all", "old news")

	h.clock.Advance(8 * 24 * time.Hour)
	lead = h.join(t, "lead", "lead-1")
	h.send(t, lead, "all", "fresh")

	check, err := h.service.Check(ctx, lead, 0)
	require.NoError(t, err)
	require.Len(t, check.Messages, 1)
	assert.Equal(t, "fresh", check.Messages[0].Body)
	assert.Equal(t, uint64(2), check.LatestID)
	assert.Equal(t, 1, check.Team.MessageCount)
}

func TestReadLimitKeepsNewest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	lead := h.join(t, "lead", "lead-1")
	for i := 0; i < 5; i++ {
		h.send(t, lead, "all", "update")
	}

	messages, err := h.service.Read(ctx, lead, 1, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, uint64(4), messages[0].ID)
	assert.Equal(t, uint64(5), messages[1].ID)
}

func TestSendNotifiesListener(t *testing.T) {
	h := newHarness(t)

	lead := h.join(t, "lead", "lead-1")
	h.send(t, lead, "all", "hello")

	assert.Equal(t, []string{"join", "message"}, h.notifier.Events())
}
