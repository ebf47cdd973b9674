package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposal(id uint64, vote string) Message {
	return Message{
		ID:       id,
		From:     "lead:0",
		Type:     MessageTypeVote,
		Subject:  "switch to pairing",
		Metadata: map[string]any{MetaVoteType: VoteTypeWorkflowChange, MetaVote: vote},
	}
}

func ballot(id uint64, replyTo any, vote string) Message {
	return Message{
		ID:       id,
		Type:     MessageTypeVote,
		Metadata: map[string]any{MetaVoteType: VoteTypeWorkflowChange, MetaInReplyTo: replyTo, MetaVote: vote},
	}
}

func TestRequiredVotes(t *testing.T) {
	assert.Equal(t, 1, RequiredVotes(0))
	assert.Equal(t, 2, RequiredVotes(1))
	assert.Equal(t, 2, RequiredVotes(2))
	assert.Equal(t, 3, RequiredVotes(3))
	assert.Equal(t, 3, RequiredVotes(4))
}

func TestTallyThreeMembersNeedsThreeYes(t *testing.T) {
	messages := []Message{
		proposal(1, ""),
		ballot(2, float64(1), "yes"),
		ballot(3, "1", "yes"),
	}

	tallies := TallyVotes(messages, 3)
	require.Len(t, tallies, 1)
	assert.Equal(t, 3, tallies[0].Required)
	assert.Equal(t, 2, tallies[0].Yes)
	assert.Equal(t, VotePending, tallies[0].Outcome)

	messages = append(messages, ballot(4, float64(1), "yes"))
	tallies = TallyVotes(messages, 3)
	assert.Equal(t, VoteApproved, tallies[0].Outcome)
	assert.Equal(t, uint64(4), tallies[0].ResolvedBy)
}

func TestTallyCountsProposerVote(t *testing.T) {
	messages := []Message{
		proposal(1, "yes"),
		ballot(2, float64(1), "yes"),
	}

	tallies := TallyVotes(messages, 1)
	require.Len(t, tallies, 1)
	assert.Equal(t, 2, tallies[0].Yes)
	assert.Equal(t, VoteApproved, tallies[0].Outcome)
}

func TestTallyFreezesAfterResolution(t *testing.T) {
	messages := []Message{
		proposal(1, "no"),
		ballot(2, float64(1), "no"),
		ballot(3, float64(1), "yes"),
		ballot(4, float64(1), "yes"),
	}

	tallies := TallyVotes(messages, 2)
	require.Len(t, tallies, 1)
	assert.Equal(t, VoteRejected, tallies[0].Outcome)
	assert.Equal(t, 0, tallies[0].Yes)
}

func TestTallyIgnoresUnrelatedMessages(t *testing.T) {
	messages := []Message{
		{ID: 1, Type: MessageTypeDefault},
		{ID: 2, Type: MessageTypeVote, Metadata: map[string]any{MetaVoteType: "other"}},
		ballot(3, float64(99), "yes"),
		ballot(4, "nope", "yes"),
	}

	assert.Empty(t, TallyVotes(messages, 3))
}

func TestTallyIsReplayStable(t *testing.T) {
	messages := []Message{
		ballot(3, float64(1), "yes"),
		proposal(1, "yes"),
		ballot(2, float64(1), "maybe"),
	}

	first := TallyVotes(messages, 3)
	second := TallyVotes(messages, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first[0].Yes)
}
