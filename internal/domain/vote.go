package domain

import (
	"sort"
	"strconv"
	"strings"
)

const (
	VoteTypeWorkflowChange = "workflow_change"

	MetaVoteType  = "vote_type"
	MetaInReplyTo = "in_reply_to"
	MetaVote      = "vote"

	VoteYes = "yes"
	VoteNo  = "no"
)

type VoteOutcome string

const (
	VotePending  VoteOutcome = "pending"
	VoteApproved VoteOutcome = "approved"
	VoteRejected VoteOutcome = "rejected"
)

type ProposalTally struct {
	ProposalID uint64      `json:"proposal_id"`
	Proposer   string      `json:"proposer"`
	Subject    string      `json:"subject"`
	Yes        int         `json:"yes_count"`
	No         int         `json:"no_count"`
	Required   int         `json:"required"`
	Outcome    VoteOutcome `json:"outcome"`
	// ResolvedBy is the id of the ballot that settled the proposal, zero
	// while pending or when the proposer's own vote already settles it.
	ResolvedBy uint64 `json:"resolved_by,omitempty"`
}

func (t ProposalTally) Resolved() bool {
	return t.Outcome != VotePending
}

// RequiredVotes is a strict majority of the bound members plus one seat
// reserved for a human participant.
func RequiredVotes(activeMembers int) int {
	if activeMembers < 0 {
		activeMembers = 0
	}

	return (activeMembers+1)/2 + 1
}

// TallyVotes replays the log and returns one tally per workflow-change
// proposal, ordered by proposal id. Ballots are applied in id order and stop
// counting once the proposal is resolved.
func TallyVotes(messages []Message, activeMembers int) []ProposalTally {
	ordered := make([]Message, 0, len(messages))
	for _, message := range messages {
		if isWorkflowVote(message) {
			ordered = append(ordered, message)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	required := RequiredVotes(activeMembers)
	tallies := make(map[uint64]*ProposalTally)
	order := make([]uint64, 0)

	for _, message := range ordered {
		replyTo, isReply := inReplyTo(message)
		if !isReply {
			tally := &ProposalTally{
				ProposalID: message.ID,
				Proposer:   message.From,
				Subject:    message.Subject,
				Required:   required,
				Outcome:    VotePending,
			}
			tally.apply(message.MetadataString(MetaVote), 0)
			tallies[message.ID] = tally
			order = append(order, message.ID)
			continue
		}

		tally, ok := tallies[replyTo]
		if !ok || tally.Resolved() {
			continue
		}
		tally.apply(message.MetadataString(MetaVote), message.ID)
	}

	out := make([]ProposalTally, 0, len(order))
	for _, id := range order {
		out = append(out, *tallies[id])
	}

	return out
}

func (t *ProposalTally) apply(vote string, ballotID uint64) {
	switch strings.ToLower(vote) {
	case VoteYes:
		t.Yes++
	case VoteNo:
		t.No++
	default:
		return
	}

	switch {
	case t.Yes >= t.Required:
		t.Outcome = VoteApproved
		t.ResolvedBy = ballotID
	case t.No >= t.Required:
		t.Outcome = VoteRejected
		t.ResolvedBy = ballotID
	}
}

func isWorkflowVote(message Message) bool {
	return message.Type == MessageTypeVote && message.MetadataString(MetaVoteType) == VoteTypeWorkflowChange
}

// inReplyTo accepts the proposal id as a JSON number or a numeric string.
func inReplyTo(message Message) (uint64, bool) {
	if message.Metadata == nil {
		return 0, false
	}
	raw, ok := message.Metadata[MetaInReplyTo]
	if !ok || raw == nil {
		return 0, false
	}

	switch value := raw.(type) {
	case float64:
		if value < 0 {
			return 0, true
		}
		return uint64(value), true
	case int:
		if value < 0 {
			return 0, true
		}
		return uint64(value), true
	case int64:
		if value < 0 {
			return 0, true
		}
		return uint64(value), true
	case uint64:
		return value, true
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, false
		}
		id, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return 0, true
		}
		return id, true
	default:
		return 0, true
	}
}
