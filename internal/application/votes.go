package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/domain"
)

// Votes replays the whole board. Membership is the current count of live
// bindings.
func (s *Service) Votes(ctx context.Context) ([]domain.ProposalTally, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}

	bindings, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	members := bindings.LiveCount(s.clock.Now(), cfg.HeartbeatTimeout())

	return domain.TallyVotes(messages, members), nil
}

func (s *Service) Propose(ctx context.Context, sess *Session, cmd ProposeCommand) (uint64, error) {
	if strings.TrimSpace(cmd.Subject) == "" {
		return 0, fmt.Errorf("%w: proposal subject is required", domain.ErrInvalidInput)
	}

	to := strings.TrimSpace(cmd.To)
	if to == "" {
		to = domain.RecipientAll
	}

	metadata := map[string]any{domain.MetaVoteType: domain.VoteTypeWorkflowChange}
	if cmd.Vote != "" {
		vote, err := normalizeVote(cmd.Vote)
		if err != nil {
			return 0, err
		}
		metadata[domain.MetaVote] = vote
	}

	return s.Send(ctx, sess, SendCommand{
		To:       to,
		Type:     domain.MessageTypeVote,
		Subject:  cmd.Subject,
		Body:     cmd.Body,
		Metadata: metadata,
	})
}

// CastVote replies to a proposal. The ballot is addressed to the proposer,
// which every role may message.
func (s *Service) CastVote(ctx context.Context, sess *Session, cmd CastVoteCommand) (uint64, error) {
	vote, err := normalizeVote(cmd.Vote)
	if err != nil {
		return 0, err
	}

	messages, err := s.board.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read board: %w", err)
	}

	var proposal *domain.Message
	for i := range messages {
		if messages[i].ID == cmd.ProposalID {
			proposal = &messages[i]
			break
		}
	}
	if proposal == nil || proposal.Type != domain.MessageTypeVote || proposal.MetadataString(domain.MetaVoteType) != domain.VoteTypeWorkflowChange {
		return 0, fmt.Errorf("%w: message %d is not a workflow proposal", domain.ErrInvalidInput, cmd.ProposalID)
	}

	return s.Send(ctx, sess, SendCommand{
		To:      proposal.From,
		Type:    domain.MessageTypeVote,
		Subject: "Re: " + proposal.Subject,
		Body:    cmd.Comment,
		Metadata: map[string]any{
			domain.MetaVoteType:  domain.VoteTypeWorkflowChange,
			domain.MetaInReplyTo: cmd.ProposalID,
			domain.MetaVote:      vote,
		},
	})
}

func normalizeVote(raw string) (string, error) {
	vote := strings.ToLower(strings.TrimSpace(raw))
	switch vote {
	case domain.VoteYes, domain.VoteNo:
		return vote, nil
	default:
		return "", fmt.Errorf("%w: vote must be %q or %q", domain.ErrInvalidInput, domain.VoteYes, domain.VoteNo)
	}
}
