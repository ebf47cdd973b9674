package application

import "github.com/bnema/teamboard/internal/domain"

type SendCommand struct {
	To       string
	Type     string
	Subject  string
	Body     string
	Metadata map[string]any
}

type ClaimCommand struct {
	Files       []string
	Description string
}

type ProposeCommand struct {
	// To defaults to every member.
	To      string
	Subject string
	Body    string
	// Vote is the proposer's own ballot; empty abstains.
	Vote string
}

type CastVoteCommand struct {
	ProposalID uint64
	Vote       string
	Comment    string
}

type UpdateBriefingCommand struct {
	Role    domain.RoleSlug
	Content string
}
