package application

import (
	"math"
	"time"

	"github.com/bnema/teamboard/internal/domain"
)

type WaitStatus string

const (
	WaitMessagesReceived WaitStatus = "messages_received"
	WaitTimedOut         WaitStatus = "timeout"
)

type ClaimStatus string

const (
	ClaimClaimed              ClaimStatus = "claimed"
	ClaimClaimedWithConflicts ClaimStatus = "claimed_with_conflicts"
)

type JoinResult struct {
	Session        Session          `json:"session"`
	Instance       int              `json:"instance"`
	Title          string           `json:"title,omitempty"`
	Briefing       string           `json:"briefing"`
	Team           TeamStatus       `json:"team_status"`
	RecentMessages []domain.Message `json:"recent_messages"`
}

type CheckResult struct {
	Messages []domain.Message `json:"messages"`
	LatestID uint64           `json:"latest_id"`
	Team     TeamStatus       `json:"team_status"`
}

type WaitResult struct {
	Status     WaitStatus       `json:"status"`
	Messages   []domain.Message `json:"messages"`
	Waited     time.Duration    `json:"-"`
	WaitedSecs float64          `json:"waited_secs"`
}

func newWaitResult(status WaitStatus, messages []domain.Message, waited time.Duration) WaitResult {
	return WaitResult{
		Status:     status,
		Messages:   messages,
		Waited:     waited,
		WaitedSecs: math.Round(waited.Seconds()*10) / 10,
	}
}

type ClaimResult struct {
	Status    ClaimStatus       `json:"status"`
	Holder    string            `json:"holder"`
	Files     []string          `json:"files"`
	Conflicts []domain.Conflict `json:"conflicts,omitempty"`
	Pruned    []string          `json:"pruned,omitempty"`
}

type ClaimView struct {
	Holder      string    `json:"holder"`
	Files       []string  `json:"files"`
	Description string    `json:"description,omitempty"`
	ClaimedAt   time.Time `json:"claimed_at"`
	SessionID   string    `json:"session_id"`
}

type TeamStatus struct {
	Project      string       `json:"project"`
	WorkflowType string       `json:"workflow_type,omitempty"`
	HumanInLoop  bool         `json:"human_in_loop"`
	AutoCollab   bool         `json:"auto_collab"`
	Roles        []RoleStatus `json:"roles"`
	MessageCount int          `json:"message_count"`
	LatestID     uint64       `json:"latest_id"`
	ClaimCount   int          `json:"claim_count"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

type RoleStatus struct {
	Slug        domain.RoleSlug `json:"slug"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Capacity    int             `json:"capacity"`
	Members     []MemberStatus  `json:"members"`
}

func (r RoleStatus) Vacancies() int {
	live := 0
	for _, member := range r.Members {
		if !member.Stale {
			live++
		}
	}
	if live >= r.Capacity {
		return 0
	}

	return r.Capacity - live
}

type MemberStatus struct {
	Key           string    `json:"key"`
	Instance      int       `json:"instance"`
	SessionID     string    `json:"session_id"`
	ClaimedAt     time.Time `json:"claimed_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Stale         bool      `json:"stale"`
}
