package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/domain"
)

// Session is the explicit per-agent context handed to every role-scoped
// operation. A host keeps one per agent process.
type Session struct {
	SessionID string          `json:"session_id"`
	Role      domain.RoleSlug `json:"role"`
	Instance  int             `json:"instance"`
}

func (s *Session) Key() string {
	return domain.MemberKey(s.Role, s.Instance)
}

func (s *Session) validate() error {
	if s == nil || strings.TrimSpace(s.SessionID) == "" || s.Role == "" {
		return domain.ErrNotJoined
	}

	return nil
}

// Resume rebuilds the session bound to sessionID from persisted state, for
// hosts that do not live as long as the agent.
func (s *Service) Resume(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrNotJoined
	}

	bindings, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	binding, _, ok := bindings.BySession(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: no binding for session %s", domain.ErrNotJoined, sessionID)
	}

	return &Session{SessionID: binding.SessionID, Role: binding.Role, Instance: binding.Instance}, nil
}
