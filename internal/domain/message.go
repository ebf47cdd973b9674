package domain

import (
	"strings"
	"time"
)

const (
	RecipientAll   = "all"
	RecipientHuman = "human"

	MessageTypeDefault = "message"
	MessageTypeVote    = "vote"
)

type Message struct {
	ID        uint64         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Time parses the message timestamp. Timestamps are kept as raw strings so a
// malformed value survives a read-modify cycle untouched.
func (m Message) Time() (time.Time, bool) {
	return ParseTimestamp(m.Timestamp)
}

func (m Message) MetadataString(key string) string {
	if m.Metadata == nil {
		return ""
	}
	value, ok := m.Metadata[key].(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(value)
}

// VisibleTo reports whether the role slot may read the message.
func (m Message) VisibleTo(role RoleSlug, instance int) bool {
	switch m.To {
	case RecipientAll, string(role), MemberKey(role, instance):
		return true
	default:
		return false
	}
}

// Retained reports whether the message survives the retention window. A zero
// retention keeps everything and unparseable timestamps are always kept.
func (m Message) Retained(now time.Time, retention time.Duration) bool {
	if retention <= 0 {
		return true
	}
	ts, ok := m.Time()
	if !ok {
		return true
	}

	return now.Sub(ts) <= retention
}

type MessageFilter struct {
	Role      RoleSlug
	Instance  int
	AfterID   uint64
	Now       time.Time
	Retention time.Duration
}

func FilterMessages(messages []Message, filter MessageFilter) []Message {
	out := make([]Message, 0)
	for _, message := range messages {
		if message.ID <= filter.AfterID {
			continue
		}
		if !message.VisibleTo(filter.Role, filter.Instance) {
			continue
		}
		if !message.Retained(filter.Now, filter.Retention) {
			continue
		}
		out = append(out, message)
	}

	return out
}

func RetainedMessages(messages []Message, now time.Time, retention time.Duration) []Message {
	out := make([]Message, 0, len(messages))
	for _, message := range messages {
		if message.Retained(now, retention) {
			out = append(out, message)
		}
	}

	return out
}

func LatestID(messages []Message) uint64 {
	var latest uint64
	for _, message := range messages {
		if message.ID > latest {
			latest = message.ID
		}
	}

	return latest
}
