package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type BindingStatus string

const BindingActive BindingStatus = "active"

type SessionBinding struct {
	Role          RoleSlug
	Instance      int
	SessionID     string
	ClaimedAt     time.Time
	LastHeartbeat time.Time
	Status        BindingStatus
}

func (b SessionBinding) Key() string {
	return MemberKey(b.Role, b.Instance)
}

func (b SessionBinding) Active() bool {
	return b.Status == BindingActive
}

// MemberKey renders the "role:instance" address of a role slot.
func MemberKey(role RoleSlug, instance int) string {
	return fmt.Sprintf("%s:%d", role, instance)
}

// ParseMemberKey splits "role" or "role:instance". The instance is -1 when
// the key names the role only.
func ParseMemberKey(key string) (RoleSlug, int, error) {
	slug, rawInstance, hasInstance := strings.Cut(strings.TrimSpace(key), ":")
	if slug == "" {
		return "", 0, fmt.Errorf("%w: empty role in %q", ErrInvalidInput, key)
	}
	if !hasInstance {
		return RoleSlug(slug), -1, nil
	}

	instance, err := strconv.Atoi(rawInstance)
	if err != nil || instance < 0 {
		return "", 0, fmt.Errorf("%w: bad instance in %q", ErrInvalidInput, key)
	}

	return RoleSlug(slug), instance, nil
}

type Bindings []SessionBinding

func (bs Bindings) BySession(sessionID string) (SessionBinding, int, bool) {
	for i, binding := range bs {
		if binding.SessionID == sessionID {
			return binding, i, true
		}
	}

	return SessionBinding{}, -1, false
}

func (bs Bindings) ActiveFor(role RoleSlug) Bindings {
	out := make(Bindings, 0, len(bs))
	for _, binding := range bs {
		if binding.Role == role && binding.Active() {
			out = append(out, binding)
		}
	}

	return out
}

// SlotHolder returns the active binding occupying role:instance, if any.
func (bs Bindings) SlotHolder(role RoleSlug, instance int) (SessionBinding, bool) {
	for _, binding := range bs {
		if binding.Role == role && binding.Instance == instance && binding.Active() {
			return binding, true
		}
	}

	return SessionBinding{}, false
}

// NextInstance returns the smallest non-negative instance not held by an
// active binding of role.
func (bs Bindings) NextInstance(role RoleSlug) int {
	used := make(map[int]struct{}, len(bs))
	for _, binding := range bs.ActiveFor(role) {
		used[binding.Instance] = struct{}{}
	}

	for i := 0; ; i++ {
		if _, ok := used[i]; !ok {
			return i
		}
	}
}

// Evictable returns the index of the first binding of role that is either
// not active or has missed its heartbeat timeout.
func (bs Bindings) Evictable(role RoleSlug, now time.Time, timeout time.Duration) (int, bool) {
	for i, binding := range bs {
		if binding.Role != role {
			continue
		}
		if !binding.Active() || IsStale(binding.LastHeartbeat, now, timeout) {
			return i, true
		}
	}

	return -1, false
}

func (bs Bindings) Without(index int) Bindings {
	out := make(Bindings, 0, len(bs))
	out = append(out, bs[:index]...)
	return append(out, bs[index+1:]...)
}

func (bs Bindings) WithoutSession(sessionID string) Bindings {
	out := make(Bindings, 0, len(bs))
	for _, binding := range bs {
		if binding.SessionID != sessionID {
			out = append(out, binding)
		}
	}

	return out
}

// LiveCount counts active bindings whose heartbeat is within timeout.
func (bs Bindings) LiveCount(now time.Time, timeout time.Duration) int {
	count := 0
	for _, binding := range bs {
		if binding.Active() && !IsStale(binding.LastHeartbeat, now, timeout) {
			count++
		}
	}

	return count
}
