package domain

import (
	"sort"
	"strings"
	"time"
)

type Claim struct {
	Files       []string
	Description string
	ClaimedAt   time.Time
	SessionID   string
}

type ClaimSet map[string]Claim

// Conflict describes paths of another claimant that overlap a request.
type Conflict struct {
	Holder      string   `json:"holder"`
	Description string   `json:"description,omitempty"`
	Files       []string `json:"files"`
}

// PathsOverlap treats a directory prefix as covering everything beneath it.
func PathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// NormalizeFiles trims entries, drops empties and removes duplicates while
// keeping the caller's order.
func NormalizeFiles(files []string) []string {
	out := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		trimmed := strings.TrimSpace(file)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	return out
}

// Conflicts compares files against every claim except the one held by self.
func (cs ClaimSet) Conflicts(self string, files []string) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, holder := range cs.Keys() {
		if holder == self {
			continue
		}
		claim := cs[holder]

		overlapping := make([]string, 0)
		for _, theirs := range claim.Files {
			for _, mine := range files {
				if PathsOverlap(mine, theirs) {
					overlapping = append(overlapping, theirs)
					break
				}
			}
		}
		if len(overlapping) == 0 {
			continue
		}

		conflicts = append(conflicts, Conflict{
			Holder:      holder,
			Description: claim.Description,
			Files:       overlapping,
		})
	}

	return conflicts
}

// Prune drops claims whose owning session is no longer bound or whose
// heartbeat is older than the widened claim threshold. It returns the
// surviving set and the removed holders.
func (cs ClaimSet) Prune(bindings Bindings, now time.Time, heartbeatTimeout time.Duration) (ClaimSet, []string) {
	threshold := ClaimStaleAfter(heartbeatTimeout)
	kept := make(ClaimSet, len(cs))
	removed := make([]string, 0)

	for _, holder := range cs.Keys() {
		claim := cs[holder]
		binding, _, ok := bindings.BySession(claim.SessionID)
		if !ok || IsStale(binding.LastHeartbeat, now, threshold) {
			removed = append(removed, holder)
			continue
		}
		kept[holder] = claim
	}

	return kept, removed
}

func (cs ClaimSet) Keys() []string {
	keys := make([]string, 0, len(cs))
	for key := range cs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
