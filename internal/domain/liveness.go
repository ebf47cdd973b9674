package domain

import "time"

// ClaimStaleFactor widens the heartbeat timeout before a claim is pruned, so
// a single missed beat does not cost a session its reservations.
const ClaimStaleFactor = 2.5

func IsStale(lastHeartbeat, now time.Time, timeout time.Duration) bool {
	if lastHeartbeat.IsZero() {
		return true
	}

	return now.Sub(lastHeartbeat) > timeout
}

func ClaimStaleAfter(heartbeatTimeout time.Duration) time.Duration {
	return time.Duration(float64(heartbeatTimeout) * ClaimStaleFactor)
}
