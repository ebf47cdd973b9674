package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/teamboard/internal/domain"
)

// StartHeartbeat re-heartbeats sess in the background until the returned
// stop func is called or ctx ends. It also stops once the session's slot has
// gone to another session. Stop waits for the goroutine to exit and is safe
// to call more than once.
func (s *Service) StartHeartbeat(ctx context.Context, sess *Session) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	interval := s.opts.HeartbeatInterval
	snapshot := *sess

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := s.Heartbeat(ctx, &snapshot)
				switch {
				case err == nil || ctx.Err() != nil:
				case errors.Is(err, domain.ErrNotJoined):
					s.logger.Warn("session replaced, stopping background heartbeat", "session", snapshot.SessionID, "error", err)
					return
				default:
					s.logger.Warn("background heartbeat failed", "session", snapshot.SessionID, "error", err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
