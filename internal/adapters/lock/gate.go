package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
	"github.com/gofrs/flock"
)

const (
	DefaultTimeout    = 10 * time.Second
	defaultRetryDelay = 25 * time.Millisecond
)

// Gate is an exclusive advisory lock on one file, shared by every process
// that touches the same project.
type Gate struct {
	path       string
	timeout    time.Duration
	retryDelay time.Duration
}

var _ ports.Locker = (*Gate)(nil)

func NewGate(path string, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Gate{path: path, timeout: timeout, retryDelay: defaultRetryDelay}
}

// WithLock runs fn while holding the lock. Each call opens its own handle so
// concurrent callers inside one process also exclude each other.
func (g *Gate) WithLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLockFailed, &domain.IOError{Op: "create directory", Path: filepath.Dir(g.path), Err: err})
	}

	lockCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	fileLock := flock.New(g.path)
	locked, err := fileLock.TryLockContext(lockCtx, g.retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: timed out after %s waiting for %s", domain.ErrLockFailed, g.timeout, g.path)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrLockFailed, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", domain.ErrLockFailed, g.path)
	}
	defer func() { _ = fileLock.Unlock() }()

	return fn()
}
