package ports

import "context"

// Locker serializes every read-decide-write sequence against one project.
type Locker interface {
	WithLock(ctx context.Context, fn func() error) error
}

// Notifier is a best-effort signal to an external listener. Implementations
// must not return delivery failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, event string)
}

// ChangeWatcher yields a value whenever the message log may have changed.
// The returned stop func releases the watch.
type ChangeWatcher interface {
	Watch(ctx context.Context) (<-chan struct{}, func(), error)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}
