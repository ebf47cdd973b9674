package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/teamboard/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// BoardWatcher signals writes to the message log. Directory-level watching
// keeps the watch alive when the log is created after Watch starts.
type BoardWatcher struct {
	dir    string
	file   string
	logger *slog.Logger
}

var _ ports.ChangeWatcher = (*BoardWatcher)(nil)

func NewBoardWatcher(boardPath string, logger *slog.Logger) *BoardWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &BoardWatcher{
		dir:    filepath.Dir(boardPath),
		file:   filepath.Base(boardPath),
		logger: logger,
	}
}

// Watch returns a channel that receives at most one pending signal at a
// time. The channel is closed once stop is called, ctx ends, or the
// underlying watcher fails.
func (w *BoardWatcher) Watch(ctx context.Context) (<-chan struct{}, func(), error) {
	if _, err := os.Stat(w.dir); err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", w.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != w.file {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Debug("board watcher error", "dir", w.dir, "error", err)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
			wg.Wait()
		})
	}

	return changes, stop, nil
}
