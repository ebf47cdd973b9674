package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardWatcherSignalsOnBoardWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	board := filepath.Join(dir, "board.jsonl")

	changes, stop, err := NewBoardWatcher(board, nil).Watch(context.Background())
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(board, []byte("{}\n"), 0o644))

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestBoardWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	changes, stop, err := NewBoardWatcher(filepath.Join(dir, "board.jsonl"), nil).Watch(context.Background())
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "claims.json"), []byte("{}"), 0o644))

	select {
	case <-changes:
		t.Fatal("unexpected signal for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBoardWatcherStopClosesChannel(t *testing.T) {
	t.Parallel()

	changes, stop, err := NewBoardWatcher(filepath.Join(t.TempDir(), "board.jsonl"), nil).Watch(context.Background())
	require.NoError(t, err)

	stop()
	stop()

	_, ok := <-changes
	assert.False(t, ok)
}

func TestBoardWatcherMissingDirectory(t *testing.T) {
	t.Parallel()

	_, _, err := NewBoardWatcher(filepath.Join(t.TempDir(), "missing", "board.jsonl"), nil).Watch(context.Background())
	require.Error(t, err)
}
