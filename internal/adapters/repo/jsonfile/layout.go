package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	StateDirName = ".teamboard"

	projectFileName  = "project.json"
	sessionsFileName = "sessions.json"
	boardFileName    = "board.jsonl"
	claimsFileName   = "claims.json"
	lockFileName     = "board.lock"
	lastSeenDirName  = "last-seen"
	rolesDirName     = "roles"

	stateDirMode  = 0o755
	stateFileMode = 0o644
)

// Layout resolves every state path of one project.
type Layout struct {
	Root string
}

func NewLayout(projectDir string) (Layout, error) {
	if strings.TrimSpace(projectDir) == "" {
		return Layout{}, errors.New("project directory is empty")
	}

	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve project directory: %w", err)
	}

	return Layout{Root: filepath.Clean(abs)}, nil
}

func (l Layout) StateDir() string     { return filepath.Join(l.Root, StateDirName) }
func (l Layout) ProjectFile() string  { return filepath.Join(l.StateDir(), projectFileName) }
func (l Layout) SessionsFile() string { return filepath.Join(l.StateDir(), sessionsFileName) }
func (l Layout) BoardFile() string    { return filepath.Join(l.StateDir(), boardFileName) }
func (l Layout) ClaimsFile() string   { return filepath.Join(l.StateDir(), claimsFileName) }
func (l Layout) LockFile() string     { return filepath.Join(l.StateDir(), lockFileName) }
func (l Layout) LastSeenDir() string  { return filepath.Join(l.StateDir(), lastSeenDirName) }
func (l Layout) RolesDir() string     { return filepath.Join(l.StateDir(), rolesDirName) }

// FindProjectRoot walks up from start to the first directory holding a
// project config. It returns start itself when none is found.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, StateDirName, projectFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
