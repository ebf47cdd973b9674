package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/teamboard/internal/adapters/fsutil"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
	"gopkg.in/yaml.v3"
)

const briefingFileMode = 0o644

// Store keeps one markdown briefing per role under root.
type Store struct {
	root  string
	clock ports.Clock
	mu    sync.RWMutex
}

var _ ports.BriefingStore = (*Store)(nil)

// Meta is the optional frontmatter written on update.
type Meta struct {
	UpdatedBy string `yaml:"updated_by,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty"`
}

func NewStore(root string, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{root: filepath.Clean(root), clock: clock}
}

// Get returns the briefing body without frontmatter, or "" when the role has
// no briefing yet.
func (s *Store) Get(ctx context.Context, role domain.RoleSlug) (string, error) {
	_, body, err := s.Read(ctx, role)

	return body, err
}

func (s *Store) Read(ctx context.Context, role domain.RoleSlug) (Meta, string, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, "", err
	}

	path, err := s.pathForRole(role)
	if err != nil {
		return Meta{}, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Meta{}, "", nil
		}
		return Meta{}, "", &domain.IOError{Op: "read briefing", Path: path, Err: err}
	}

	meta, body := splitFrontMatter(data)

	return meta, body, nil
}

func (s *Store) Put(ctx context.Context, role domain.RoleSlug, content string, updatedBy string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForRole(role)
	if err != nil {
		return err
	}

	data, err := renderFrontMatter(Meta{
		UpdatedBy: updatedBy,
		UpdatedAt: domain.FormatTimestamp(s.clock.Now()),
	}, content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fsutil.WriteFileAtomic(path, data, briefingFileMode)
}

func (s *Store) pathForRole(role domain.RoleSlug) (string, error) {
	if err := domain.ValidateRoleSlug(role); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	cleaned := filepath.Clean(string(role))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("%w: invalid role %q", domain.ErrInvalidInput, role)
	}

	return filepath.Join(s.root, cleaned+".md"), nil
}

// splitFrontMatter treats content without a closed `---` fence, or with a
// fence that is not valid YAML, as body only.
func splitFrontMatter(content []byte) (Meta, string) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Meta{}, string(normalized)
	}

	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Meta{}, string(normalized)
	}

	var meta Meta
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return Meta{}, string(normalized)
	}

	return meta, strings.TrimLeft(string(parts[1]), "\n")
}

func renderFrontMatter(meta Meta, body string) ([]byte, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode briefing frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}
