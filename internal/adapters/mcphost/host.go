package mcphost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "teamboard"

// Host exposes the coordination service as MCP tools. One host serves one
// agent, so it holds at most one session and its background heartbeat.
type Host struct {
	service   *application.Service
	logger    *slog.Logger
	sessionID string

	mu       sync.Mutex
	session  *application.Session
	stopBeat func()
	beatCtx  context.Context
}

type Options struct {
	// SessionID pins the agent identity, letting a restarted host resume an
	// existing binding. A random id is generated when empty.
	SessionID string
	Logger    *slog.Logger
}

func New(ctx context.Context, service *application.Service, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return &Host{
		service:   service,
		logger:    logger,
		sessionID: sessionID,
		beatCtx:   ctx,
	}
}

func (h *Host) SessionID() string {
	return h.sessionID
}

// Server builds the MCP server with every tool registered.
func (h *Host) Server(version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, tool := range h.tools() {
		s.AddTool(tool.definition, tool.handle)
	}

	return s
}

// Serve runs the stdio transport until ctx ends or in closes.
func (h *Host) Serve(ctx context.Context, version string, in io.Reader, out io.Writer) error {
	defer h.Close()

	stdio := server.NewStdioServer(h.Server(version))
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve stdio: %w", err)
	}

	return nil
}

// Close stops the background heartbeat. The binding is kept so a restarted
// host can resume it.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopHeartbeatLocked()
}

// current returns the joined session, resuming a persisted binding for the
// host's session id on first use.
func (h *Host) current(ctx context.Context) (*application.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != nil {
		return h.session, nil
	}

	sess, err := h.service.Resume(ctx, h.sessionID)
	if err != nil {
		return nil, err
	}
	h.bindLocked(sess)
	h.logger.Info("resumed session", "session", sess.SessionID, "member", sess.Key())

	return sess, nil
}

func (h *Host) bind(sess *application.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.bindLocked(sess)
}

func (h *Host) bindLocked(sess *application.Session) {
	h.stopHeartbeatLocked()
	h.session = sess
	h.stopBeat = h.service.StartHeartbeat(h.beatCtx, sess)
}

func (h *Host) unbind() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopHeartbeatLocked()
	h.session = nil
}

func (h *Host) stopHeartbeatLocked() {
	if h.stopBeat != nil {
		h.stopBeat()
		h.stopBeat = nil
	}
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

// errorResult reports failures to the calling agent as tool errors rather
// than protocol errors, so the agent can read and react to them.
func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// fail reports err as a tool error. A session whose slot went to another
// session is dropped, so later calls ask the agent to join again.
func (h *Host) fail(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, domain.ErrNotJoined) {
		h.unbind()
	}

	return errorResult(err)
}

const instructions = `teamboard coordinates several agents working in one repository.
Call join with a role first. Then use check or wait to read messages addressed to you,
send to talk to other members ("role:instance", "role", "all" or "human"),
and claim the files you are about to edit. Call leave when you are done.`
