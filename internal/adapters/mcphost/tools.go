package mcphost

import (
	"context"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type tool struct {
	definition mcp.Tool
	handle     server.ToolHandlerFunc
}

func (h *Host) tools() []tool {
	return []tool{
		{
			definition: mcp.NewTool("join",
				mcp.WithDescription("Bind this agent to a role slot. Returns the instance number, the role briefing, team status and recent messages."),
				mcp.WithString("role", mcp.Required(), mcp.Description("Role slug from the project roster")),
			),
			handle: h.handleJoin,
		},
		{
			definition: mcp.NewTool("send",
				mcp.WithDescription("Append a message to the board."),
				mcp.WithString("to", mcp.Required(), mcp.Description(`Recipient: "role:instance", "role", "all" or "human"`)),
				mcp.WithString("type", mcp.Description(`Message type, defaults to "message"`)),
				mcp.WithString("subject", mcp.Description("Short subject line")),
				mcp.WithString("body", mcp.Description("Message body")),
				mcp.WithObject("metadata", mcp.Description("Optional free-form metadata")),
			),
			handle: h.handleSend,
		},
		{
			definition: mcp.NewTool("check",
				mcp.WithDescription("Return messages newer than last_seen plus latest_id and team status. Omit last_seen to use the stored marker."),
				mcp.WithNumber("last_seen", mcp.Description("Highest message id already processed")),
			),
			handle: h.handleCheck,
		},
		{
			definition: mcp.NewTool("wait",
				mcp.WithDescription("Block until new messages arrive or the timeout elapses. Heartbeats while waiting."),
				mcp.WithNumber("timeout", mcp.Description("Seconds to wait, default 300")),
			),
			handle: h.handleWait,
		},
		{
			definition: mcp.NewTool("status",
				mcp.WithDescription("Summarize roles, live members, message count and claims."),
			),
			handle: h.handleStatus,
		},
		{
			definition: mcp.NewTool("leave",
				mcp.WithDescription("Release this agent's role slot and file claim."),
			),
			handle: h.handleLeave,
		},
		{
			definition: mcp.NewTool("claim",
				mcp.WithDescription("Reserve files or directories. Overlaps with other claims are reported, never blocked."),
				mcp.WithArray("files", mcp.Required(), mcp.Description("Paths; a trailing slash covers a directory"), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithString("description", mcp.Description("What the work is")),
			),
			handle: h.handleClaim,
		},
		{
			definition: mcp.NewTool("release",
				mcp.WithDescription("Drop this agent's file claim."),
			),
			handle: h.handleRelease,
		},
		{
			definition: mcp.NewTool("claims",
				mcp.WithDescription("List live file claims. Stale claims are pruned."),
			),
			handle: h.handleClaims,
		},
		{
			definition: mcp.NewTool("update_briefing",
				mcp.WithDescription("Rewrite the briefing shown to agents joining a role. Requires assign_tasks."),
				mcp.WithString("role", mcp.Required(), mcp.Description("Target role slug")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Markdown briefing")),
			),
			handle: h.handleUpdateBriefing,
		},
		{
			definition: mcp.NewTool("briefing",
				mcp.WithDescription("Show a role briefing. Defaults to this agent's role."),
				mcp.WithString("role", mcp.Description("Role slug")),
			),
			handle: h.handleBriefing,
		},
		{
			definition: mcp.NewTool("heartbeat",
				mcp.WithDescription("Refresh this agent's liveness."),
			),
			handle: h.handleHeartbeat,
		},
		{
			definition: mcp.NewTool("votes",
				mcp.WithDescription("Tally workflow-change proposals on the board."),
			),
			handle: h.handleVotes,
		},
		{
			definition: mcp.NewTool("propose",
				mcp.WithDescription("Open a workflow-change proposal for the team to vote on."),
				mcp.WithString("subject", mcp.Required(), mcp.Description("What should change")),
				mcp.WithString("body", mcp.Description("Rationale")),
				mcp.WithString("to", mcp.Description(`Recipient, defaults to "all"`)),
				mcp.WithString("vote", mcp.Description(`Your own ballot, "yes" or "no"`), mcp.Enum("yes", "no")),
			),
			handle: h.handlePropose,
		},
		{
			definition: mcp.NewTool("vote",
				mcp.WithDescription("Vote on an open proposal."),
				mcp.WithNumber("proposal_id", mcp.Required(), mcp.Description("Message id of the proposal")),
				mcp.WithString("vote", mcp.Required(), mcp.Description(`"yes" or "no"`), mcp.Enum("yes", "no")),
				mcp.WithString("comment", mcp.Description("Optional comment")),
			),
			handle: h.handleVote,
		},
	}
}

func (h *Host) handleJoin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := argsOf(req).requireStr("role")
	if err != nil {
		return h.fail(err)
	}

	result, err := h.service.Join(ctx, domain.RoleSlug(role), h.sessionID)
	if err != nil {
		return h.fail(err)
	}
	sess := result.Session
	h.bind(&sess)

	return jsonResult(result)
}

func (h *Host) handleSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	a := argsOf(req)
	id, err := h.service.Send(ctx, sess, application.SendCommand{
		To:       a.str("to"),
		Type:     a.str("type"),
		Subject:  a.str("subject"),
		Body:     a.text("body"),
		Metadata: a.object("metadata"),
	})
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]uint64{"message_id": id})
}

func (h *Host) handleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	lastSeen, ok, err := argsOf(req).number("last_seen")
	if err != nil {
		return h.fail(err)
	}
	if !ok {
		if lastSeen, err = h.service.LastSeen(ctx, sess); err != nil {
			return h.fail(err)
		}
	}

	result, err := h.service.Check(ctx, sess, lastSeen)
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(result)
}

func (h *Host) handleWait(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	timeout, err := argsOf(req).seconds("timeout")
	if err != nil {
		return h.fail(err)
	}

	result, err := h.service.Wait(ctx, sess, timeout)
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(result)
}

func (h *Host) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.service.Status(ctx)
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(status)
}

func (h *Host) handleLeave(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	if err := h.service.Leave(ctx, sess); err != nil {
		return h.fail(err)
	}
	h.unbind()

	return jsonResult(map[string]any{})
}

func (h *Host) handleClaim(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	a := argsOf(req)
	result, err := h.service.Claim(ctx, sess, application.ClaimCommand{
		Files:       a.list("files"),
		Description: a.text("description"),
	})
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(result)
}

func (h *Host) handleRelease(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	if err := h.service.Release(ctx, sess); err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]any{})
}

func (h *Host) handleClaims(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	claims, err := h.service.Claims(ctx)
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]any{"claims": claims})
}

func (h *Host) handleUpdateBriefing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	a := argsOf(req)
	role, err := a.requireStr("role")
	if err != nil {
		return h.fail(err)
	}

	err = h.service.UpdateBriefing(ctx, sess, application.UpdateBriefingCommand{
		Role:    domain.RoleSlug(role),
		Content: a.text("content"),
	})
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]string{"role": role, "status": "updated"})
}

func (h *Host) handleBriefing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role := argsOf(req).str("role")
	if role == "" {
		sess, err := h.current(ctx)
		if err != nil {
			return h.fail(err)
		}
		role = string(sess.Role)
	}

	briefing, err := h.service.Briefing(ctx, domain.RoleSlug(role))
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]string{"role": role, "briefing": briefing})
}

func (h *Host) handleHeartbeat(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	if err := h.service.Heartbeat(ctx, sess); err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]string{"member": sess.Key(), "status": "alive"})
}

func (h *Host) handleVotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tallies, err := h.service.Votes(ctx)
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]any{"proposals": tallies})
}

func (h *Host) handlePropose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	a := argsOf(req)
	id, err := h.service.Propose(ctx, sess, application.ProposeCommand{
		To:      a.str("to"),
		Subject: a.str("subject"),
		Body:    a.text("body"),
		Vote:    a.str("vote"),
	})
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]uint64{"message_id": id})
}

func (h *Host) handleVote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.current(ctx)
	if err != nil {
		return h.fail(err)
	}

	a := argsOf(req)
	proposalID, ok, err := a.number("proposal_id")
	if err != nil {
		return h.fail(err)
	}
	if !ok {
		return errorResult(errMissing("proposal_id"))
	}

	id, err := h.service.CastVote(ctx, sess, application.CastVoteCommand{
		ProposalID: proposalID,
		Vote:       a.str("vote"),
		Comment:    a.text("comment"),
	})
	if err != nil {
		return h.fail(err)
	}

	return jsonResult(map[string]uint64{"message_id": id})
}
