package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const occupancyBarWidth = 10

type RenderOptions struct {
	Now time.Time
	// HeartbeatTimeout scales the freshness colour of member heartbeats.
	HeartbeatTimeout time.Duration
	Claims           []application.ClaimView
}

func renderView(team application.TeamStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(teamTitle(team)),
		s.header.Render(fmt.Sprintf("messages: %d  latest: #%d  claims: %d", team.MessageCount, team.LatestID, team.ClaimCount)),
	}

	if len(team.Roles) == 0 {
		lines = append(lines, s.empty.Render("No roles defined."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, role := range team.Roles {
		lines = append(lines, s.section.Render(renderRole(role, opts, s)))
	}

	if len(opts.Claims) > 0 {
		lines = append(lines, s.section.Render(renderClaims(opts.Claims, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func teamTitle(team application.TeamStatus) string {
	name := strings.TrimSpace(team.Project)
	if name == "" {
		name = "unnamed project"
	}

	flags := make([]string, 0, 3)
	if team.WorkflowType != "" {
		flags = append(flags, team.WorkflowType)
	}
	if team.HumanInLoop {
		flags = append(flags, "human in loop")
	}
	if team.AutoCollab {
		flags = append(flags, "auto collab")
	}
	if len(flags) == 0 {
		return "Team: " + name
	}

	return fmt.Sprintf("Team: %s (%s)", name, strings.Join(flags, ", "))
}

func renderRole(role application.RoleStatus, opts RenderOptions, s styles) string {
	title := role.Title
	if title == "" {
		title = string(role.Slug)
	}

	heading := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.role.Render(fmt.Sprintf("%s (%s)", title, role.Slug)),
		" ",
		renderOccupancyBar(len(role.Members), role.Capacity, occupancyBarWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d", len(role.Members), role.Capacity)),
	)

	parts := []string{heading}
	if len(role.Members) == 0 {
		parts = append(parts, s.empty.Render("  vacant"))
	}
	for _, member := range role.Members {
		parts = append(parts, memberLine(member, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func memberLine(member application.MemberStatus, opts RenderOptions, s styles) string {
	age := heartbeatStyle(member.LastHeartbeat, opts).Render(formatHeartbeat(member.LastHeartbeat, opts.Now))
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		s.memberKey.Render(member.Key),
		" ",
		age,
	)

	if member.Stale {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func renderClaims(claims []application.ClaimView, s styles) string {
	parts := []string{s.title.Render("Claims")}
	for _, claim := range claims {
		line := fmt.Sprintf("  %s %s", s.claimKey.Render(claim.Holder), strings.Join(claim.Files, ", "))
		if claim.Description != "" {
			line += s.empty.Render(" - " + claim.Description)
		}
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderOccupancyBar(used, capacity, width int, s styles) string {
	if width <= 0 || capacity <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(used) / float64(capacity)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatHeartbeat(last, now time.Time) string {
	if last.IsZero() {
		return "never seen"
	}
	if now.IsZero() {
		return "seen " + domain.FormatTimestamp(last)
	}

	age := now.Sub(last)
	switch {
	case age < time.Minute:
		return "seen just now"
	case age < time.Hour:
		minutes := int(age.Minutes())
		return fmt.Sprintf("seen %d %s ago", minutes, plural(minutes, "minute"))
	default:
		hours := int(age.Hours())
		return fmt.Sprintf("seen %d %s ago", hours, plural(hours, "hour"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// heartbeatStyle fades from bright to dim as a heartbeat ages toward the
// stale threshold.
func heartbeatStyle(last time.Time, opts RenderOptions) lipgloss.Style {
	if opts.Now.IsZero() || last.IsZero() || opts.HeartbeatTimeout <= 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	}

	fresh := opts.HeartbeatTimeout.Seconds() - opts.Now.Sub(last).Seconds()

	return lipgloss.NewStyle().Foreground(interpolateColor(fresh, 0, opts.HeartbeatTimeout.Seconds()))
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	colorCode := int(240.0 + 15.0*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
