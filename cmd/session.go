package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/adapters/repo/jsonfile"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInitCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "init [name]",
		Short: "Create .teamboard/ with a default roster",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			dir := rt.app.cfg.ProjectDir
			if dir == "" {
				dir = rt.app.layout.Root
			}

			layout, err := jsonfile.InitProject(dir, name)
			if err != nil {
				return err
			}

			outf(cmd, "Initialized teamboard project in %s", layout.StateDir())
			return nil
		},
	}
}

func newJoinCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "join <role>",
		Short: "Bind this agent to a role slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := rt.app
			sessionID := app.cfg.SessionID
			generated := sessionID == ""
			if generated {
				sessionID = uuid.NewString()
			}

			result, err := app.service.Join(cmd.Context(), domain.RoleSlug(args[0]), sessionID)
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, result)
			}

			outf(cmd, "Joined as %s (%s)", result.Session.Key(), result.Title)
			if generated {
				outf(cmd, "export TEAMBOARD_SESSION_ID=%s", sessionID)
			}
			if briefing := strings.TrimSpace(result.Briefing); briefing != "" {
				outf(cmd, "\n%s\n", briefing)
			}
			writeMessages(cmd, result.RecentMessages)
			return nil
		},
	}
}

func newLeaveCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Release this agent's role slot and claim",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			if err := rt.app.service.Leave(cmd.Context(), sess); err != nil {
				return err
			}

			outf(cmd, "Left %s", sess.Key())
			return nil
		},
	}
}

func newHeartbeatCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Refresh this agent's liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			if err := rt.app.service.Heartbeat(cmd.Context(), sess); err != nil {
				return err
			}

			outf(cmd, "%s alive", sess.Key())
			return nil
		},
	}
}

func writeMessages(cmd *cobra.Command, messages []domain.Message) {
	if len(messages) == 0 {
		outf(cmd, "No new messages.")
		return
	}

	for _, message := range messages {
		outf(cmd, "%s", formatMessage(message))
	}
}

func formatMessage(message domain.Message) string {
	header := fmt.Sprintf("#%d %s %s -> %s", message.ID, message.Timestamp, message.From, message.To)
	if message.Type != "" && message.Type != domain.MessageTypeDefault {
		header += " [" + message.Type + "]"
	}
	if message.Subject != "" {
		header += ": " + sanitizeForTerminal(message.Subject)
	}
	if strings.TrimSpace(message.Body) == "" {
		return header
	}

	return header + "\n    " + strings.ReplaceAll(sanitizeForTerminal(message.Body), "\n", "\n    ")
}
