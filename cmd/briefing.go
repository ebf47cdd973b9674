package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/spf13/cobra"
)

func newBriefingCmd(rt *cliRuntime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Show or update role briefings",
	}

	cmd.AddCommand(
		newBriefingShowCmd(rt),
		newBriefingSetCmd(rt),
	)

	return cmd
}

func newBriefingShowCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "show [role]",
		Short: "Print a role briefing (default: this agent's role)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role domain.RoleSlug
			if len(args) == 1 {
				role = domain.RoleSlug(args[0])
			} else {
				sess, err := rt.app.session(cmd.Context())
				if err != nil {
					return err
				}
				role = sess.Role
			}

			briefing, err := rt.app.service.Briefing(cmd.Context(), role)
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]string{"role": string(role), "briefing": briefing})
			}

			if strings.TrimSpace(briefing) == "" {
				outf(cmd, "No briefing for %s.", role)
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), briefing)
			return err
		},
	}
}

func newBriefingSetCmd(rt *cliRuntime) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set <role> [content...]",
		Short: "Replace a role briefing (requires assign_tasks)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			content := strings.Join(args[1:], " ")
			switch {
			case file == "-":
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read briefing from stdin: %w", err)
				}
				content = string(data)
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read briefing file: %w", err)
				}
				content = string(data)
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("%w: briefing content is empty", domain.ErrInvalidInput)
			}

			err = rt.app.service.UpdateBriefing(cmd.Context(), sess, application.UpdateBriefingCommand{
				Role:    domain.RoleSlug(args[0]),
				Content: content,
			})
			if err != nil {
				return err
			}

			outf(cmd, "Updated briefing for %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `read content from a file ("-" for stdin)`)

	return cmd
}
