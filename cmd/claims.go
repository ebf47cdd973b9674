package cmd

import (
	"strings"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/spf13/cobra"
)

func newClaimCmd(rt *cliRuntime) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "claim <path>...",
		Short: "Reserve files or directories (a trailing slash covers a directory)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			result, err := rt.app.service.Claim(cmd.Context(), sess, application.ClaimCommand{
				Files:       args,
				Description: description,
			})
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, result)
			}

			outf(cmd, "%s claimed %s", result.Holder, strings.Join(result.Files, ", "))
			writeConflicts(cmd, result.Conflicts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what the work is")

	return cmd
}

func writeConflicts(cmd *cobra.Command, conflicts []domain.Conflict) {
	for _, conflict := range conflicts {
		line := "  overlaps " + conflict.Holder + ": " + strings.Join(conflict.Files, ", ")
		if conflict.Description != "" {
			line += " (" + sanitizeForTerminal(conflict.Description) + ")"
		}
		outf(cmd, "%s", line)
	}
}

func newReleaseCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Drop this agent's file claim",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			if err := rt.app.service.Release(cmd.Context(), sess); err != nil {
				return err
			}

			outf(cmd, "Released claim of %s", sess.Key())
			return nil
		},
	}
}

func newClaimsCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "List live file claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			claims, err := rt.app.service.Claims(cmd.Context())
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]any{"claims": claims})
			}

			if len(claims) == 0 {
				outf(cmd, "No claims.")
				return nil
			}
			for _, claim := range claims {
				line := claim.Holder + ": " + strings.Join(claim.Files, ", ")
				if claim.Description != "" {
					line += " (" + sanitizeForTerminal(claim.Description) + ")"
				}
				outf(cmd, "%s", line)
			}
			return nil
		},
	}
}
