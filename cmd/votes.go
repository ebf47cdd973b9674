package cmd

import (
	"fmt"
	"strconv"

	"github.com/bnema/teamboard/internal/application"
	"github.com/bnema/teamboard/internal/domain"
	"github.com/spf13/cobra"
)

func newVotesCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "votes",
		Short: "Tally workflow-change proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tallies, err := rt.app.service.Votes(cmd.Context())
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]any{"proposals": tallies})
			}

			if len(tallies) == 0 {
				outf(cmd, "No proposals.")
				return nil
			}
			for _, tally := range tallies {
				outf(cmd, "#%d %s by %s: %s (yes %d, no %d, need %d)",
					tally.ProposalID,
					sanitizeForTerminal(tally.Subject),
					tally.Proposer,
					tally.Outcome,
					tally.Yes,
					tally.No,
					tally.Required,
				)
			}
			return nil
		},
	}
}

func newProposeCmd(rt *cliRuntime) *cobra.Command {
	var (
		to   string
		body string
		vote string
	)

	cmd := &cobra.Command{
		Use:   "propose <subject>",
		Short: "Open a workflow-change proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			id, err := rt.app.service.Propose(cmd.Context(), sess, application.ProposeCommand{
				To:      to,
				Subject: args[0],
				Body:    body,
				Vote:    vote,
			})
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]uint64{"message_id": id})
			}

			outf(cmd, "Opened proposal #%d", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", `recipient (default "all")`)
	cmd.Flags().StringVarP(&body, "body", "b", "", "rationale")
	cmd.Flags().StringVar(&vote, "vote", "", `cast your own ballot, "yes" or "no"`)

	return cmd
}

func newVoteCmd(rt *cliRuntime) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "vote <proposal-id> <yes|no>",
		Short: "Vote on an open proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: proposal id %q is not a number", domain.ErrInvalidInput, args[0])
			}

			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			id, err := rt.app.service.CastVote(cmd.Context(), sess, application.CastVoteCommand{
				ProposalID: proposalID,
				Vote:       args[1],
				Comment:    comment,
			})
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]uint64{"message_id": id})
			}

			outf(cmd, "Voted %s on #%d (message #%d)", args[1], proposalID, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "optional comment")

	return cmd
}
