package cmd

import (
	"fmt"

	statusadapter "github.com/bnema/teamboard/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(rt *cliRuntime) *cobra.Command {
	var withClaims bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show roles, live members and board counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := rt.app

			team, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, team)
			}

			opts := statusadapter.RenderOptions{Now: app.now()}
			if project, err := app.service.Project(cmd.Context()); err == nil {
				opts.HeartbeatTimeout = project.HeartbeatTimeout()
			}
			if withClaims {
				if opts.Claims, err = app.service.Claims(cmd.Context()); err != nil {
					return err
				}
			}

			rendered, err := app.statusRenderer(team, opts)
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&withClaims, "claims", true, "include file claims")

	return cmd
}
