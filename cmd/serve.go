package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/teamboard/internal/adapters/mcphost"
	"github.com/bnema/teamboard/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server on stdio exposing every operation as a tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			host := mcphost.New(ctx, rt.app.service, mcphost.Options{
				SessionID: rt.app.cfg.SessionID,
				Logger:    rt.app.logger,
			})
			rt.app.logger.Info("serving MCP on stdio", "project", rt.app.layout.Root, "session", host.SessionID())

			return host.Serve(ctx, version.Version, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
