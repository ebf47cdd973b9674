package cmd

import (
	"fmt"

	"github.com/bnema/teamboard/internal/adapters/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(rt *cliRuntime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the per-user client configuration",
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(rt),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}

			if err := config.WriteDefault(path, force); err != nil {
				return err
			}

			outf(cmd, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newConfigShowCmd(rt *cliRuntime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.app.cfg

			if rt.asJSON {
				return writeJSON(cmd, map[string]any{
					"file":               cfg.File,
					"project_dir":        rt.app.layout.Root,
					"session_id":         cfg.SessionID,
					"notify_url":         cfg.NotifyURL,
					"poll_interval":      cfg.PollInterval.String(),
					"heartbeat_interval": cfg.HeartbeatInterval.String(),
					"wait_timeout":       cfg.WaitTimeout.String(),
					"log_level":          cfg.LogLevel,
				})
			}

			data, err := cfg.Encode()
			if err != nil {
				return err
			}

			if cfg.File != "" {
				outf(cmd, "# %s", cfg.File)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
