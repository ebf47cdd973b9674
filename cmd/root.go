package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/teamboard/internal/adapters/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

// cliRuntime carries the wired app from the root pre-run hook to subcommands.
type cliRuntime struct {
	viper  *viper.Viper
	app    *app
	asJSON bool
}

func newRootCmd() *cobra.Command {
	rt := &cliRuntime{viper: viper.New()}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "tb",
		Short:         "teamboard (tb): coordinate agents sharing one repository",
		Long:          "tb binds agents to roles, carries messages between them through an append-only board, tracks file claims and heartbeats, and serves the same operations as MCP tools.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				rt.viper.SetConfigFile(configFile)
			}

			wired, err := wireApp(rt.viper, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt.app = wired

			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.app != nil {
				rt.app.flush()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/teamboard/config.toml)")
	flags.StringP("project", "C", "", "project directory (default: nearest ancestor with .teamboard/)")
	flags.String("session", "", "session id of this agent (env TEAMBOARD_SESSION_ID)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.BoolVar(&rt.asJSON, "json", false, "print machine-readable JSON")

	_ = rt.viper.BindPFlag(config.KeyProjectDir, flags.Lookup("project"))
	_ = rt.viper.BindPFlag(config.KeySessionID, flags.Lookup("session"))
	_ = rt.viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(rt),
		newJoinCmd(rt),
		newLeaveCmd(rt),
		newHeartbeatCmd(rt),
		newSendCmd(rt),
		newCheckCmd(rt),
		newReadCmd(rt),
		newWaitCmd(rt),
		newStatusCmd(rt),
		newClaimCmd(rt),
		newReleaseCmd(rt),
		newClaimsCmd(rt),
		newBriefingCmd(rt),
		newVotesCmd(rt),
		newProposeCmd(rt),
		newVoteCmd(rt),
		newServeCmd(rt),
		newConfigCmd(rt),
	)

	return rootCmd
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func outf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
