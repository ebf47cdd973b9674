package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/teamboard/internal/application"
	"github.com/spf13/cobra"
)

func newSendCmd(rt *cliRuntime) *cobra.Command {
	var (
		subject     string
		messageType string
		metadata    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "send <to> [body...]",
		Short: `Post a message to "role:instance", "role", "all" or "human"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			var meta map[string]any
			if len(metadata) > 0 {
				meta = make(map[string]any, len(metadata))
				for key, value := range metadata {
					meta[key] = value
				}
			}

			id, err := rt.app.service.Send(cmd.Context(), sess, application.SendCommand{
				To:       args[0],
				Type:     messageType,
				Subject:  subject,
				Body:     strings.Join(args[1:], " "),
				Metadata: meta,
			})
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, map[string]uint64{"message_id": id})
			}

			outf(cmd, "Sent message #%d", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject line")
	cmd.Flags().StringVarP(&messageType, "type", "t", "", `message type (default "message")`)
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "metadata key=value pairs")

	return cmd
}

func newCheckCmd(rt *cliRuntime) *cobra.Command {
	var lastSeen int64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show messages newer than the last-seen marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			marker := uint64(0)
			if cmd.Flags().Changed("last-seen") {
				if lastSeen < 0 {
					return fmt.Errorf("--last-seen must not be negative")
				}
				marker = uint64(lastSeen)
			} else if marker, err = rt.app.service.LastSeen(cmd.Context(), sess); err != nil {
				return err
			}

			result, err := rt.app.service.Check(cmd.Context(), sess, marker)
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, result)
			}

			writeMessages(cmd, result.Messages)
			outf(cmd, "latest: #%d", result.LatestID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&lastSeen, "last-seen", 0, "highest message id already processed (default: stored marker)")

	return cmd
}

func newReadCmd(rt *cliRuntime) *cobra.Command {
	var (
		after uint64
		limit int
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "List visible messages without moving the last-seen marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			messages, err := rt.app.service.Read(cmd.Context(), sess, after, limit)
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, messages)
			}

			writeMessages(cmd, messages)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&after, "after", 0, "only messages with a higher id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "keep only the newest N messages")

	return cmd
}
