package cmd

import (
	"context"
	"time"

	"github.com/bnema/teamboard/internal/application"
	"github.com/spf13/cobra"
)

func newWaitCmd(rt *cliRuntime) *cobra.Command {
	var (
		timeout time.Duration
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until new messages arrive or the timeout elapses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := rt.app.session(cmd.Context())
			if err != nil {
				return err
			}

			if timeout <= 0 {
				timeout = rt.app.cfg.WaitTimeout
			}

			var result application.WaitResult
			waitFn := func(ctx context.Context) error {
				var waitErr error
				result, waitErr = rt.app.service.Wait(ctx, sess, timeout)
				return waitErr
			}

			if rt.asJSON || quiet {
				err = waitFn(cmd.Context())
			} else {
				err = runWaitSpinner(cmd.Context(), cmd.ErrOrStderr(), "Waiting for messages...", timeout, waitFn)
			}
			if err != nil {
				return err
			}

			if rt.asJSON {
				return writeJSON(cmd, result)
			}

			if result.Status == application.WaitTimedOut {
				outf(cmd, "No messages after %.0fs.", result.WaitedSecs)
				return nil
			}
			writeMessages(cmd, result.Messages)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum time to wait (default from config, 5m)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a spinner")

	return cmd
}
