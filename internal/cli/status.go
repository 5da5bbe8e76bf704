package cli

import (
	"fmt"
	"time"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/spf13/cobra"
)

func init() {
	statusCmd.Flags().Bool("speed", false, "Append the decode speed of the last 5 hours")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-line quota summary",
	Long:  `Fetches the quota limit once and prints a single line suitable for a shell prompt or status bar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, target, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context(), cfg.Settings.Timeout)
		defer cancel()

		client := monitor.NewClient(target.AuthToken, logger)
		resp, err := client.GetQuotaLimit(ctx, target.Endpoints.QuotaLimit)
		if err != nil {
			return &requestError{err: fmt.Errorf("[Quota limit] %w", err)}
		}

		now := time.Now()
		line := StatusLine(target.Platform, resp.Quota(), now)

		if speed, _ := cmd.Flags().GetBool("speed"); speed {
			s, err := fetchSpeed(ctx, client, target, resp.Quota(), now)
			if err != nil {
				return &requestError{err: err}
			}
			line += " | " + s
		}

		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}
