package cli

import (
	"encoding/json"
	"time"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/report"
	"github.com/kiritoko1029/glmcode/internal/window"
	"github.com/spf13/cobra"
)

func init() {
	reportCmd.Flags().BoolP("summary", "s", false, "Print a quota table after the report")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print model usage, tool usage and quota limit",
	Long: `Fetches model usage and tool usage for the window from yesterday at the
current hour to the end of the current hour, then the current quota limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, target, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context(), cfg.Settings.Timeout)
		defer cancel()

		out := cmd.OutOrStdout()
		client := monitor.NewClient(target.AuthToken, logger)
		r := report.New(client, out, window.New(time.Now()))

		results, err := r.Run(ctx, target)
		if err != nil {
			return &requestError{err: err}
		}

		summary, _ := cmd.Flags().GetBool("summary")
		if !summary || len(results) == 0 {
			return nil
		}

		var resp monitor.QuotaLimitResponse
		if err := json.Unmarshal(results[len(results)-1].Body, &resp); err != nil {
			logger.Warn().Err(err).Msg("quota limit is not in the expected shape; skipping summary")
			return nil
		}
		return PrintSummary(out, target.Platform, resp.Quota(), time.Now())
	},
}
