package cli

import (
	"fmt"
	"time"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/report"
	"github.com/kiritoko1029/glmcode/internal/window"
	"github.com/spf13/cobra"
)

func init() {
	performanceCmd.Flags().IntP("hours", "H", 24, "Number of hours to look back")
	performanceCmd.Flags().BoolP("summary", "s", false, "Print the decode speed trend for your plan after the report")
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Print model decode speed and success rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetInt("hours")
		if hours <= 0 {
			return fmt.Errorf("--hours must be positive, got %d", hours)
		}

		cfg, target, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context(), cfg.Settings.Timeout)
		defer cancel()

		out := cmd.OutOrStdout()
		client := monitor.NewClient(target.AuthToken, logger)
		r := report.New(client, out, window.Last(time.Now(), hours))

		fmt.Fprintf(out, "Platform: %s\n\n", target.Platform)
		res, err := r.Query(ctx, report.Request{
			URL:        target.Endpoints.ModelPerformance,
			Label:      "Model performance",
			WithWindow: true,
		})
		if err != nil {
			return &requestError{err: err}
		}

		if summary, _ := cmd.Flags().GetBool("summary"); !summary {
			return nil
		}
		perf, err := monitor.DecodeModelPerformance(res.Body)
		if err != nil {
			logger.Warn().Err(err).Msg("model performance is not in the expected shape; skipping summary")
			return nil
		}
		q := fetchPlan(ctx, client, target, logger)
		fmt.Fprintf(out, "Decode speed: %s\n", SpeedLine(summarizePerformance(q, perf)))
		return nil
	},
}
