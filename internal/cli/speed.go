package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/kiritoko1029/glmcode/internal/quota"
	"github.com/kiritoko1029/glmcode/internal/window"
	"github.com/rs/zerolog"
)

// speedHours is the look-back of the decode speed shown by status --speed.
const speedHours = 5

var sparkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

// SpeedLine renders "<plan> <trend><speed>t/s <sparkline>".
func SpeedLine(s quota.SpeedSummary) string {
	return fmt.Sprintf("%s %s%st/s %s", s.Plan, s.Trend, quota.FormatSpeed(s.Current), sparkStyle.Render(s.Sparkline))
}

// planOf infers the tier from the token limit; without one the tier is unknown.
func planOf(q *monitor.QuotaLimit) quota.Plan {
	if q == nil {
		return quota.PlanUnknown
	}
	if tokens := q.Find("TOKENS"); tokens != nil {
		return quota.IdentifyPlan(tokens.Usage)
	}
	return quota.PlanUnknown
}

func summarizePerformance(q *monitor.QuotaLimit, perf *monitor.ModelPerformance) quota.SpeedSummary {
	return quota.SummarizeSpeed(planOf(q), perf.LiteDecodeSpeed, perf.ProMaxDecodeSpeed)
}

// fetchPlan returns the quota the tier is read from, or nil when it is
// unavailable, which selects the Pro/Max series.
func fetchPlan(ctx context.Context, client *monitor.Client, target *platform.Target, logger zerolog.Logger) *monitor.QuotaLimit {
	resp, err := client.GetQuotaLimit(ctx, target.Endpoints.QuotaLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("quota limit unavailable; assuming Pro/Max decode speed")
		return nil
	}
	return resp.Quota()
}

func fetchSpeed(ctx context.Context, client *monitor.Client, target *platform.Target, q *monitor.QuotaLimit, now time.Time) (string, error) {
	perf, err := client.GetModelPerformance(ctx, target.Endpoints.ModelPerformance, window.Last(now, speedHours))
	if err != nil {
		return "", fmt.Errorf("[Model performance] %w", err)
	}
	return SpeedLine(summarizePerformance(q, perf)), nil
}
