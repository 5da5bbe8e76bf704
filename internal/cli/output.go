package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/kiritoko1029/glmcode/internal/quota"
)

const barWidth = 10

var (
	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	midStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
)

// PrintSummary writes one table row per limit record.
func PrintSummary(w io.Writer, p platform.Platform, q *monitor.QuotaLimit, now time.Time) error {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		BorderRow(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		}).
		Headers("TYPE", "PLAN", "USED", "LIMIT", "PERCENT", "RESETS")

	if q != nil {
		for _, item := range q.Limits {
			t.Row(
				quota.TypeLabel(item.Type, formatCount(item.Number), item.Unit),
				formatPlan(item),
				quota.FormatNumber(item.CurrentValue),
				quota.FormatNumber(item.Usage),
				fmt.Sprintf("%s %d%%", progressBar(item.Percentage, "#", "-"), roundPercent(item.Percentage)),
				formatReset(item.NextResetTime, now),
			)
		}
	}

	header := fmt.Sprintf("GLM Coding Plan Usage (%s)", platform.DisplayName(p))
	footer := fmt.Sprintf("Updated: %s", now.Format(time.RFC1123))

	_, err := fmt.Fprintf(w, "\n%s\n%s\n%s\n", header, t, footer)
	return err
}

// StatusLine renders a single line for shell prompts.
func StatusLine(p platform.Platform, q *monitor.QuotaLimit, now time.Time) string {
	name := platform.DisplayName(p)
	if q == nil {
		return name + " 暂无数据"
	}

	tokens := q.Find("TOKENS")
	mcp := q.Find("TIME")

	switch {
	case tokens != nil:
		var b strings.Builder
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(colored(tokens.Percentage, progressBar(tokens.Percentage, "▓", "░")))
		b.WriteString(" ")
		b.WriteString(colored(tokens.Percentage, fmt.Sprintf("%d%%", roundPercent(tokens.Percentage))))
		if reset, ok := nextReset(tokens, q); ok {
			b.WriteString(" ⟳ ")
			b.WriteString(quota.FormatResetIn(reset, now))
		}
		if mcp != nil {
			fmt.Fprintf(&b, " | MCP %s", colored(mcp.Percentage, fmt.Sprintf("%d%%", roundPercent(mcp.Percentage))))
		}
		return b.String()
	case mcp != nil:
		return fmt.Sprintf("%s MCP %s %s", name,
			colored(mcp.Percentage, progressBar(mcp.Percentage, "▓", "░")),
			colored(mcp.Percentage, fmt.Sprintf("%d%%", roundPercent(mcp.Percentage))))
	default:
		return name + " 暂无数据"
	}
}

func nextReset(item *monitor.LimitItem, q *monitor.QuotaLimit) (time.Time, bool) {
	if t, ok := item.NextResetTime.Time(); ok {
		return t, true
	}
	return q.NextResetTime.Time()
}

func formatPlan(item monitor.LimitItem) string {
	if item.Type != quota.KindTokens {
		return "-"
	}
	return string(quota.IdentifyPlan(item.Usage))
}

func formatCount(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func formatReset(v monitor.ResetValue, now time.Time) string {
	t, ok := v.Time()
	if !ok {
		return "-"
	}
	return quota.FormatResetIn(t, now)
}

func colored(percent float64, s string) string {
	switch {
	case percent <= 50:
		return lowStyle.Render(s)
	case percent <= 80:
		return midStyle.Render(s)
	default:
		return highStyle.Render(s)
	}
}

func roundPercent(percent float64) int {
	if math.IsNaN(percent) {
		return 0
	}
	return int(math.Round(percent))
}

func progressBar(percent float64, fill, empty string) string {
	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(math.Round(percent / 100 * barWidth))

	return strings.Repeat(fill, filled) + strings.Repeat(empty, barWidth-filled)
}
