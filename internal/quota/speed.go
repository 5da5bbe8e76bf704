package quota

import (
	"fmt"
	"math"
	"strings"
)

// SpeedPoints is how many trailing samples a speed summary looks at.
const SpeedPoints = 5

var sparkLevels = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// SpeedSummary condenses a decode-speed series for one plan tier.
type SpeedSummary struct {
	Plan      Plan
	Current   float64
	Trend     string
	Sparkline string
}

// SummarizeSpeed picks the series for plan (Lite uses lite, every other tier
// uses proMax) and summarizes its last SpeedPoints samples.
func SummarizeSpeed(plan Plan, lite, proMax []float64) SpeedSummary {
	series := proMax
	if plan == PlanLite {
		series = lite
	}
	recent := Recent(series, SpeedPoints)

	s := SpeedSummary{
		Plan:      plan,
		Trend:     Trend(recent),
		Sparkline: Sparkline(recent),
	}
	if len(recent) > 0 {
		s.Current = recent[len(recent)-1]
	}
	return s
}

// Recent returns the last n samples, oldest first.
func Recent(series []float64, n int) []float64 {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

// Sparkline maps each sample onto eight bar heights between the series
// minimum and maximum. A flat series renders as mid-height bars.
func Sparkline(speeds []float64) string {
	if len(speeds) == 0 {
		return "N/A"
	}

	lo, hi := math.Inf(1), 0.0
	for _, v := range speeds {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range speeds {
		if hi == lo {
			b.WriteString("▄")
			continue
		}
		level := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkLevels)-1)))
		level = max(0, min(level, len(sparkLevels)-1))
		b.WriteString(sparkLevels[level])
	}
	return b.String()
}

// Trend compares the last sample with the first: more than 5% up is ↗, more
// than 5% down is ↘, anything else →.
func Trend(speeds []float64) string {
	if len(speeds) < 2 {
		return "→"
	}
	first, last := speeds[0], speeds[len(speeds)-1]
	switch {
	case last > first*1.05:
		return "↗"
	case last < first*0.95:
		return "↘"
	default:
		return "→"
	}
}

// FormatSpeed renders tokens per second, e.g. "85" or "1.2k".
func FormatSpeed(speed float64) string {
	if speed >= 1000 {
		return fmt.Sprintf("%.1fk", speed/1000)
	}
	return fmt.Sprintf("%.0f", speed)
}
