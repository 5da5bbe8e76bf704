package quota

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"
)

// ReadableLayout mirrors the zh-CN locale rendering of a date and time.
const ReadableLayout = "2006/1/2 15:04:05"

var shanghai = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}()

// ReadableTime renders an epoch-millisecond timestamp in Shanghai time.
func ReadableTime(ms int64) string {
	return time.UnixMilli(ms).In(shanghai).Format(ReadableLayout)
}

// ResetTime interprets a decoded nextResetTime value. Zero, empty and
// unparseable values report false.
func ResetTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(x, 10, 64); err == nil {
			return resetFromMillis(ms)
		}
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return resetFromMillis(ms)
		}
	}
	f, ok := toFloat(v)
	if !ok {
		return time.Time{}, false
	}
	return resetFromMillis(int64(f))
}

func resetFromMillis(ms int64) (time.Time, bool) {
	if ms == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// FormatResetIn renders the time left until resetAt, e.g. "2d 5h", "3h 40m",
// "25m" or "expired".
func FormatResetIn(resetAt, now time.Time) string {
	diff := resetAt.Sub(now)
	if diff <= 0 {
		return "expired"
	}

	secs := int64(diff / time.Second)
	mins := secs / 60
	hours := mins / 60
	days := hours / 24

	switch {
	case days > 0:
		if h := hours % 24; h > 0 {
			return fmt.Sprintf("%dd %dh", days, h)
		}
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		if m := mins % 60; m > 0 {
			return fmt.Sprintf("%dh %dm", hours, m)
		}
		return fmt.Sprintf("%dh", hours)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

func readableReset(v any) (string, bool) {
	t, ok := ResetTime(v)
	if !ok {
		return "", false
	}
	return t.In(shanghai).Format(ReadableLayout), true
}
