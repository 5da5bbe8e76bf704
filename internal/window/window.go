// Package window computes the reporting interval used to filter usage queries.
package window

import (
	"net/url"
	"strings"
	"time"
)

// Layout is the timestamp format the monitor API expects.
const Layout = "2006-01-02 15:04:05"

// Window is the interval from yesterday at the current hour (HH:00:00) to
// today at the end of the current hour (HH:59:59.999).
type Window struct {
	Start time.Time
	End   time.Time
}

// New builds the window around now, in now's location.
func New(now time.Time) Window {
	y, m, d := now.Date()
	h := now.Hour()
	loc := now.Location()

	return Window{
		Start: time.Date(y, m, d-1, h, 0, 0, 0, loc),
		End:   time.Date(y, m, d, h, 59, 59, 999*int(time.Millisecond), loc),
	}
}

// Last returns the window covering the hours before now.
func Last(now time.Time, hours int) Window {
	return Window{
		Start: now.Add(-time.Duration(hours) * time.Hour),
		End:   now,
	}
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Query renders the window as "?startTime=...&endTime=...".
func (w Window) Query() string {
	return "?startTime=" + escape(Format(w.Start)) + "&endTime=" + escape(Format(w.End))
}

// escape matches encodeURIComponent for the characters a timestamp can hold.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
