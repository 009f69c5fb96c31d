package http

import (
	"strconv"
	"strings"
	"time"

	"posjournal/internal/core"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// todayIn returns the business date of now in loc.
func todayIn(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(core.DateLayout)
}

// dashboardKey identifies a cached dashboard.
func dashboardKey(params ReportParams) string {
	return string(params.Period) + "|" + strconv.Itoa(params.Limit)
}
