package core

import (
	"strings"
	"time"
)

// DateLayout is the layout of ISO days (enrollment, submission and attendance dates).
const DateLayout = "2006-01-02"

// NowFunc is mockable
var NowFunc = time.Now

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Today returns the current ISO day.
func Today() string {
	return NowFunc().Format(DateLayout)
}

// ParseDay parses an ISO day.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DateLayout, day)
}
