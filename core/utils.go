package core

import (
	"strings"
	"time"
)

// DateLayout is the layout of calendar dates (attendance days, assessment dates).
const DateLayout = "2006-01-02"

var NowFunc = time.Now // mockable

// Now returns the current UTC time truncated to what every supported database can store.
func Now() time.Time {
	return NowFunc().UTC().Truncate(time.Microsecond)
}

// Today returns the current UTC calendar date formatted with DateLayout.
func Today() string {
	return Now().Format(DateLayout)
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
