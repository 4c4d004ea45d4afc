package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relTimePattern = regexp.MustCompile(`^(\d+)\s*(s|sec|second|seconds|m|min|minute|minutes|h|hr|hour|hours|d|day|days|w|week|weeks)$`)

// parseAsOf accepts an ISO 8601 timestamp or a relative expression like
// "10m", "2 hours", "3 days" and returns milliseconds since epoch. A
// relative expression is resolved against now.
func parseAsOf(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}

	m := relTimePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("could not parse time %q; use formats like \"10m\", \"2 hours\", \"3 days\" or ISO 8601 like \"2025-01-31\"", s)
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse time amount: %w", err)
	}

	var unit time.Duration
	switch m[2] {
	case "s", "sec", "second", "seconds":
		unit = time.Second
	case "m", "min", "minute", "minutes":
		unit = time.Minute
	case "h", "hr", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "week", "weeks":
		unit = 7 * 24 * time.Hour
	}

	target := time.Now().Add(-time.Duration(amount) * unit)
	return target.UnixMilli(), nil
}
