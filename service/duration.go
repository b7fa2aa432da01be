package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinQuestionDuration = time.Hour
	MaxQuestionDuration = 7 * 24 * time.Hour
)

var durationUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// ParseDuration parses human durations such as "30m", "1h", "2 days" or "1.5h".
// Compound Go forms like "1h30m" are accepted too. A bare number is milliseconds.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, validationError("duration is required")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, "ms"
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, validationError("invalid duration %q, use formats like 1h, 2d or 30m", input)
	}
	multiplier, ok := durationUnits[unit]
	if !ok {
		return 0, validationError("unknown duration unit %q in %q", unit, input)
	}

	return time.Duration(value * float64(multiplier)), nil
}

// ValidateDuration enforces the [1h, 7d] window for question deadlines
func ValidateDuration(d time.Duration) error {
	if d < MinQuestionDuration || d > MaxQuestionDuration {
		return validationError("duration must be between 1 hour and 7 days, got %s", FormatDuration(d))
	}
	return nil
}

// FormatDuration renders a duration in the largest whole units, e.g. "2d 3h"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Second).String()
	}

	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
