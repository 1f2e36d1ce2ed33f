package timerange

import (
	"strings"
	"time"

	"metricsdash/internal/models"
)

const customPrefix = "custom_"

var durations = map[string]time.Duration{
	"24h":  24 * time.Hour,
	"48h":  48 * time.Hour,
	"7d":   7 * 24 * time.Hour,
	"30d":  30 * 24 * time.Hour,
	"90d":  90 * 24 * time.Hour,
	"365d": 365 * 24 * time.Hour,
}

// Resolve maps a filter token to a concrete [start, end) interval.
// Calendar tokens are computed in now's location.
func Resolve(token string, now time.Time) (models.Interval, error) {
	if d, ok := durations[token]; ok {
		return models.Interval{Start: now.Add(-d), End: now}, nil
	}

	today := midnight(now)
	switch token {
	case "today":
		return models.Interval{Start: today, End: now}, nil
	case "yesterday":
		return models.Interval{Start: today.AddDate(0, 0, -1), End: today}, nil
	case "last_week":
		thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
		return models.Interval{Start: thisWeek.AddDate(0, 0, -7), End: thisWeek}, nil
	case "last_month":
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return models.Interval{Start: thisMonth.AddDate(0, -1, 0), End: thisMonth}, nil
	case "last_year":
		thisYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return models.Interval{Start: thisYear.AddDate(-1, 0, 0), End: thisYear}, nil
	}

	if strings.HasPrefix(token, customPrefix) {
		return resolveCustom(token, now.Location())
	}
	return models.Interval{}, &models.InvalidFilterError{Token: token, Reason: "unknown token"}
}

// GranularityFor picks hourly buckets for the short rolling windows and daily ones otherwise.
func GranularityFor(token string) models.Granularity {
	if token == "24h" || token == "48h" {
		return models.GranularityHour
	}
	return models.GranularityDay
}

// Known reports whether token is one of the fixed (non-custom) tokens.
func Known(token string) bool {
	if _, ok := durations[token]; ok {
		return true
	}
	switch token {
	case "today", "yesterday", "last_week", "last_month", "last_year":
		return true
	}
	return false
}

func resolveCustom(token string, loc *time.Location) (models.Interval, error) {
	parts := strings.Split(strings.TrimPrefix(token, customPrefix), "_")
	if len(parts) != 2 {
		return models.Interval{}, &models.InvalidFilterError{Token: token, Reason: "expected custom_<start>_<end>"}
	}

	start, _, err := parseDate(parts[0], loc)
	if err != nil {
		return models.Interval{}, &models.InvalidFilterError{Token: token, Reason: "unparsable start date"}
	}
	end, dateOnly, err := parseDate(parts[1], loc)
	if err != nil {
		return models.Interval{}, &models.InvalidFilterError{Token: token, Reason: "unparsable end date"}
	}
	if start.After(end) {
		return models.Interval{}, &models.InvalidFilterError{Token: token, Reason: "start is after end"}
	}
	// a bare end date includes that whole day
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	return models.Interval{Start: start, End: end}, nil
}

func parseDate(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
