package timerange

import (
	"errors"
	"testing"
	"time"

	"metricsdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
}

func TestResolve_DurationTokens(t *testing.T) {
	now := date(2024, 3, 15, 13, 45)
	tests := map[string]time.Duration{
		"24h":  24 * time.Hour,
		"48h":  48 * time.Hour,
		"7d":   7 * 24 * time.Hour,
		"30d":  30 * 24 * time.Hour,
		"90d":  90 * 24 * time.Hour,
		"365d": 365 * 24 * time.Hour,
	}
	for token, d := range tests {
		t.Run(token, func(t *testing.T) {
			got, err := Resolve(token, now)
			require.NoError(t, err)
			assert.Equal(t, now, got.End)
			assert.Equal(t, now.Add(-d), got.Start)
		})
	}
}

func TestResolve_24hExample(t *testing.T) {
	got, err := Resolve("24h", date(2024, 1, 2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1, 0, 0), got.Start)
	assert.Equal(t, date(2024, 1, 2, 0, 0), got.End)
}

func TestResolve_Today(t *testing.T) {
	now := date(2024, 3, 15, 13, 45)
	got, err := Resolve("today", now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 15, 0, 0), got.Start)
	assert.Equal(t, now, got.End)
}

func TestResolve_YesterdayIsPreviousCalendarDay(t *testing.T) {
	for _, now := range []time.Time{date(2024, 3, 15, 0, 5), date(2024, 3, 15, 23, 55)} {
		got, err := Resolve("yesterday", now)
		require.NoError(t, err)
		assert.Equal(t, date(2024, 3, 14, 0, 0), got.Start)
		assert.Equal(t, date(2024, 3, 15, 0, 0), got.End)
	}
}

func TestResolve_LocalMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, ny)

	got, err := Resolve("today", now)
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, ny)))
}

func TestResolve_LastWeekStartsSunday(t *testing.T) {
	// Friday 2024-03-15; this week began Sunday 2024-03-10.
	got, err := Resolve("last_week", date(2024, 3, 15, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 3, 0, 0), got.Start)
	assert.Equal(t, date(2024, 3, 10, 0, 0), got.End)
	assert.Equal(t, time.Sunday, got.Start.Weekday())

	// On a Sunday the previous week ends that same midnight.
	got, err = Resolve("last_week", date(2024, 3, 10, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 3, 0, 0), got.Start)
	assert.Equal(t, date(2024, 3, 10, 0, 0), got.End)
}

func TestResolve_LastMonthAndYear(t *testing.T) {
	got, err := Resolve("last_month", date(2024, 1, 20, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2023, 12, 1, 0, 0), got.Start)
	assert.Equal(t, date(2024, 1, 1, 0, 0), got.End)

	got, err = Resolve("last_month", date(2024, 3, 31, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 1, 0, 0), got.Start)
	assert.Equal(t, date(2024, 3, 1, 0, 0), got.End)

	got, err = Resolve("last_year", date(2024, 6, 1, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, date(2023, 1, 1, 0, 0), got.Start)
	assert.Equal(t, date(2024, 1, 1, 0, 0), got.End)
}

func TestResolve_Custom(t *testing.T) {
	now := date(2024, 3, 15, 0, 0)

	got, err := Resolve("custom_2024-01-01_2024-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1, 0, 0), got.Start)
	assert.Equal(t, date(2024, 2, 1, 0, 0), got.End)

	got, err = Resolve("custom_2024-01-01T06:00:00Z_2024-01-01T18:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1, 6, 0), got.Start)
	assert.Equal(t, date(2024, 1, 1, 18, 0), got.End)

	got, err = Resolve("custom_2024-01-05_2024-01-05", now)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, got.Duration())
}

func TestResolve_Invalid(t *testing.T) {
	now := date(2024, 3, 15, 0, 0)
	for _, token := range []string{
		"bogus",
		"",
		"7D",
		"custom_notadate_alsobad",
		"custom_2024-01-01",
		"custom_2024-01-01_2024-01-02_2024-01-03",
		"custom_2024-02-01_2024-01-01",
		"custom_2024-01-01_",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := Resolve(token, now)
			var invalid *models.InvalidFilterError
			require.True(t, errors.As(err, &invalid), "expected InvalidFilterError, got %v", err)
			assert.Equal(t, token, invalid.Token)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	now := date(2024, 3, 15, 13, 45)
	a, errA := Resolve("last_week", now)
	b, errB := Resolve("last_week", now)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestGranularityFor(t *testing.T) {
	assert.Equal(t, models.GranularityHour, GranularityFor("24h"))
	assert.Equal(t, models.GranularityHour, GranularityFor("48h"))
	assert.Equal(t, models.GranularityDay, GranularityFor("7d"))
	assert.Equal(t, models.GranularityDay, GranularityFor("today"))
	assert.Equal(t, models.GranularityDay, GranularityFor("custom_2024-01-01_2024-01-02"))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("30d"))
	assert.True(t, Known("last_year"))
	assert.False(t, Known("custom_2024-01-01_2024-01-02"))
	assert.False(t, Known("bogus"))
}
