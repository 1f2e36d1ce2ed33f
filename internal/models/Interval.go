package models

import "time"

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

const (
	hourKeyLayout = "2006-01-02T15:00:00Z"
	dayKeyLayout  = "2006-01-02"
)

// Truncate returns the start of the UTC hour or UTC day containing t.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	if g == GranularityHour {
		return t.Truncate(time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key is the bucket label of t: YYYY-MM-DDTHH:00:00Z for hours, YYYY-MM-DD for days.
func (g Granularity) Key(t time.Time) string {
	if g == GranularityHour {
		return g.Truncate(t).Format(hourKeyLayout)
	}
	return g.Truncate(t).Format(dayKeyLayout)
}

func (g Granularity) Valid() bool {
	return g == GranularityHour || g == GranularityDay
}
