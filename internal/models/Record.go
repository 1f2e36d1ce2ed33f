package models

import "time"

// RawRecord is one upstream data point: named numeric fields, a timestamp
// (epoch seconds/millis or ISO string) and/or a calendar date, optional
// passthrough fields such as an id, and MonetaryAmount values.
type RawRecord map[string]any

const (
	FieldTimestamp = "timestamp"
	FieldDate      = "date"
)

// Bucket holds the per-field sums of all records whose timestamp truncates to Key.
type Bucket struct {
	Key   string
	Start time.Time
	Sums  map[string]float64
	Extra map[string]any
}
