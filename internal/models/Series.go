package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// SeriesPoint is one chart point. It marshals flat:
// {"date":"2024-01-01","value":7,"totalMessagesSent":12,"id":"0xabc"}.
// "date" and "value" are reserved; NewSeries moves colliding Fields entries
// under their "field_" prefixed names.
type SeriesPoint struct {
	Date   string
	Value  float64
	Fields map[string]any
}

// reservedPointPrefix renames Fields entries that would shadow date or value.
const reservedPointPrefix = "field_"

func pointFieldKey(k string) string {
	if k == "date" || k == "value" {
		return reservedPointPrefix + k
	}
	return k
}

func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+2)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["date"] = p.Date
	out["value"] = p.Value
	return json.Marshal(out)
}

func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, ok := raw["date"].(string)
	if !ok {
		return fmt.Errorf("series point: missing date")
	}
	value, _ := raw["value"].(float64)
	delete(raw, "date")
	delete(raw, "value")

	p.Date = date
	p.Value = value
	p.Fields = nil
	if len(raw) > 0 {
		p.Fields = raw
	}
	return nil
}

// Series is the normalized, chart-ready output of one aggregation pass.
type Series struct {
	Source       string             `json:"source"`
	Filter       string             `json:"filter"`
	Granularity  Granularity        `json:"granularity"`
	Interval     Interval           `json:"interval"`
	Fields       []string           `json:"fields"`
	Points       []SeriesPoint      `json:"points"`
	Totals       map[string]float64 `json:"totals"`
	Partial      bool               `json:"partial"`
	FailedChunks int                `json:"failedChunks"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// Total is the card value for field: the sum over every point.
func (s *Series) Total(field string) float64 {
	return s.Totals[field]
}

// NewSeries builds points from buckets ordered by key. The first entry of
// fields feeds each point's value; all tracked sums and passthrough fields
// land in Fields, with sums taking precedence.
func NewSeries(buckets []Bucket, fields []string) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		extra := make(map[string]any, len(b.Extra)+len(b.Sums))
		for k, v := range b.Extra {
			extra[pointFieldKey(k)] = v
		}
		for k, v := range b.Sums {
			extra[pointFieldKey(k)] = v
		}

		var value float64
		if len(fields) > 0 {
			value = b.Sums[fields[0]]
			delete(extra, pointFieldKey(fields[0]))
		}
		if len(extra) == 0 {
			extra = nil
		}
		points = append(points, SeriesPoint{Date: b.Key, Value: value, Fields: extra})
	}
	return points
}
