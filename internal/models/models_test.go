package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_HalfOpen(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	i := Interval{Start: start, End: start.Add(24 * time.Hour)}

	assert.True(t, i.Contains(start))
	assert.True(t, i.Contains(start.Add(23*time.Hour)))
	assert.False(t, i.Contains(i.End))
	assert.Equal(t, 24*time.Hour, i.Duration())
	assert.False(t, i.IsEmpty())
	assert.True(t, Interval{Start: start, End: start}.IsEmpty())
}

func TestGranularity_Key(t *testing.T) {
	ts := time.Date(2024, 1, 1, 5, 50, 12, 0, time.UTC)
	assert.Equal(t, "2024-01-01T05:00:00Z", GranularityHour.Key(ts))
	assert.Equal(t, "2024-01-01", GranularityDay.Key(ts))
}

func TestGranularity_KeyUsesUTC(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 2, 0, 30, 0, 0, berlin)

	assert.Equal(t, "2024-01-01", GranularityDay.Key(ts))
	assert.Equal(t, "2024-01-01T23:00:00Z", GranularityHour.Key(ts))
}

func TestMonetaryAmount_ToUSD(t *testing.T) {
	m := MonetaryAmount{Amount: "2000000000000000000", Unit: "WILD", Precision: 18}

	usd, err := m.ToUSD(0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, usd, 1e-12)
}

func TestMonetaryAmount_EmptyAndInvalid(t *testing.T) {
	usd, err := MonetaryAmount{Unit: "WILD", Precision: 18}.ToUSD(1)
	require.NoError(t, err)
	assert.Zero(t, usd)

	_, err = MonetaryAmount{Amount: "12abc", Unit: "WILD", Precision: 18}.ToUSD(1)
	assert.Error(t, err)
}

func TestNewSeries_ValueAndFields(t *testing.T) {
	buckets := []Bucket{
		{
			Key:   "2024-01-01",
			Sums:  map[string]float64{"dailyActiveUsers": 7, "totalMessagesSent": 40},
			Extra: map[string]any{"id": "r2", "totalMessagesSent": "stale"},
		},
		{Key: "2024-01-02", Sums: map[string]float64{"dailyActiveUsers": 3}},
	}

	points := NewSeries(buckets, []string{"dailyActiveUsers", "totalMessagesSent"})

	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, float64(7), points[0].Value)
	assert.Equal(t, float64(40), points[0].Fields["totalMessagesSent"])
	assert.Equal(t, "r2", points[0].Fields["id"])
	assert.NotContains(t, points[0].Fields, "dailyActiveUsers")
	assert.Nil(t, points[1].Fields)
}

func TestNewSeries_ReservedFieldNames(t *testing.T) {
	buckets := []Bucket{{
		Key:   "2024-01-01",
		Sums:  map[string]float64{"commits": 5, "value": 9},
		Extra: map[string]any{"date": "2024-01-01 00:00:00.000 UTC"},
	}}

	points := NewSeries(buckets, []string{"commits", "value"})
	require.Len(t, points, 1)
	assert.Equal(t, map[string]any{"field_value": float64(9), "field_date": "2024-01-01 00:00:00.000 UTC"}, points[0].Fields)

	data, err := json.Marshal(points[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-01","value":5,"field_value":9,"field_date":"2024-01-01 00:00:00.000 UTC"}`, string(data))

	valueFirst := NewSeries(buckets, []string{"value"})
	assert.Equal(t, float64(9), valueFirst[0].Value)
	assert.NotContains(t, valueFirst[0].Fields, "field_value")
}

func TestSeriesPoint_FlatJSON(t *testing.T) {
	p := SeriesPoint{Date: "2024-01-01", Value: 7, Fields: map[string]any{"commits": float64(3)}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-01","value":7,"commits":3}`, string(data))

	var back SeriesPoint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestSeriesPoint_UnmarshalRequiresDate(t *testing.T) {
	var p SeriesPoint
	assert.Error(t, json.Unmarshal([]byte(`{"value":1}`), &p))
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t, `invalid filter "bogus": unknown token`, (&InvalidFilterError{Token: "bogus", Reason: "unknown token"}).Error())
	assert.Equal(t, `unknown metric source "x"`, (&UnknownSourceError{Source: "x"}).Error())
}
