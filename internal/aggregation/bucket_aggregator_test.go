package aggregation

import (
	"math"
	"testing"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() (*BucketAggregator, *testutil.MockLogger, *testutil.MockMetrics) {
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	return &BucketAggregator{logger: logger, metrics: metrics}, logger, metrics
}

func TestAggregate_HourlySums(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"timestamp": "2024-01-01T05:10:00Z", "n": 1},
		{"timestamp": "2024-01-01T05:50:00Z", "n": 2},
		{"timestamp": "2024-01-01T06:05:00Z", "n": 4},
	}

	buckets := agg.Aggregate("test", records, models.GranularityHour, []string{"n"})

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-01-01T05:00:00Z", buckets[0].Key)
	assert.Equal(t, float64(3), buckets[0].Sums["n"])
	assert.Equal(t, time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, "2024-01-01T06:00:00Z", buckets[1].Key)
	assert.Equal(t, float64(4), buckets[1].Sums["n"])
}

func TestAggregate_EpochSecondsAndMillisAgree(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"timestamp": 1704067200, "n": 1},           // seconds
		{"timestamp": int64(1704067200000), "n": 1}, // millis
		{"timestamp": "1704070800", "n": 1},         // numeric string, seconds
		{"timestamp": 1704070800000.0, "n": 1},      // float millis
	}

	buckets := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})

	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-01-01", buckets[0].Key)
	assert.Equal(t, float64(4), buckets[0].Sums["n"])
}

func TestAggregate_DateFallback(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"date": "2024-01-02", "n": 5},
		{"timestamp": "garbage", "date": "2024-01-02", "n": 1},
	}

	buckets := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})

	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-01-02", buckets[0].Key)
	assert.Equal(t, float64(6), buckets[0].Sums["n"])
}

func TestAggregate_DropsUnparsableRecords(t *testing.T) {
	agg, logger, metrics := newTestAggregator()
	records := []models.RawRecord{
		{"timestamp": "2024-01-01T00:00:00Z", "n": 1},
		{"n": 100},
		{"timestamp": "not a time", "n": 100},
	}

	buckets := agg.Aggregate("messaging", records, models.GranularityDay, []string{"n"})

	require.Len(t, buckets, 1)
	assert.Equal(t, float64(1), buckets[0].Sums["n"])
	assert.Equal(t, 2, logger.Count("warn", providers.TypeAggregate))
	assert.Equal(t, 2, metrics.DroppedRecords["messaging"])
}

func TestAggregate_MissingAndNonNumericFieldsAreZero(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"date": "2024-01-01", "a": "3.5"},
		{"date": "2024-01-01", "a": "n/a", "b": nil},
	}

	buckets := agg.Aggregate("test", records, models.GranularityDay, []string{"a", "b"})

	require.Len(t, buckets, 1)
	assert.Equal(t, 3.5, buckets[0].Sums["a"])
	assert.Equal(t, float64(0), buckets[0].Sums["b"])
	assert.Contains(t, buckets[0].Sums, "b")
}

func TestAggregate_PassthroughFromLastRecord(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"date": "2024-01-01", "id": "first", "n": 1},
		{"date": "2024-01-01", "id": "last", "n": 1},
	}

	buckets := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})

	require.Len(t, buckets, 1)
	assert.Equal(t, map[string]any{"id": "last"}, buckets[0].Extra)
}

func TestAggregate_SortedByKey(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"date": "2024-01-03", "n": 1},
		{"date": "2024-01-01", "n": 1},
		{"date": "2024-01-02", "n": 1},
	}

	buckets := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})

	require.Len(t, buckets, 3)
	assert.Equal(t, "2024-01-01", buckets[0].Key)
	assert.Equal(t, "2024-01-02", buckets[1].Key)
	assert.Equal(t, "2024-01-03", buckets[2].Key)
}

func TestAggregate_Deterministic(t *testing.T) {
	agg, _, _ := newTestAggregator()
	records := []models.RawRecord{
		{"timestamp": 1704067200, "n": 2, "id": "x"},
		{"timestamp": 1704153600, "n": 3, "id": "y"},
	}

	a := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})
	b := agg.Aggregate("test", records, models.GranularityDay, []string{"n"})
	assert.Equal(t, a, b)
}

func TestAggregate_Empty(t *testing.T) {
	agg, _, metrics := newTestAggregator()

	buckets := agg.Aggregate("test", nil, models.GranularityDay, []string{"n"})

	assert.Empty(t, buckets)
	assert.Zero(t, metrics.DroppedRecords["test"])
}

func TestRecordTime(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, rec := range map[string]models.RawRecord{
		"iso":          {"timestamp": "2024-01-01T00:00:00Z"},
		"iso offset":   {"timestamp": "2024-01-01T01:00:00+01:00"},
		"seconds":      {"timestamp": 1704067200},
		"millis":       {"timestamp": 1704067200000},
		"date":         {"date": "2024-01-01"},
		"time.Time":    {"timestamp": want},
		"nil fallback": {"timestamp": nil, "date": "2024-01-01"},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := RecordTime(rec)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, ok := RecordTime(models.RawRecord{"timestamp": -5})
	assert.False(t, ok)
	_, ok = RecordTime(models.RawRecord{"timestamp": true})
	assert.False(t, ok)

	for name, raw := range map[string]any{
		"nan":          "NaN",
		"inf":          "Inf",
		"negative inf": math.Inf(-1),
		"huge":         1e30,
		"past 9999":    float64(epochMillisCeiling + 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := RecordTime(models.RawRecord{"timestamp": raw})
			assert.False(t, ok)
		})
	}
}

func TestAggregate_DropsNonFiniteTimestamps(t *testing.T) {
	agg, logger, metrics := newTestAggregator()

	buckets := agg.Aggregate("messaging", []models.RawRecord{
		{"timestamp": "NaN", "userSignUps": 1},
		{"timestamp": 1e30, "userSignUps": 1},
		{"timestamp": "2024-01-01T05:10:00Z", "userSignUps": 3},
	}, models.GranularityHour, []string{"userSignUps"})

	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-01-01T05:00:00Z", buckets[0].Key)
	assert.Equal(t, 2, metrics.DroppedRecords["messaging"])
	assert.Equal(t, 2, logger.Count("warn", providers.TypeAggregate))
}
