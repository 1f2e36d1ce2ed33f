package aggregation

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
)

// epochSecondsCeiling separates epoch seconds from epoch millis: 1e11 seconds
// is the year 5138, while 1e11 millis is March 1973.
const epochSecondsCeiling = 1e11

// epochMillisCeiling is 9999-12-31T00:00:00Z; anything later is garbage.
const epochMillisCeiling = 253402214400000

type BucketAggregatorInterface interface {
	Aggregate(source string, records []models.RawRecord, g models.Granularity, fields []string) []models.Bucket
}

type BucketAggregator struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewBucketAggregator(logger providers.Logger, metrics providers.MetricsProviderInterface) BucketAggregatorInterface {
	return &BucketAggregator{
		logger:  logger,
		metrics: metrics,
	}
}

// Aggregate groups records by truncated UTC timestamp and sums fields per bucket.
// Records without a resolvable timestamp are dropped and logged. The result is
// ordered by bucket key and depends only on the inputs.
func (a *BucketAggregator) Aggregate(source string, records []models.RawRecord, g models.Granularity, fields []string) []models.Bucket {
	tracked := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tracked[f] = struct{}{}
	}

	buckets := make(map[string]*models.Bucket)
	dropped := 0
	for i, rec := range records {
		ts, ok := RecordTime(rec)
		if !ok {
			dropped++
			a.logger.Warnf(providers.TypeAggregate, "%s: dropping record %d without resolvable timestamp (timestamp=%v date=%v)",
				source, i, rec[models.FieldTimestamp], rec[models.FieldDate])
			continue
		}

		key := g.Key(ts)
		b, exists := buckets[key]
		if !exists {
			b = &models.Bucket{Key: key, Start: g.Truncate(ts), Sums: make(map[string]float64, len(fields))}
			for _, f := range fields {
				b.Sums[f] = 0
			}
			buckets[key] = b
		}

		for _, f := range fields {
			b.Sums[f] += numeric(rec[f])
		}

		b.Extra = passthrough(rec, tracked)
	}

	if dropped > 0 {
		a.metrics.AddDroppedRecords(source, dropped)
	}

	out := make([]models.Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// RecordTime resolves a record's instant: the timestamp field first
// (epoch seconds, epoch millis or an ISO string), then the date field.
func RecordTime(rec models.RawRecord) (time.Time, bool) {
	if raw, ok := rec[models.FieldTimestamp]; ok && raw != nil {
		if ts, ok := parseInstant(raw); ok {
			return ts, true
		}
	}
	if raw, ok := rec[models.FieldDate]; ok && raw != nil {
		if ts, ok := parseInstant(raw); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseInstant(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case bool:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if n, err := cast.ToFloat64E(s); err == nil {
			return fromEpoch(n)
		}
		for _, layout := range []string{time.RFC3339Nano, time.DateOnly, "2006-01-02 15:04:05", "2006-01-02 15:04:05.000 UTC"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(n)
	}
}

func fromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return time.Time{}, false
	}
	if n < epochSecondsCeiling {
		n *= 1000
	}
	if n > epochMillisCeiling {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(n)).UTC(), true
}

func numeric(v any) float64 {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

func passthrough(rec models.RawRecord, tracked map[string]struct{}) map[string]any {
	var extra map[string]any
	for k, v := range rec {
		if _, summed := tracked[k]; summed {
			continue
		}
		if k == models.FieldTimestamp || k == models.FieldDate {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}
