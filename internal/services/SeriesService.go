package services

import (
	"context"
	"fmt"
	"time"

	"metricsdash/internal/aggregation"
	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/sources"
	"metricsdash/internal/structures"
	"metricsdash/internal/timerange"
)

const defaultUpstreamTimeout = 30 * time.Second

type SeriesServiceInterface interface {
	GetSeries(ctx context.Context, filter, source string, fields []string) (*models.Series, error)
	GetCard(ctx context.Context, filter, source, field string) (*models.Card, error)
	Sources() []models.SourceInfo
}

// SeriesService builds chart series from upstream sources. It holds no
// per-request state and never caches.
type SeriesService struct {
	registry        sources.RegistryInterface
	prices          sources.PriceSource
	fetcher         aggregation.ChunkedFetcherInterface
	aggregator      aggregation.BucketAggregatorInterface
	logger          providers.Logger
	metrics         providers.MetricsProviderInterface
	location        *time.Location
	defaultFilter   string
	chunkTimeout    time.Duration
	upstreamTimeout time.Duration
	clock           func() time.Time
}

func NewSeriesService(
	conf *structures.Config,
	registry sources.RegistryInterface,
	prices sources.PriceSource,
	fetcher aggregation.ChunkedFetcherInterface,
	aggregator aggregation.BucketAggregatorInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) (*SeriesService, error) {
	loc, err := time.LoadLocation(conf.Aggregation.Timezone)
	if err != nil {
		return nil, fmt.Errorf("aggregation timezone: %w", err)
	}
	upstreamTimeout := conf.Aggregation.UpstreamTimeout
	if upstreamTimeout <= 0 {
		upstreamTimeout = defaultUpstreamTimeout
	}
	return &SeriesService{
		registry:        registry,
		prices:          prices,
		fetcher:         fetcher,
		aggregator:      aggregator,
		logger:          logger,
		metrics:         metrics,
		location:        loc,
		defaultFilter:   conf.Aggregation.DefaultFilter,
		chunkTimeout:    conf.Aggregation.ChunkTimeout,
		upstreamTimeout: upstreamTimeout,
		clock:           time.Now,
	}, nil
}

// Normalize applies the default filter and the source's default fields, and
// validates both. Equal normalized requests describe the same series.
func (s *SeriesService) Normalize(filter, source string, fields []string) (string, []string, error) {
	if filter == "" {
		filter = s.defaultFilter
	}
	if _, err := timerange.Resolve(filter, s.clock().In(s.location)); err != nil {
		return "", nil, err
	}
	src, err := s.registry.Get(source)
	if err != nil {
		return "", nil, err
	}
	return filter, normalizeFields(fields, src.DefaultFields()), nil
}

func (s *SeriesService) GetSeries(ctx context.Context, filter, source string, fields []string) (*models.Series, error) {
	started := time.Now()

	filter, fields, err := s.Normalize(filter, source, fields)
	if err != nil {
		return nil, err
	}
	src, err := s.registry.Get(source)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(s.location)
	interval, err := timerange.Resolve(filter, now)
	if err != nil {
		return nil, err
	}
	granularity := timerange.GranularityFor(filter)

	records, report, err := s.fetch(ctx, src, interval)
	if err != nil {
		return nil, err
	}

	records = s.convertMonetary(ctx, source, records)
	buckets := s.aggregator.Aggregate(source, records, granularity, fields)

	totals := make(map[string]float64, len(fields))
	for _, f := range fields {
		totals[f] = 0
	}
	for _, b := range buckets {
		for _, f := range fields {
			totals[f] += b.Sums[f]
		}
	}

	series := &models.Series{
		Source:       source,
		Filter:       filter,
		Granularity:  granularity,
		Interval:     interval,
		Fields:       fields,
		Points:       models.NewSeries(buckets, fields),
		Totals:       totals,
		Partial:      report.Failed > 0,
		FailedChunks: report.Failed,
		GeneratedAt:  now.UTC(),
	}

	s.metrics.ObserveSeriesBuild(source, time.Since(started))
	s.logger.Debugf(providers.TypeAggregate, "%s/%s: %d records into %d %s buckets (%d/%d chunks failed)",
		source, filter, len(records), len(buckets), granularity, report.Failed, report.Chunks)
	return series, nil
}

func (s *SeriesService) GetCard(ctx context.Context, filter, source, field string) (*models.Card, error) {
	return cardOf(ctx, s, filter, source, field)
}

func (s *SeriesService) Sources() []models.SourceInfo {
	list := s.registry.List()
	out := make([]models.SourceInfo, 0, len(list))
	for _, src := range list {
		out = append(out, models.SourceInfo{
			Name:          src.Name(),
			DefaultFields: src.DefaultFields(),
			Policy:        src.Policy(),
		})
	}
	return out
}

// fetch issues one request for short intervals and chunks long ones. A failed
// single request, or a chunked fetch where every chunk failed, is an
// UpstreamFetchError; individual chunk failures only mark the series partial.
func (s *SeriesService) fetch(ctx context.Context, src sources.MetricSource, interval models.Interval) ([]models.RawRecord, aggregation.FetchReport, error) {
	policy := src.Policy()
	if !policy.Chunked(interval) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
		defer cancel()

		records, err := src.FetchWindow(fetchCtx, interval.Start, interval.End)
		if err != nil {
			s.logger.Errorf(providers.TypeFetch, "%s: fetch failed: %s", src.Name(), err)
			return nil, aggregation.FetchReport{}, &models.UpstreamFetchError{Source: src.Name(), Err: err}
		}
		return records, aggregation.FetchReport{Chunks: 1}, nil
	}

	records, report := s.fetcher.FetchChunked(ctx, interval, aggregation.ChunkOptions{
		Source:      src.Name(),
		ChunkSize:   policy.ChunkSize,
		Concurrency: policy.Concurrency,
		BatchDelay:  policy.BatchDelay,
		Timeout:     s.chunkTimeout,
	}, src.FetchWindow)
	if report.AllFailed() {
		s.logger.Errorf(providers.TypeFetch, "%s: all %d chunks failed", src.Name(), report.Chunks)
		return nil, report, &models.UpstreamFetchError{Source: src.Name(), Err: report.Err}
	}
	return records, report, nil
}

// convertMonetary replaces every MonetaryAmount value with its USD value
// before bucketing. Each unit is priced once per call.
func (s *SeriesService) convertMonetary(ctx context.Context, source string, records []models.RawRecord) []models.RawRecord {
	prices := make(map[string]float64)
	price := func(unit string) float64 {
		p, ok := prices[unit]
		if !ok {
			p = s.prices.GetPrice(ctx, unit)
			prices[unit] = p
		}
		return p
	}

	out := records
	copied := false
	for i, rec := range records {
		var converted models.RawRecord
		for k, v := range rec {
			amount, ok := monetary(v)
			if !ok {
				continue
			}
			if converted == nil {
				converted = make(models.RawRecord, len(rec))
				for ck, cv := range rec {
					converted[ck] = cv
				}
			}
			usd, err := amount.ToUSD(price(amount.Unit))
			if err != nil {
				s.logger.Warnf(providers.TypeAggregate, "%s: %s: %s", source, k, err)
				usd = 0
			}
			converted[k] = usd
		}
		if converted == nil {
			continue
		}
		if !copied {
			// the source may hand out the same slice again
			out = make([]models.RawRecord, len(records))
			copy(out, records)
			copied = true
		}
		out[i] = converted
	}
	return out
}

func monetary(v any) (models.MonetaryAmount, bool) {
	switch m := v.(type) {
	case models.MonetaryAmount:
		return m, true
	case *models.MonetaryAmount:
		if m == nil {
			return models.MonetaryAmount{}, false
		}
		return *m, true
	}
	return models.MonetaryAmount{}, false
}

func normalizeFields(requested, defaults []string) []string {
	seen := make(map[string]struct{}, len(requested))
	var out []string
	for _, f := range requested {
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	if len(out) == 0 {
		return append([]string(nil), defaults...)
	}
	return out
}

func cardOf(ctx context.Context, svc SeriesServiceInterface, filter, source, field string) (*models.Card, error) {
	var fields []string
	if field != "" {
		fields = []string{field}
	}
	series, err := svc.GetSeries(ctx, filter, source, fields)
	if err != nil {
		return nil, err
	}
	if field == "" && len(series.Fields) > 0 {
		field = series.Fields[0]
	}
	return &models.Card{
		Source:  source,
		Filter:  series.Filter,
		Field:   field,
		Value:   series.Total(field),
		Partial: series.Partial,
	}, nil
}
