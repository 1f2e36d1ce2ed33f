package services

import (
	"context"

	"metricsdash/internal/cache"
	"metricsdash/internal/models"
	"metricsdash/internal/timerange"
)

// CachedSeriesService serves series through the SeriesCache. Requests are
// normalized first so "fields omitted" and "default fields listed" share an entry.
type CachedSeriesService struct {
	inner *SeriesService
	cache cache.SeriesCacheInterface
}

func NewCachedSeriesService(inner *SeriesService, seriesCache cache.SeriesCacheInterface) SeriesServiceInterface {
	return &CachedSeriesService{
		inner: inner,
		cache: seriesCache,
	}
}

func (c *CachedSeriesService) GetSeries(ctx context.Context, filter, source string, fields []string) (*models.Series, error) {
	filter, fields, err := c.inner.Normalize(filter, source, fields)
	if err != nil {
		return nil, err
	}
	key := cache.SeriesKey{
		Source:      source,
		Filter:      filter,
		Granularity: timerange.GranularityFor(filter),
		Fields:      fields,
	}
	return c.cache.GetOrFetch(ctx, key, c.cache.TTL(), func(ctx context.Context) (*models.Series, error) {
		return c.inner.GetSeries(ctx, filter, source, fields)
	})
}

// Seed puts an already built series into the cache under the key its own
// normalized request would produce.
func (c *CachedSeriesService) Seed(s *models.Series) bool {
	if s == nil {
		return false
	}
	key := cache.SeriesKey{
		Source:      s.Source,
		Filter:      s.Filter,
		Granularity: s.Granularity,
		Fields:      s.Fields,
	}
	return c.cache.Seed(key, s)
}

func (c *CachedSeriesService) GetCard(ctx context.Context, filter, source, field string) (*models.Card, error) {
	return cardOf(ctx, c, filter, source, field)
}

func (c *CachedSeriesService) Sources() []models.SourceInfo {
	return c.inner.Sources()
}
