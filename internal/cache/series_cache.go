package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

// SeriesKey identifies one resolved series. Different field lists are
// different series.
type SeriesKey struct {
	Source      string
	Filter      string
	Granularity models.Granularity
	Fields      []string
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("series:%s:%s:%s:%s", k.Source, k.Filter, k.Granularity, strings.Join(k.Fields, ","))
}

type FetchSeriesFunc func(ctx context.Context) (*models.Series, error)

type SeriesCacheInterface interface {
	GetOrFetch(ctx context.Context, key SeriesKey, ttl time.Duration, fetch FetchSeriesFunc) (*models.Series, error)
	Seed(key SeriesKey, s *models.Series) bool
	TTL() time.Duration
}

type entry struct {
	Series     *models.Series `json:"series"`
	InsertedAt time.Time      `json:"insertedAt"`
}

// SeriesCache memoises built series on a byte backend and collapses
// concurrent builds of one key into a single fetch. Errors are never stored.
type SeriesCache struct {
	backend    providers.CacheProviderInterface
	compressor CompressorInterface
	logger     providers.Logger
	group      singleflight.Group
	ttl        time.Duration
	now        func() time.Time
}

func NewSeriesCache(conf *structures.Config, backend providers.CacheProviderInterface, compressor CompressorInterface, logger providers.Logger) SeriesCacheInterface {
	return &SeriesCache{
		backend:    backend,
		compressor: compressor,
		logger:     logger,
		ttl:        conf.Cache.TTL,
		now:        time.Now,
	}
}

// TTL is the configured default entry lifetime.
func (c *SeriesCache) TTL() time.Duration {
	return c.ttl
}

func (c *SeriesCache) GetOrFetch(ctx context.Context, key SeriesKey, ttl time.Duration, fetch FetchSeriesFunc) (*models.Series, error) {
	k := key.String()
	if s, ok := c.lookup(k, ttl); ok {
		return s, nil
	}

	v, err, shared := c.group.Do(k, func() (any, error) {
		// another flight may have stored it while we waited for the lock
		if s, ok := c.lookup(k, ttl); ok {
			return s, nil
		}
		s, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(k, s, c.now(), ttl)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debugf(providers.TypeGet, "Shared in-flight build of %s", k)
	}
	return v.(*models.Series), nil
}

// Seed stores a series built elsewhere, aged from its GeneratedAt so a
// restored entry expires when the original would have. Already expired
// series are skipped.
func (c *SeriesCache) Seed(key SeriesKey, s *models.Series) bool {
	if s == nil {
		return false
	}
	ttl := c.ttl
	if ttl > 0 {
		remaining := ttl - c.now().Sub(s.GeneratedAt)
		if remaining <= 0 {
			return false
		}
		ttl = remaining
	}
	c.store(key.String(), s, s.GeneratedAt, ttl)
	return true
}

func (c *SeriesCache) lookup(key string, ttl time.Duration) (*models.Series, bool) {
	raw, ok := c.backend.Get(key)
	if !ok {
		return nil, false
	}
	data, err := c.compressor.Decompress(raw)
	if err != nil {
		c.logger.Warnf(providers.TypeGet, "Discarding cache entry %s: %s", key, err)
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Series == nil {
		c.logger.Warnf(providers.TypeGet, "Discarding cache entry %s: undecodable", key)
		return nil, false
	}
	if ttl > 0 && c.now().Sub(e.InsertedAt) >= ttl {
		return nil, false
	}
	return e.Series, true
}

func (c *SeriesCache) store(key string, s *models.Series, insertedAt time.Time, ttl time.Duration) {
	data, err := json.Marshal(entry{Series: s, InsertedAt: insertedAt})
	if err != nil {
		c.logger.Errorf(providers.TypeGet, "Unable to encode series %s: %s", key, err)
		return
	}
	compressed, err := c.compressor.Compress(data)
	if err != nil {
		c.logger.Errorf(providers.TypeGet, "Unable to compress series %s: %s", key, err)
		return
	}
	c.backend.Set(key, compressed, ttl)
}
