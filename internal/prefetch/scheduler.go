package prefetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/multierr"

	"metricsdash/internal/models"
	"metricsdash/internal/prefetch/interfaces"
	"metricsdash/internal/providers"
	"metricsdash/internal/services"
	"metricsdash/internal/structures"
)

// Scheduler keeps the configured series warm in the series cache so that
// rate-limited upstreams are queried on a timer rather than per page view.
type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	service   services.SeriesServiceInterface
	snapshots *SnapshotStore
	cron      *gron.Cron
	opsMu     sync.Mutex
	warm      map[string]*models.Series
	now       func() time.Time
}

func (s *Scheduler) Init() {
	conf := s.config.Prefetch
	if !conf.Enabled || len(conf.Series) == 0 {
		s.logger.Infof(providers.TypeApp, "Prefetch disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(conf.Interval), func() {
		warmed, err := s.RunOnce(context.Background(), conf.Series)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Prefetch warmed %d/%d series: %s", warmed, len(conf.Series), err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Prefetch warmed %d series", warmed)
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Prefetch scheduled every %s for %d series", conf.Interval, len(conf.Series))
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce builds every series in turn. Runs never overlap; a failed series
// does not stop the rest. It returns how many succeeded.
func (s *Scheduler) RunOnce(ctx context.Context, series []structures.PrefetchSeries) (int, error) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	warmed := 0
	var errs error
	for _, item := range series {
		if err := ctx.Err(); err != nil {
			return warmed, multierr.Append(errs, err)
		}
		built, err := s.service.GetSeries(ctx, item.Filter, item.Source, item.Fields)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", item.Source, item.Filter, err))
			continue
		}
		s.remember(built)
		warmed++
	}
	return warmed, errs
}

// Restore seeds the cache with the series saved by the last Persist.
func (s *Scheduler) Restore() error {
	path := s.config.Prefetch.SnapshotPath
	if path == "" {
		return nil
	}
	seeder, ok := s.service.(interfaces.SeriesSeeder)
	if !ok {
		s.logger.Warnf(providers.TypeApp, "Series service cannot be seeded, skipping snapshot %s", path)
		return nil
	}

	series, err := s.snapshots.LoadFromFile(path)
	if err != nil {
		return err
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	seeded := 0
	for _, item := range series {
		if seeder.Seed(item) {
			s.remember(item)
			seeded++
		}
	}
	s.logger.Infof(providers.TypeApp, "Restored %d/%d series from %s", seeded, len(series), path)
	return nil
}

func (s *Scheduler) Persist() error {
	path := s.config.Prefetch.SnapshotPath
	if path == "" {
		return nil
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	keys := make([]string, 0, len(s.warm))
	for k := range s.warm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	series := make([]*models.Series, 0, len(keys))
	for _, k := range keys {
		series = append(series, s.warm[k])
	}

	s.logger.Infof(providers.TypeApp, "Persisting %d warmed series to %s", len(series), path)
	err := s.snapshots.SaveToFile(path, series, s.now())
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting series: %s", err)
		return err
	}
	return nil
}

// remember must be called with opsMu held.
func (s *Scheduler) remember(series *models.Series) {
	if series == nil || series.Partial {
		return
	}
	key := strings.Join([]string{series.Source, series.Filter, strings.Join(series.Fields, ",")}, ":")
	s.warm[key] = series
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.SeriesServiceInterface, snapshots *SnapshotStore) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		service:   service,
		snapshots: snapshots,
		warm:      make(map[string]*models.Series),
		now:       time.Now,
	}
}
