package interfaces

import (
	"context"

	"metricsdash/internal/models"
	"metricsdash/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	RunOnce(ctx context.Context, series []structures.PrefetchSeries) (int, error)
}

// SeriesSeeder is implemented by series services that can accept a series
// built in an earlier process.
type SeriesSeeder interface {
	Seed(s *models.Series) bool
}
