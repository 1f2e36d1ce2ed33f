//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"metricsdash/internal"
	"metricsdash/internal/aggregation"
	"metricsdash/internal/cache"
	"metricsdash/internal/controllers"
	"metricsdash/internal/prefetch"
	"metricsdash/internal/providers"
	"metricsdash/internal/services"
	"metricsdash/internal/sources"
	"metricsdash/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		cache.NewZstdCompressor,
		cache.NewSeriesCache,
		sources.NewRegistryProvider,
		sources.NewPriceSource,
		aggregation.NewChunkedFetcher,
		aggregation.NewBucketAggregator,
		services.NewSeriesService,
		services.NewCachedSeriesService,
		prefetch.NewSnapshotStore,
		prefetch.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
