package sources

import (
	"sort"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

type RegistryInterface interface {
	Get(name string) (MetricSource, error)
	List() []MetricSource
}

// Registry holds the enabled metric sources by name.
type Registry struct {
	sources map[string]MetricSource
}

func NewRegistry(sources ...MetricSource) *Registry {
	r := &Registry{sources: make(map[string]MetricSource, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// NewRegistryProvider builds the registry from every source enabled in config.
func NewRegistryProvider(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) RegistryInterface {
	var enabled []MetricSource
	src, agg := conf.Sources, conf.Aggregation

	if src.Messaging.Enabled {
		enabled = append(enabled, NewMessagingSource(src.Messaging, agg, logger, metrics))
	}
	if src.Dao.Enabled {
		enabled = append(enabled, NewSafeSource(src.Dao, agg, logger, metrics))
	}
	if src.GitHub.Enabled {
		enabled = append(enabled, NewGitHubSource(src.GitHub, agg, logger, metrics))
	}
	if src.Racing.Enabled {
		enabled = append(enabled, NewDuneSource(src.Racing, agg, logger, metrics))
	}
	if src.Domains.Enabled {
		enabled = append(enabled, NewSubgraphSource(src.Domains, agg, logger, metrics))
	}
	if src.Governance.Enabled {
		enabled = append(enabled, NewSnapshotSource(src.Governance, agg, logger, metrics))
	}

	for _, s := range enabled {
		logger.Infof(providers.TypeApp, "Source %s enabled (chunk threshold %s)", s.Name(), s.Policy().ChunkThreshold)
	}
	return NewRegistry(enabled...)
}

func (r *Registry) Get(name string) (MetricSource, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, &models.UnknownSourceError{Source: name}
	}
	return s, nil
}

// List returns the sources ordered by name.
func (r *Registry) List() []MetricSource {
	out := make([]MetricSource, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}
