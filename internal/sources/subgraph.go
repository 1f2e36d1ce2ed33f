package sources

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const (
	DomainsSourceName = "domains"

	graphPageSize = 1000
	// hosted subgraphs reject skip values above this
	graphMaxSkip = 5000
)

var domainsDefaults = models.FetchPolicy{
	ChunkThreshold: 30 * 24 * time.Hour,
	ChunkSize:      7 * 24 * time.Hour,
}

const domainsQuery = `
	query Domains($gte: BigInt!, $lt: BigInt!, $first: Int!, $skip: Int!) {
		domains(
			first: $first,
			skip: $skip,
			orderBy: creationTimestamp,
			orderDirection: asc,
			where: { creationTimestamp_gte: $gte, creationTimestamp_lt: $lt }
		) {
			id
			creationTimestamp
		}
	}
`

type subgraphDomain struct {
	ID                string `json:"id"`
	CreationTimestamp string `json:"creationTimestamp"`
}

// SubgraphSource counts domain registrations indexed by the naming subgraph.
type SubgraphSource struct {
	client   *upstreamClient
	endpoint string
	policy   models.FetchPolicy
}

func NewSubgraphSource(conf structures.SubgraphSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *SubgraphSource {
	return &SubgraphSource{
		client:   newUpstreamClient(DomainsSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics),
		endpoint: conf.Endpoint,
		policy:   policyFrom(domainsDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *SubgraphSource) Name() string { return DomainsSourceName }

func (s *SubgraphSource) DefaultFields() []string { return []string{"registrations"} }

func (s *SubgraphSource) Policy() models.FetchPolicy { return s.policy }

func (s *SubgraphSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	var records []models.RawRecord
	for skip := 0; ; skip += graphPageSize {
		if skip > graphMaxSkip {
			return nil, fmt.Errorf("subgraph domains: %w (skip %d)", ErrPageLimit, graphMaxSkip)
		}
		vars := map[string]any{
			"gte":   strconv.FormatInt(start.Unix(), 10),
			"lt":    strconv.FormatInt(end.Unix(), 10),
			"first": graphPageSize,
			"skip":  skip,
		}
		var data struct {
			Domains []subgraphDomain `json:"domains"`
		}
		if err := s.client.graphQL(ctx, s.endpoint, domainsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("subgraph domains skip %d: %w", skip, err)
		}
		for _, d := range data.Domains {
			records = append(records, models.RawRecord{
				models.FieldTimestamp: d.CreationTimestamp,
				"registrations":       1,
				"id":                  d.ID,
			})
		}
		if len(data.Domains) < graphPageSize {
			break
		}
	}
	return records, nil
}
