package sources

import (
	"context"
	"fmt"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const GovernanceSourceName = "governance"

var governanceDefaults = models.FetchPolicy{
	ChunkThreshold: 90 * 24 * time.Hour,
	ChunkSize:      30 * 24 * time.Hour,
}

const votesQuery = `
	query Votes($space: String!, $gte: Int!, $lt: Int!, $first: Int!, $skip: Int!) {
		votes(
			first: $first,
			skip: $skip,
			orderBy: "created",
			orderDirection: asc,
			where: { space: $space, created_gte: $gte, created_lt: $lt }
		) {
			id
			created
			vp
		}
	}
`

type snapshotVote struct {
	ID      string  `json:"id"`
	Created int64   `json:"created"`
	VP      float64 `json:"vp"`
}

// SnapshotSource counts governance votes cast in one Snapshot space.
type SnapshotSource struct {
	client   *upstreamClient
	endpoint string
	space    string
	policy   models.FetchPolicy
}

func NewSnapshotSource(conf structures.SnapshotSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *SnapshotSource {
	return &SnapshotSource{
		client:   newUpstreamClient(GovernanceSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics),
		endpoint: conf.Endpoint,
		space:    conf.Space,
		policy:   policyFrom(governanceDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *SnapshotSource) Name() string { return GovernanceSourceName }

func (s *SnapshotSource) DefaultFields() []string { return []string{"votes", "votingPower"} }

func (s *SnapshotSource) Policy() models.FetchPolicy { return s.policy }

func (s *SnapshotSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	var records []models.RawRecord
	for skip := 0; ; skip += graphPageSize {
		if skip > graphMaxSkip {
			return nil, fmt.Errorf("snapshot votes: %w (skip %d)", ErrPageLimit, graphMaxSkip)
		}
		vars := map[string]any{
			"space": s.space,
			"gte":   start.Unix(),
			"lt":    end.Unix(),
			"first": graphPageSize,
			"skip":  skip,
		}
		var data struct {
			Votes []snapshotVote `json:"votes"`
		}
		if err := s.client.graphQL(ctx, s.endpoint, votesQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("snapshot votes skip %d: %w", skip, err)
		}
		for _, v := range data.Votes {
			records = append(records, models.RawRecord{
				models.FieldTimestamp: v.Created,
				"votes":               1,
				"votingPower":         v.VP,
				"id":                  v.ID,
			})
		}
		if len(data.Votes) < graphPageSize {
			break
		}
	}
	return records, nil
}
