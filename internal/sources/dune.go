package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const (
	RacingSourceName = "racing"

	duneRowLimit = 1000
)

var racingDefaults = models.FetchPolicy{
	ChunkThreshold: 365 * 24 * time.Hour,
	ChunkSize:      90 * 24 * time.Hour,
	Concurrency:    1,
}

type duneResults struct {
	Result struct {
		Rows []map[string]any `json:"rows"`
	} `json:"result"`
	NextOffset *int `json:"next_offset"`
}

// DuneSource reads the daily racing aggregates of a saved Dune query.
type DuneSource struct {
	client  *upstreamClient
	baseURL string
	queryID int
	policy  models.FetchPolicy
}

func NewDuneSource(conf structures.DuneSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *DuneSource {
	client := newUpstreamClient(RacingSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics)
	client.setHeader("X-Dune-API-Key", conf.APIKey)
	return &DuneSource{
		client:  client,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		queryID: conf.QueryID,
		policy:  policyFrom(racingDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *DuneSource) Name() string { return RacingSourceName }

func (s *DuneSource) DefaultFields() []string { return []string{"races", "racers", "wagered"} }

func (s *DuneSource) Policy() models.FetchPolicy { return s.policy }

func (s *DuneSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v1/query/%d/results", s.baseURL, s.queryID)
	filter := fmt.Sprintf("block_date >= '%s' AND block_date < '%s'",
		start.UTC().Format(time.DateTime), end.UTC().Format(time.DateTime))

	var records []models.RawRecord
	offset := 0
	for page := 0; ; page++ {
		if page == maxPagesPerRun {
			return nil, fmt.Errorf("dune query %d: %w (%d pages)", s.queryID, ErrPageLimit, maxPagesPerRun)
		}
		query := url.Values{}
		query.Set("filters", filter)
		query.Set("limit", strconv.Itoa(duneRowLimit))
		query.Set("offset", strconv.Itoa(offset))

		var resp duneResults
		if err := s.client.getJSON(ctx, endpoint, query, &resp); err != nil {
			return nil, fmt.Errorf("dune query %d: %w", s.queryID, err)
		}
		for _, row := range resp.Result.Rows {
			records = append(records, duneRecord(row))
		}
		if resp.NextOffset == nil || *resp.NextOffset <= offset {
			break
		}
		offset = *resp.NextOffset
	}
	return records, nil
}

func duneRecord(row map[string]any) models.RawRecord {
	rec := make(models.RawRecord, len(row))
	for k, v := range row {
		if k == "block_date" {
			rec[models.FieldDate] = v
			continue
		}
		rec[k] = v
	}
	return rec
}
