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

const MessagingSourceName = "messaging"

var messagingDefaults = models.FetchPolicy{
	ChunkThreshold: 60 * 24 * time.Hour,
	ChunkSize:      15 * 24 * time.Hour,
}

type messagingMetric struct {
	Date               string                 `json:"date"`
	Timestamp          int64                  `json:"timestamp"`
	DailyActiveUsers   float64                `json:"dailyActiveUsers"`
	TotalMessagesSent  float64                `json:"totalMessagesSent"`
	UserSignUps        float64                `json:"userSignUps"`
	NewlyMintedDomains float64                `json:"newlyMintedDomains"`
	TotalRewardsEarned *models.MonetaryAmount `json:"totalRewardsEarned"`
}

// MessagingSource reads the per-day chat platform metrics.
type MessagingSource struct {
	client  *upstreamClient
	baseURL string
	policy  models.FetchPolicy
}

func NewMessagingSource(conf structures.MessagingSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *MessagingSource {
	client := newUpstreamClient(MessagingSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics)
	if conf.Token != "" {
		client.setHeader("Authorization", "Bearer "+conf.Token)
	}
	return &MessagingSource{
		client:  client,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		policy:  policyFrom(messagingDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *MessagingSource) Name() string { return MessagingSourceName }

func (s *MessagingSource) DefaultFields() []string {
	return []string{"dailyActiveUsers", "totalMessagesSent", "userSignUps", "newlyMintedDomains", "totalRewardsEarned"}
}

func (s *MessagingSource) Policy() models.FetchPolicy { return s.policy }

func (s *MessagingSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	query := url.Values{}
	query.Set("fromTs", strconv.FormatInt(start.UnixMilli(), 10))
	query.Set("toTs", strconv.FormatInt(end.UnixMilli(), 10))

	var metrics []messagingMetric
	if err := s.client.getJSON(ctx, s.baseURL+"/metrics/dynamic", query, &metrics); err != nil {
		return nil, fmt.Errorf("messaging metrics: %w", err)
	}

	records := make([]models.RawRecord, 0, len(metrics))
	for _, m := range metrics {
		rec := models.RawRecord{
			"dailyActiveUsers":   m.DailyActiveUsers,
			"totalMessagesSent":  m.TotalMessagesSent,
			"userSignUps":        m.UserSignUps,
			"newlyMintedDomains": m.NewlyMintedDomains,
		}
		if m.Timestamp > 0 {
			rec[models.FieldTimestamp] = m.Timestamp
		}
		if m.Date != "" {
			rec[models.FieldDate] = m.Date
		}
		if m.TotalRewardsEarned != nil {
			rec["totalRewardsEarned"] = *m.TotalRewardsEarned
		}
		records = append(records, rec)
	}
	return records, nil
}
