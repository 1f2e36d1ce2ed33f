package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const (
	DaoSourceName = "dao"

	safePageSize   = 100
	maxPagesPerRun = 50
	nativeSymbol   = "ETH"
	nativeDecimals = 18
)

var daoDefaults = models.FetchPolicy{
	ChunkThreshold: 90 * 24 * time.Hour,
	ChunkSize:      30 * 24 * time.Hour,
}

type safeTransfer struct {
	Type            string `json:"type"`
	ExecutionDate   string `json:"executionDate"`
	TransactionHash string `json:"transactionHash"`
	Value           string `json:"value"`
	TokenInfo       *struct {
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	} `json:"tokenInfo"`
}

type safeTransferPage struct {
	Next    *string        `json:"next"`
	Results []safeTransfer `json:"results"`
}

// SafeSource reads incoming treasury transfers of the DAO multisig.
type SafeSource struct {
	client  *upstreamClient
	baseURL string
	address string
	policy  models.FetchPolicy
}

func NewSafeSource(conf structures.SafeSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *SafeSource {
	return &SafeSource{
		client:  newUpstreamClient(DaoSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics),
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		address: conf.Address,
		policy:  policyFrom(daoDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *SafeSource) Name() string { return DaoSourceName }

func (s *SafeSource) DefaultFields() []string { return []string{"transfers", "inflow"} }

func (s *SafeSource) Policy() models.FetchPolicy { return s.policy }

func (s *SafeSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	query := url.Values{}
	query.Set("executionDate__gte", start.UTC().Format(time.RFC3339))
	query.Set("executionDate__lt", end.UTC().Format(time.RFC3339))
	query.Set("limit", fmt.Sprint(safePageSize))

	endpoint := fmt.Sprintf("%s/api/v1/safes/%s/incoming-transfers/", s.baseURL, s.address)
	var records []models.RawRecord
	for page := 0; endpoint != ""; page++ {
		if page == maxPagesPerRun {
			return nil, fmt.Errorf("safe transfers: %w (%d pages)", ErrPageLimit, maxPagesPerRun)
		}
		var resp safeTransferPage
		if err := s.client.getJSON(ctx, endpoint, query, &resp); err != nil {
			return nil, fmt.Errorf("safe transfers page %d: %w", page, err)
		}
		for _, tr := range resp.Results {
			records = append(records, transferRecord(tr))
		}

		// next already carries the query string
		endpoint, query = "", nil
		if resp.Next != nil {
			endpoint = *resp.Next
		}
	}
	return records, nil
}

func transferRecord(tr safeTransfer) models.RawRecord {
	amount := models.MonetaryAmount{Amount: tr.Value, Unit: nativeSymbol, Precision: nativeDecimals}
	if tr.TokenInfo != nil {
		amount.Unit = tr.TokenInfo.Symbol
		amount.Precision = tr.TokenInfo.Decimals
	}
	return models.RawRecord{
		models.FieldTimestamp: tr.ExecutionDate,
		"transfers":           1,
		"inflow":              amount,
		"id":                  tr.TransactionHash,
	}
}
