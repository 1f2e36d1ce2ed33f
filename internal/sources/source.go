package sources

import (
	"context"
	"errors"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/structures"
)

// ErrPageLimit is returned when a window still has rows after the per-fetch
// page cap. Narrower chunks fit under it.
var ErrPageLimit = errors.New("page limit reached with rows remaining")

// MetricSource fetches raw records for one dashboard section.
type MetricSource interface {
	Name() string
	DefaultFields() []string
	Policy() models.FetchPolicy
	FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error)
}

// PriceSource returns the current USD price of an asset, or 0 when unknown.
// It never fails: callers render a zero value rather than an error.
type PriceSource interface {
	GetPrice(ctx context.Context, asset string) float64
}

// policyFrom overlays non-zero configured chunking onto a source's defaults.
func policyFrom(defaults models.FetchPolicy, c structures.ChunkPolicy, concurrency int) models.FetchPolicy {
	p := defaults
	if c.Threshold > 0 {
		p.ChunkThreshold = c.Threshold
	}
	if c.Size > 0 {
		p.ChunkSize = c.Size
	}
	if p.Concurrency <= 0 {
		p.Concurrency = concurrency
	}
	if c.Concurrency > 0 {
		p.Concurrency = c.Concurrency
	}
	if c.BatchDelay > 0 {
		p.BatchDelay = c.BatchDelay
	}
	return p
}
