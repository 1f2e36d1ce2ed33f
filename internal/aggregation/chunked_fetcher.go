package aggregation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
)

const (
	DefaultConcurrency  = 5
	DefaultChunkTimeout = 10 * time.Second
)

// FetchFunc fetches the records of one [start, end) window.
type FetchFunc func(ctx context.Context, start, end time.Time) ([]models.RawRecord, error)

type ChunkOptions struct {
	Source      string
	ChunkSize   time.Duration
	Concurrency int
	BatchDelay  time.Duration
	Timeout     time.Duration
}

// FetchReport summarises one chunked fetch. Err combines every chunk failure
// and is nil when all chunks succeeded.
type FetchReport struct {
	Chunks int
	Failed int
	Err    error
}

func (r FetchReport) AllFailed() bool {
	return r.Chunks > 0 && r.Failed == r.Chunks
}

type ChunkedFetcherInterface interface {
	FetchChunked(ctx context.Context, interval models.Interval, opts ChunkOptions, fetchOne FetchFunc) ([]models.RawRecord, FetchReport)
}

type ChunkedFetcher struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewChunkedFetcher(logger providers.Logger, metrics providers.MetricsProviderInterface) ChunkedFetcherInterface {
	return &ChunkedFetcher{
		logger:  logger,
		metrics: metrics,
	}
}

// Split cuts interval into consecutive windows of size; the last one ends at interval.End.
func Split(interval models.Interval, size time.Duration) []models.Interval {
	if interval.IsEmpty() {
		return nil
	}
	if size <= 0 {
		return []models.Interval{interval}
	}
	var chunks []models.Interval
	for start := interval.Start; start.Before(interval.End); start = start.Add(size) {
		end := start.Add(size)
		if end.After(interval.End) {
			end = interval.End
		}
		chunks = append(chunks, models.Interval{Start: start, End: end})
	}
	return chunks
}

// FetchChunked runs fetchOne over every chunk with bounded concurrency. A failed
// chunk contributes no records and does not abort the others; records come back
// in chunk order regardless of completion order.
func (f *ChunkedFetcher) FetchChunked(ctx context.Context, interval models.Interval, opts ChunkOptions, fetchOne FetchFunc) ([]models.RawRecord, FetchReport) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultChunkTimeout
	}

	chunks := Split(interval, opts.ChunkSize)
	report := FetchReport{Chunks: len(chunks)}
	results := make([][]models.RawRecord, len(chunks))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)

	for i, chunk := range chunks {
		if i > 0 && opts.BatchDelay > 0 && i%opts.Concurrency == 0 {
			if err := sleepCtx(ctx, opts.BatchDelay); err != nil {
				f.failRemaining(opts.Source, chunks[i:], err, &mu, &report)
				break
			}
		}

		g.Go(func() error {
			chunkCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			records, err := fetchOne(chunkCtx, chunk.Start, chunk.End)
			if err != nil {
				f.logger.Warnf(providers.TypeFetch, "%s: chunk %d [%s, %s) failed: %s",
					opts.Source, i, chunk.Start.Format(time.RFC3339), chunk.End.Format(time.RFC3339), err)
				f.metrics.IncChunkFailures(opts.Source)

				mu.Lock()
				report.Failed++
				report.Err = multierr.Append(report.Err, fmt.Errorf("chunk %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]models.RawRecord, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}

	if report.Failed > 0 {
		f.logger.Warnf(providers.TypeFetch, "%s: %d of %d chunks failed", opts.Source, report.Failed, report.Chunks)
	}
	return out, report
}

func (f *ChunkedFetcher) failRemaining(source string, remaining []models.Interval, cause error, mu *sync.Mutex, report *FetchReport) {
	mu.Lock()
	defer mu.Unlock()
	for range remaining {
		f.metrics.IncChunkFailures(source)
		report.Failed++
	}
	report.Err = multierr.Append(report.Err, fmt.Errorf("%d chunks not started: %w", len(remaining), cause))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
