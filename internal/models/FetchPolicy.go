package models

import "time"

// FetchPolicy describes how a source wants long intervals fetched. Intervals
// longer than ChunkThreshold are split into ChunkSize windows.
type FetchPolicy struct {
	ChunkThreshold time.Duration `json:"chunkThreshold"`
	ChunkSize      time.Duration `json:"chunkSize"`
	Concurrency    int           `json:"concurrency"`
	BatchDelay     time.Duration `json:"batchDelay"`
}

// Chunked reports whether interval i must go through the chunked fetcher.
func (p FetchPolicy) Chunked(i Interval) bool {
	return p.ChunkSize > 0 && p.ChunkThreshold > 0 && i.Duration() > p.ChunkThreshold
}
