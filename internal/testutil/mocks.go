package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level on channel t.
func (m *MockLogger) Count(level string, t providers.TypeEnum) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level && l.Type == t {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface with counters.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       map[string]int
	CacheHits      int
	CacheMisses    int
	UpstreamCalls  map[string]int
	ChunkFailures  map[string]int
	DroppedRecords map[string]int
	SeriesBuilds   map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:       make(map[string]int),
		UpstreamCalls:  make(map[string]int),
		ChunkFailures:  make(map[string]int),
		DroppedRecords: make(map[string]int),
		SeriesBuilds:   make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObserveUpstreamDuration(source string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamCalls[source]++
}
func (m *MockMetrics) IncChunkFailures(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChunkFailures[source]++
}
func (m *MockMetrics) AddDroppedRecords(source string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DroppedRecords[source] += count
}
func (m *MockMetrics) ObserveSeriesBuild(source string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SeriesBuilds[source]++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.TTLs[key] = ttl
}

// MockCompressor implements cache.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// FetchCall is one recorded MockSource.FetchWindow call.
type FetchCall struct {
	Start time.Time
	End   time.Time
}

// MockSource implements sources.MetricSource. FetchFn, when set, decides the
// result of every window; otherwise Records is returned as-is.
type MockSource struct {
	SourceName string
	Fields     []string
	FetchPol   models.FetchPolicy
	Records    []models.RawRecord
	Err        error
	FetchFn    func(ctx context.Context, start, end time.Time) ([]models.RawRecord, error)

	mu    sync.Mutex
	Calls []FetchCall
}

func (m *MockSource) Name() string               { return m.SourceName }
func (m *MockSource) DefaultFields() []string    { return m.Fields }
func (m *MockSource) Policy() models.FetchPolicy { return m.FetchPol }

func (m *MockSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, FetchCall{Start: start, End: end})
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, start, end)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPriceSource implements sources.PriceSource from a fixed table keyed
// case-insensitively by asset symbol. Unknown assets price at 0.
type MockPriceSource struct {
	Prices map[string]float64

	mu    sync.Mutex
	Calls []string
}

func (m *MockPriceSource) GetPrice(_ context.Context, asset string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, asset)
	for k, v := range m.Prices {
		if strings.EqualFold(k, asset) {
			return v
		}
	}
	return 0
}

func (m *MockPriceSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
