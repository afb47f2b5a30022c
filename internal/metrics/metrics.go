// Package metrics tracks per-run pipeline counters exposed on the
// monitoring endpoints.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	ItemsIngested      int64
	DuplicatesFiltered int64
	TickersRecovered   int64
	AnalysesCompleted  int64
	AnalysesFailed     int64
	CacheHits          int64
	SignalsStored      int64
	DigestsSent        int64

	LastRunDuration time.Duration
	LastRunTime     time.Time
	LastError       string
	LastErrorTime   time.Time
	healthy         bool
}

func New() *Metrics {
	return &Metrics{healthy: true}
}

func (m *Metrics) AddIngested(n int) {
	m.add(&m.ItemsIngested, n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.add(&m.DuplicatesFiltered, n)
}

func (m *Metrics) AddTickersRecovered(n int) {
	m.add(&m.TickersRecovered, n)
}

func (m *Metrics) AddAnalysesCompleted(n int) {
	m.add(&m.AnalysesCompleted, n)
}

func (m *Metrics) AddAnalysesFailed(n int) {
	m.add(&m.AnalysesFailed, n)
}

func (m *Metrics) AddCacheHits(n int) {
	m.add(&m.CacheHits, n)
}

func (m *Metrics) AddSignalsStored(n int) {
	m.add(&m.SignalsStored, n)
}

func (m *Metrics) AddDigestsSent(n int) {
	m.add(&m.DigestsSent, n)
}

func (m *Metrics) add(field *int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field += int64(n)
}

// RecordRun marks a successful run and its duration.
func (m *Metrics) RecordRun(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = d
	m.LastRunTime = time.Now()
	m.healthy = true
}

func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err.Error()
	m.LastErrorTime = time.Now()
	m.healthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// Stats returns a snapshot for the /metrics endpoint.
func (m *Metrics) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"items_ingested":       m.ItemsIngested,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"tickers_recovered":    m.TickersRecovered,
		"analyses_completed":   m.AnalysesCompleted,
		"analyses_failed":      m.AnalysesFailed,
		"cache_hits":           m.CacheHits,
		"signals_stored":       m.SignalsStored,
		"digests_sent":         m.DigestsSent,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"is_healthy":           m.healthy,
	}
}
