package observability

import (
	"strconv"
	"sync"
	"time"
)

type counterKey struct {
	path   string
	method string
	label  string
}

// Metrics keeps in-memory request and error counters, keyed by
// path/method plus status or error code.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[counterKey]int64
	errorCount   map[counterKey]int64
	totalLatency map[counterKey]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[counterKey]int64),
		errorCount:   make(map[counterKey]int64),
		totalLatency: make(map[counterKey]time.Duration),
	}
}

// RecordRequest counts a completed request and accumulates latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := counterKey{path: path, method: method, label: strconv.Itoa(status)}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalLatency[key] += duration
}

// RecordError counts an error by its domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := counterKey{path: path, method: method, label: code}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the request counters for the stats endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.requestCount))
	for key, count := range m.requestCount {
		out[key.path+"|"+key.method+"|"+key.label] = count
	}
	return out
}
