package mesi

import (
	"sync/atomic"

	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

const numTxTypes = 13 // len(protocol.TxType enumeration)

// Metrics tracks coherence-protocol statistics for a simulation run.
type Metrics struct {
	// Per-TxType message counters, indexed by protocol.TxType.
	Sent    [numTxTypes]atomic.Uint64
	Dropped [numTxTypes]atomic.Uint64

	// Cache access counters.
	CacheHits   atomic.Uint64
	CacheMisses atomic.Uint64

	// MESI transition counters, indexed [from][to].
	Transitions [4][4]atomic.Uint64

	// EvictModified/EvictShared occurrences, useful for capacity-miss analysis.
	Evictions atomic.Uint64
}

// NewMetrics creates a new, zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordSend records that a message of kind was handed to the transport.
func (m *Metrics) RecordSend(kind protocol.TxType, dropped bool) {
	idx := int(kind)
	if idx < 0 || idx >= numTxTypes {
		return
	}
	m.Sent[idx].Add(1)
	if dropped {
		m.Dropped[idx].Add(1)
	}
}

// RecordCacheAccess records a cache hit or miss.
func (m *Metrics) RecordCacheAccess(hit bool) {
	if hit {
		m.CacheHits.Add(1)
	} else {
		m.CacheMisses.Add(1)
	}
}

// RecordTransition records a MESI state transition.
func (m *Metrics) RecordTransition(from, to protocol.MESIState) {
	if int(from) < 0 || int(from) > 3 || int(to) < 0 || int(to) > 3 {
		return
	}
	m.Transitions[from][to].Add(1)
}

// RecordEviction records an EVICT_MODIFIED/EVICT_SHARED occurrence (spec.md
// §4.4), as distinct from INV/WRITEBACK_INV downgrades that also transition
// a line to Invalid but are not capacity evictions.
func (m *Metrics) RecordEviction() {
	m.Evictions.Add(1)
}

// MetricsSnapshot is a point-in-time, race-free copy of Metrics.
type MetricsSnapshot struct {
	Sent        [numTxTypes]uint64
	Dropped     [numTxTypes]uint64
	CacheHits   uint64
	CacheMisses uint64
	Transitions [4][4]uint64
	Evictions   uint64

	TotalSent    uint64
	TotalDropped uint64
	HitRate      float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var snap MetricsSnapshot
	for i := 0; i < numTxTypes; i++ {
		snap.Sent[i] = m.Sent[i].Load()
		snap.Dropped[i] = m.Dropped[i].Load()
		snap.TotalSent += snap.Sent[i]
		snap.TotalDropped += snap.Dropped[i]
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			snap.Transitions[i][j] = m.Transitions[i][j].Load()
		}
	}
	snap.CacheHits = m.CacheHits.Load()
	snap.CacheMisses = m.CacheMisses.Load()
	snap.Evictions = m.Evictions.Load()

	total := snap.CacheHits + snap.CacheMisses
	if total > 0 {
		snap.HitRate = float64(snap.CacheHits) / float64(total) * 100.0
	}
	return snap
}

// Reset resets all metrics counters (useful for testing).
func (m *Metrics) Reset() {
	for i := 0; i < numTxTypes; i++ {
		m.Sent[i].Store(0)
		m.Dropped[i].Store(0)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m.Transitions[i][j].Store(0)
		}
	}
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)
	m.Evictions.Store(0)
}

// Observer allows pluggable metrics collection, implemented by interfaces.Observer.
type Observer interface {
	ObserveSend(kind protocol.TxType, dropped bool)
	ObserveCacheAccess(hit bool)
	ObserveTransition(from, to protocol.MESIState)
	ObserveEviction()
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveSend(protocol.TxType, bool)                       {}
func (NoOpObserver) ObserveCacheAccess(bool)                                 {}
func (NoOpObserver) ObserveTransition(protocol.MESIState, protocol.MESIState) {}
func (NoOpObserver) ObserveEviction()                                        {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveSend(kind protocol.TxType, dropped bool) {
	o.metrics.RecordSend(kind, dropped)
}

func (o *MetricsObserver) ObserveCacheAccess(hit bool) {
	o.metrics.RecordCacheAccess(hit)
}

func (o *MetricsObserver) ObserveTransition(from, to protocol.MESIState) {
	o.metrics.RecordTransition(from, to)
}

func (o *MetricsObserver) ObserveEviction() {
	o.metrics.RecordEviction()
}

// Compile-time interface checks.
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
