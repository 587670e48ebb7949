package mesi

import (
	"sync"

	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// Transition records one MESI state change observed by a MockObserver.
type Transition struct {
	From, To protocol.MESIState
}

// MockObserver is a call-tracking Observer for unit tests, in the same
// spirit as the source lineage's MockBackend: every event is counted and
// exposed through read methods instead of raw field access, so tests stay
// valid even if the internal bookkeeping changes shape.
type MockObserver struct {
	mu sync.Mutex

	sent        map[protocol.TxType]int
	dropped     map[protocol.TxType]int
	cacheHits   int
	cacheMisses int
	transitions []Transition
	evictions   int
}

// NewMockObserver creates a MockObserver ready to use.
func NewMockObserver() *MockObserver {
	return &MockObserver{
		sent:    make(map[protocol.TxType]int),
		dropped: make(map[protocol.TxType]int),
	}
}

// ObserveSend implements Observer.
func (m *MockObserver) ObserveSend(kind protocol.TxType, dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[kind]++
	if dropped {
		m.dropped[kind]++
	}
}

// ObserveCacheAccess implements Observer.
func (m *MockObserver) ObserveCacheAccess(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

// ObserveTransition implements Observer.
func (m *MockObserver) ObserveTransition(from, to protocol.MESIState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, Transition{From: from, To: to})
}

// ObserveEviction implements Observer.
func (m *MockObserver) ObserveEviction() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions++
}

// SentCount returns how many messages of kind were observed, including
// dropped ones.
func (m *MockObserver) SentCount(kind protocol.TxType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[kind]
}

// DroppedCount returns how many messages of kind were dropped.
func (m *MockObserver) DroppedCount(kind protocol.TxType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped[kind]
}

// CacheAccessCounts returns the cumulative hit/miss counts.
func (m *MockObserver) CacheAccessCounts() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits, m.cacheMisses
}

// Transitions returns a copy of every transition observed so far, in order.
func (m *MockObserver) Transitions() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transition, len(m.transitions))
	copy(out, m.transitions)
	return out
}

// EvictionCount returns how many EVICT_MODIFIED/EVICT_SHARED occurrences
// were observed.
func (m *MockObserver) EvictionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictions
}

// Reset clears all recorded calls, mirroring the source lineage's
// MockBackend.Reset.
func (m *MockObserver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = make(map[protocol.TxType]int)
	m.dropped = make(map[protocol.TxType]int)
	m.cacheHits = 0
	m.cacheMisses = 0
	m.transitions = nil
	m.evictions = 0
}

var _ Observer = (*MockObserver)(nil)
