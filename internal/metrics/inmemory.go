package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SnippetsCreated uint64 `json:"snippets_created"`
	SnippetsUpdated uint64 `json:"snippets_updated"`
	SnippetsDeleted uint64 `json:"snippets_deleted"`
	OwnershipDenied uint64 `json:"ownership_denied"`
	ListCacheHits   uint64 `json:"list_cache_hits"`
	ListCacheMisses uint64 `json:"list_cache_misses"`
}

// InMemoryRecorder stores counters in memory. The server exposes its
// snapshot on /metrics.
type InMemoryRecorder struct {
	snippetsCreated uint64
	snippetsUpdated uint64
	snippetsDeleted uint64
	ownershipDenied uint64
	listCacheHits   uint64
	listCacheMisses uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SnippetsCreated: atomic.LoadUint64(&m.snippetsCreated),
		SnippetsUpdated: atomic.LoadUint64(&m.snippetsUpdated),
		SnippetsDeleted: atomic.LoadUint64(&m.snippetsDeleted),
		OwnershipDenied: atomic.LoadUint64(&m.ownershipDenied),
		ListCacheHits:   atomic.LoadUint64(&m.listCacheHits),
		ListCacheMisses: atomic.LoadUint64(&m.listCacheMisses),
	}
}

func (m *InMemoryRecorder) IncSnippetCreated()  { atomic.AddUint64(&m.snippetsCreated, 1) }
func (m *InMemoryRecorder) IncSnippetUpdated()  { atomic.AddUint64(&m.snippetsUpdated, 1) }
func (m *InMemoryRecorder) IncSnippetDeleted()  { atomic.AddUint64(&m.snippetsDeleted, 1) }
func (m *InMemoryRecorder) IncOwnershipDenied() { atomic.AddUint64(&m.ownershipDenied, 1) }
func (m *InMemoryRecorder) IncListCacheHit()    { atomic.AddUint64(&m.listCacheHits, 1) }
func (m *InMemoryRecorder) IncListCacheMiss()   { atomic.AddUint64(&m.listCacheMisses, 1) }
