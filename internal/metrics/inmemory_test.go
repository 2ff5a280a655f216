package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_ConcurrentIncrements(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncSnippetCreated()
			m.IncListCacheMiss()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.SnippetsCreated != 50 || snap.ListCacheMisses != 50 {
		t.Errorf("Snapshot() = %+v, want 50 creates and 50 misses", snap)
	}
	if snap.SnippetsDeleted != 0 {
		t.Errorf("SnippetsDeleted = %d, want 0", snap.SnippetsDeleted)
	}
}

func TestNoopSatisfiesRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncSnippetUpdated()
	r.IncOwnershipDenied()
}
