// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
type Recorder interface {
	// Snippet mutations
	IncSnippetCreated()
	IncSnippetUpdated()
	IncSnippetDeleted()

	// Rejected mutations: the snippet exists but belongs to someone else.
	IncOwnershipDenied()

	// List cache
	IncListCacheHit()
	IncListCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
