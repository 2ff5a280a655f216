package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSnippetCreated()  {}
func (n *NoopRecorder) IncSnippetUpdated()  {}
func (n *NoopRecorder) IncSnippetDeleted()  {}
func (n *NoopRecorder) IncOwnershipDenied() {}
func (n *NoopRecorder) IncListCacheHit()    {}
func (n *NoopRecorder) IncListCacheMiss()   {}
