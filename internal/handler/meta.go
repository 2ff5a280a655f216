package handler

import (
	"net/http"

	"github.com/sakif/snippy/internal/language"
	"github.com/sakif/snippy/internal/metrics"
)

// MetaHandler serves read-only reference data: the language table and the
// in-process counters.
type MetaHandler struct {
	counters metrics.Snapshotter // nil hides /metrics
}

func NewMetaHandler(counters metrics.Snapshotter) *MetaHandler {
	return &MetaHandler{counters: counters}
}

// HandleLanguages returns the selectable languages and the preselected one.
//
// HTTP: GET /api/languages
func (h *MetaHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   language.Default().Value,
		"languages": language.All(),
	})
}

// HandleMetrics returns a snapshot of the action counters.
//
// HTTP: GET /metrics
func (h *MetaHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.counters == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.counters.Snapshot())
}
