package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/auth"
	"github.com/sakif/snippy/internal/model"
)

// SnippetActions is the part of service.SnippetService the handlers use.
type SnippetActions interface {
	Create(ctx context.Context, caller model.Identity, input model.SnippetInput) (*model.Snippet, error)
	Update(ctx context.Context, caller model.Identity, id string, input model.SnippetInput) (*model.Snippet, error)
	Delete(ctx context.Context, caller model.Identity, id string) error
	List(ctx context.Context, caller model.Identity) ([]model.Snippet, error)
}

// SnippetHandler exposes the snippet action layer as JSON.
//
// WHERE DOES THE CALLER COME FROM?
// auth.RequireAuth verifies the JWT (cookie or Bearer header) and stores the
// model.Identity on the request context. callerFrom reads it back and hands
// it to the service explicitly; handlers never compare owners themselves.
//
// STATUS CODES:
//
//	201 Created    → POST without id
//	200 OK         → list, update, POST with id
//	204 No Content → delete
//	4xx/5xx        → see StatusFor
type SnippetHandler struct {
	snippets SnippetActions
	logger   *slog.Logger
}

func NewSnippetHandler(snippets SnippetActions, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// upsertRequest is the POST body. A non-empty ID turns the create into an
// update of that snippet.
type upsertRequest struct {
	ID string `json:"id,omitempty"`
	model.SnippetInput
}

func callerFrom(r *http.Request) model.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

// HandleList returns the caller's snippets, newest first.
//
// HTTP: GET /api/snippets
//
// RESPONSE FORMAT:
//
//	[
//	  {"id":"abc","title":"hello","content":"print('hi')","language":"python",
//	   "user_id":"u1","created_at":"...","updated_at":"..."}
//	]
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.snippets.List(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleUpsert creates a snippet, or updates one when the body has an id.
//
// HTTP: POST /api/snippets
// BODY: {"title": "...", "content": "...", "language": "go"}
func (h *SnippetHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	caller := callerFrom(r)
	if req.ID != "" {
		snippet, err := h.snippets.Update(r.Context(), caller, req.ID, req.SnippetInput)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snippet)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), caller, req.SnippetInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleUpdate rewrites a snippet the caller owns.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input model.SnippetInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Update(r.Context(), callerFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet the caller owns.
//
// HTTP: DELETE /api/snippets/{id} → 204 No Content
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperror.ValidationFailed("id", "snippet ID is required"))
		return
	}

	if err := h.snippets.Delete(r.Context(), callerFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
