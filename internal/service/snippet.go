// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → authenticates, validates, enforces ownership
//	Repository (data layer)  → reads/writes rows
//
// Services know nothing about HTTP. The same SnippetService backs the JSON
// API, the HTML pages and (over HTTP) the snippy CLI.
//
// WHO IS CALLING?
// Every snippet operation receives the caller's model.Identity as an
// argument. There is no ambient session: a zero Identity is rejected with
// apperror.ErrUnauthenticated before anything else happens.
//
// THE MUTATION SEQUENCE:
//
//  1. requireIdentity      → 401 when nobody is signed in
//  2. input.Validate       → 400, the authoritative check
//  3. guard.AssertOwnership → 404 or 403, one owner-only read
//  4. repo.*Owned          → conditional write, 0 rows means 404
//  5. invalidate + metrics → the cached list moves to a new version
//
// DEPENDENCY INJECTION:
// SnippetService takes a repository.SnippetRepository and a ListCache
// (interfaces), not *sqlite.DB or *cache.Cache. Tests pass in-memory fakes
// (see snippet_test.go), and server.New picks sqlite or postgres.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/cache"
	"github.com/sakif/snippy/internal/metrics"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

// ListCache memoises each owner's snippet list. *cache.Cache implements it.
//
// Entries are versioned. GetList reports the version it looked at, also on
// a miss, and SetList stores under that version. InvalidateList moves the
// owner to a new version, so a list read from the store before a mutation
// can never be served after it.
type ListCache interface {
	GetList(ctx context.Context, ownerID string) ([]model.Snippet, uint64, error)
	SetList(ctx context.Context, ownerID string, version uint64, snippets []model.Snippet) error
	InvalidateList(ctx context.Context, ownerID string) error
}

// SnippetService is the snippet action layer: create, update, delete and
// list, each scoped to the calling identity.
//
// CACHING:
// List reads through the optional ListCache. Every successful mutation
// invalidates the owner's list; cache errors are logged and never fail the
// request.
type SnippetService struct {
	repo     repository.SnippetRepository
	guard    *OwnershipGuard
	cache    ListCache // nil disables list caching
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewSnippetService wires the service. listCache may be nil and recorder
// defaults to a no-op.
func NewSnippetService(
	repo repository.SnippetRepository,
	listCache ListCache,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *SnippetService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SnippetService{
		repo:     repo,
		guard:    NewOwnershipGuard(repo),
		cache:    listCache,
		recorder: recorder,
		logger:   logger,
	}
}

func requireIdentity(caller model.Identity) error {
	if caller.IsZero() {
		return apperror.Unauthenticated("you must be signed in")
	}
	return nil
}

// Create validates input and stores a new snippet owned by caller.
func (s *SnippetService) Create(ctx context.Context, caller model.Identity, input model.SnippetInput) (*model.Snippet, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input = input.Normalize()

	snippet := &model.Snippet{
		Title:    input.Title,
		Content:  input.Content,
		Language: input.Language,
		UserID:   caller.ID,
	}
	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("user_id", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.invalidate(ctx, caller.ID)
	s.recorder.IncSnippetCreated()
	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("user_id", caller.ID),
	)
	return snippet, nil
}

// Update rewrites a snippet the caller owns.
//
// The guard reports NotFound or Forbidden first; the write itself is
// conditional on (id, owner), so a row deleted in between yields NotFound.
func (s *SnippetService) Update(ctx context.Context, caller model.Identity, id string, input model.SnippetInput) (*model.Snippet, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input = input.Normalize()

	if err := s.guard.AssertOwnership(ctx, id, caller.ID); err != nil {
		s.denied(err, id, caller.ID)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	snippet := &model.Snippet{
		ID:       id,
		Title:    input.Title,
		Content:  input.Content,
		Language: input.Language,
		UserID:   caller.ID,
	}
	if err := s.repo.UpdateOwned(ctx, snippet); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to update snippet",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.invalidate(ctx, caller.ID)
	s.recorder.IncSnippetUpdated()
	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("user_id", caller.ID),
	)
	return snippet, nil
}

// Upsert creates when id is empty and updates otherwise.
func (s *SnippetService) Upsert(ctx context.Context, caller model.Identity, id string, input model.SnippetInput) (*model.Snippet, error) {
	if strings.TrimSpace(id) == "" {
		return s.Create(ctx, caller, input)
	}
	return s.Update(ctx, caller, id, input)
}

// Delete removes a snippet the caller owns. Deleting an already deleted
// snippet is ErrNotFound.
func (s *SnippetService) Delete(ctx context.Context, caller model.Identity, id string) error {
	if err := requireIdentity(caller); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	if err := s.guard.AssertOwnership(ctx, id, caller.ID); err != nil {
		s.denied(err, id, caller.ID)
		return fmt.Errorf("deleting snippet: %w", err)
	}

	if err := s.repo.DeleteOwned(ctx, id, caller.ID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to delete snippet",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.invalidate(ctx, caller.ID)
	s.recorder.IncSnippetDeleted()
	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("user_id", caller.ID),
	)
	return nil
}

// List returns the caller's snippets, newest first. A configured cache is
// consulted first; cache failures fall through to the store.
//
// The version is taken before the store read. If a mutation invalidates
// while the read is running, the fill below goes to the superseded version.
func (s *SnippetService) List(ctx context.Context, caller model.Identity) ([]model.Snippet, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}

	var (
		version uint64
		fill    bool
	)
	if s.cache != nil {
		snippets, v, err := s.cache.GetList(ctx, caller.ID)
		switch {
		case err == nil:
			s.recorder.IncListCacheHit()
			return snippets, nil
		case errors.Is(err, cache.ErrCacheMiss):
			version, fill = v, true
		default:
			s.logger.Warn("list cache read failed", slog.String("error", err.Error()))
		}
		s.recorder.IncListCacheMiss()
	}

	snippets, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("user_id", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	if fill {
		if err := s.cache.SetList(ctx, caller.ID, version, snippets); err != nil {
			s.logger.Warn("list cache write failed", slog.String("error", err.Error()))
		}
	}
	return snippets, nil
}

func (s *SnippetService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateList(ctx, ownerID); err != nil {
		s.logger.Warn("list cache invalidation failed",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *SnippetService) denied(err error, id, callerID string) {
	if errors.Is(err, apperror.ErrForbidden) {
		s.recorder.IncOwnershipDenied()
		s.logger.Warn("ownership check failed",
			slog.String("id", id),
			slog.String("user_id", callerID),
		)
	}
}
