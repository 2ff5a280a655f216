// Package repository declares the storage contracts the services depend on.
// Implementations live in the sqlite and postgres sub-packages and are
// chosen at start-up from the configured DATABASE_URL.
package repository

import (
	"context"

	"github.com/sakif/snippy/internal/model"
)

// SnippetRepository is the row store for snippets.
//
// Every mutating method is scoped to an owner: the WHERE clause carries both
// the snippet id and the owner id, so a row that changed hands or vanished
// after an ownership check is never touched. Zero affected rows is reported
// as apperror.ErrNotFound. Driver failures are wrapped with
// apperror.StoreFailed.
type SnippetRepository interface {
	// Create assigns ID and timestamps, then inserts the row.
	Create(ctx context.Context, snippet *model.Snippet) error

	// GetOwner reads only the owner column of one snippet.
	GetOwner(ctx context.Context, id string) (string, error)

	// ListByOwner returns the owner's snippets, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error)

	// UpdateOwned rewrites title, content and language of the row matching
	// snippet.ID and snippet.UserID, refreshes updated_at and fills the
	// remaining fields of snippet from the stored row.
	UpdateOwned(ctx context.Context, snippet *model.Snippet) error

	// DeleteOwned removes the row matching id and ownerID.
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts a password account. A taken email is apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error

	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHub inserts or refreshes the account linked to user.GitHubID
	// and fills user.ID and timestamps from the stored row.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
