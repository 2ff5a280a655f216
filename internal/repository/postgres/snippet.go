package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"
	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

var _ repository.SnippetRepository = (*Repository)(nil)

const snippetColumns = `id, title, content, language, user_id, created_at, updated_at`

func scanSnippet(row pgx.Row, s *model.Snippet) error {
	return row.Scan(&s.ID, &s.Title, &s.Content, &s.Language, &s.UserID, &s.CreatedAt, &s.UpdatedAt)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Create inserts a new snippet.
func (r *Repository) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	ts := now()
	snippet.CreatedAt = ts
	snippet.UpdatedAt = ts
	snippet.Language = emptyToNil(snippet.Language)

	query := `
		INSERT INTO snippets (id, title, content, language, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		snippet.ID,
		snippet.Title,
		snippet.Content,
		snippet.Language,
		snippet.UserID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return apperror.StoreFailed("create snippet", err)
	}
	return nil
}

// GetOwner reads the owner column of one snippet.
func (r *Repository) GetOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM snippets WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NotFound("snippet", id)
		}
		return "", apperror.StoreFailed("read snippet owner", err)
	}
	return owner, nil
}

// ListByOwner returns the owner's snippets, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	query := `
		SELECT ` + snippetColumns + `
		FROM snippets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.StoreFailed("list snippets", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0)
	for rows.Next() {
		var s model.Snippet
		if err := scanSnippet(rows, &s); err != nil {
			return nil, apperror.StoreFailed("scan snippet", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.StoreFailed("iterate snippets", err)
	}
	return snippets, nil
}

// UpdateOwned updates the row matching id and owner in one statement and
// returns the stored row.
func (r *Repository) UpdateOwned(ctx context.Context, snippet *model.Snippet) error {
	query := `
		UPDATE snippets
		SET title = $1, content = $2, language = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING ` + snippetColumns

	err := scanSnippet(r.pool.QueryRow(ctx, query,
		snippet.Title,
		snippet.Content,
		emptyToNil(snippet.Language),
		now(),
		snippet.ID,
		snippet.UserID,
	), snippet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("snippet", snippet.ID)
		}
		return apperror.StoreFailed("update snippet", err)
	}
	return nil
}

// DeleteOwned removes the row matching id and owner.
func (r *Repository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM snippets WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return apperror.StoreFailed("delete snippet", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}
