package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, title, content, language, user_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner, s *model.Snippet) error {
	var lang sql.NullString
	if err := row.Scan(&s.ID, &s.Title, &s.Content, &lang, &s.UserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.Language = nil
	if lang.Valid {
		s.Language = &lang.String
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new snippet. ID and both timestamps are assigned here, so
// CreatedAt equals UpdatedAt on a fresh row.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, content, language, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Content,
		nullString(snippet.Language),
		snippet.UserID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return apperror.StoreFailed("create snippet", err)
	}
	return nil
}

// GetOwner returns the user_id of one snippet.
func (db *DB) GetOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM snippets WHERE id = ?`, id,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("snippet", id)
		}
		return "", apperror.StoreFailed("read snippet owner", err)
	}
	return owner, nil
}

// ListByOwner returns every snippet of ownerID, newest first. An owner with
// no snippets gets an empty, non-nil slice.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
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

// UpdateOwned rewrites the editable columns of the row owned by
// snippet.UserID and reads it back inside the same transaction.
func (db *DB) UpdateOwned(ctx context.Context, snippet *model.Snippet) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.StoreFailed("begin update", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, content = ?, language = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		snippet.Title,
		snippet.Content,
		nullString(snippet.Language),
		time.Now().UTC(),
		snippet.ID,
		snippet.UserID,
	)
	if err != nil {
		return apperror.StoreFailed("update snippet", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.StoreFailed("update snippet", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, snippet.ID)
	if err := scanSnippet(row, snippet); err != nil {
		return apperror.StoreFailed("read updated snippet", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.StoreFailed("commit update", err)
	}
	return nil
}

// DeleteOwned removes the row matching both id and ownerID.
func (db *DB) DeleteOwned(ctx context.Context, id, ownerID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return apperror.StoreFailed("delete snippet", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.StoreFailed("delete snippet", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}
