package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"
	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

var _ repository.UserRepository = (*Users)(nil)

// Users is the user store. Obtain one with Repository.Users.
type Users struct {
	pool *pgxpool.Pool
}

const userColumns = `id, COALESCE(email, ''), password_hash, github_id, login, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GitHubID, &u.Login, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nullableEmail maps "" to SQL NULL so accounts without an email do not
// collide on the unique index.
func nullableEmail(email string) *string {
	if email == "" {
		return nil
	}
	return &email
}

// Create inserts a password account.
func (u *Users) Create(ctx context.Context, user *model.User) error {
	ts := now()
	user.ID = xid.New().String()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = ts
	user.UpdatedAt = ts

	query := `
		INSERT INTO users (id, email, password_hash, login, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := u.pool.Exec(ctx, query,
		user.ID, nullableEmail(user.Email), user.PasswordHash, user.Login, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return apperror.StoreFailed("create user", err)
	}
	return nil
}

// GetUserByID retrieves a user by internal ID.
func (u *Users) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(u.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.StoreFailed("get user", err)
	}
	return user, nil
}

// GetByEmail looks an account up by its case-folded email.
func (u *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	user, err := scanUser(u.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, apperror.StoreFailed("get user by email", err)
	}
	return user, nil
}

// UpsertGitHub relies on ON CONFLICT so concurrent first sign-ins of the
// same GitHub account resolve to one row.
func (u *Users) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return apperror.ValidationFailed("github_id", "github id is required")
	}

	ts := now()
	query := `
		INSERT INTO users (id, email, github_id, login, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (github_id) DO UPDATE
		SET login = EXCLUDED.login, avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns

	stored, err := scanUser(u.pool.QueryRow(ctx, query,
		xid.New().String(),
		nullableEmail(normalizeEmail(user.Email)),
		*user.GitHubID,
		user.Login,
		user.AvatarURL,
		ts,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return apperror.StoreFailed("upsert github user", err)
	}
	*user = *stored
	return nil
}
