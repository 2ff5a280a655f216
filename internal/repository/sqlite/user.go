package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the user store. Obtain one with DB.Users.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, email, password_hash, github_id, login, avatar_url, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		email    sql.NullString
		githubID sql.NullInt64
	)
	if err := row.Scan(&u.ID, &email, &u.PasswordHash, &githubID, &u.Login, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	if githubID.Valid {
		id := githubID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

func nullEmail(email string) sql.NullString {
	email = strings.ToLower(strings.TrimSpace(email))
	return sql.NullString{String: email, Valid: email != ""}
}

// Create inserts a password account.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, login, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		nullEmail(user.Email),
		user.PasswordHash,
		user.Login,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
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
func (u *UserDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.StoreFailed("get user", err)
	}
	return user, nil
}

// GetByEmail looks an account up by its case-folded email.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := scanUser(u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, apperror.StoreFailed("get user by email", err)
	}
	return user, nil
}

// UpsertGitHub keeps the internal ID of an existing GitHub-linked account and
// refreshes its profile; otherwise it inserts a new account.
func (u *UserDB) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return apperror.ValidationFailed("github_id", "github id is required")
	}

	var existingID string
	err := u.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, *user.GitHubID,
	).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return apperror.StoreFailed("look up github user", err)
	}

	now := time.Now().UTC()
	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = now
		_, err = u.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Login, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return apperror.StoreFailed("update github user", err)
		}
	} else {
		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now
		_, err = u.conn.ExecContext(ctx,
			`INSERT INTO users (id, email, github_id, login, avatar_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user.ID,
			nullEmail(user.Email),
			*user.GitHubID,
			user.Login,
			user.AvatarURL,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("user", user.Email)
			}
			return apperror.StoreFailed("insert github user", err)
		}
	}

	stored, err := u.GetUserByID(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}
