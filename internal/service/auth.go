package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/auth"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository"
)

// AuthService signs users up and in and turns accounts into session tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                               ↘ TokenService, PasswordService
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Credentials is the email/password pair of sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) validate() (string, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "invalid email address")
	}
	if err := auth.CheckPassword(c.Password); err != nil {
		return "", err
	}
	return email, nil
}

var errBadCredentials = apperror.Unauthenticated("invalid email or password")

// SignUp creates a password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) (*AuthResult, error) {
	email, err := creds.validate()
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user signed up", slog.String("user_id", user.ID))
	return s.issue(user)
}

// SignIn checks the password of an existing account. Unknown emails and
// wrong passwords fail the same way.
func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, errBadCredentials
	}
	if err := s.passwords.Verify(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("sign-in rejected", slog.String("user_id", user.ID))
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user signed in", slog.String("user_id", user.ID))
	return s.issue(user)
}

// LoginOrRegisterGitHub upserts the account linked to a GitHub profile and
// signs it in.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	ghID := ghUser.ID
	user := &model.User{
		GitHubID:  &ghID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("user_id", user.ID),
		slog.String("login", user.Login),
	)
	return s.issue(user)
}

// CurrentUser returns the account behind caller.
func (s *AuthService) CurrentUser(ctx context.Context, caller model.Identity) (*model.User, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// The token outlived its account.
			return nil, apperror.Unauthenticated("account no longer exists")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", caller.ID, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
