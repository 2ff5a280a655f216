package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/auth"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/service"
)

const stateCookieName = "oauth_state"

// AuthActions is the part of service.AuthService the handlers use.
type AuthActions interface {
	SignUp(ctx context.Context, creds service.Credentials) (*service.AuthResult, error)
	SignIn(ctx context.Context, creds service.Credentials) (*service.AuthResult, error)
	LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*service.AuthResult, error)
	CurrentUser(ctx context.Context, caller model.Identity) (*model.User, error)
}

// AuthHandler manages sign-up, sign-in, sign-out and the optional GitHub
// OAuth flow.
//
// TWO KINDS OF CALLER:
// Register and login accept either a JSON body (API clients, the CLI) or an
// HTML form post (the login/register pages). JSON callers get the user and
// token back; form callers get the cookie and a redirect.
//
// THE SESSION COOKIE:
//
//	name     "token" (auth.CookieName)
//	HttpOnly true, so page scripts cannot read it
//	Secure   outside development
//	SameSite Lax
//	MaxAge   the token TTL
//
// OAUTH STATE:
// The GitHub flow stores a random state in a short-lived cookie and rejects
// a callback whose state does not match it.
type AuthHandler struct {
	accounts     AuthActions
	tokens       *auth.TokenService
	github       *auth.GitHubProvider // nil when GitHub login is not configured
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(
	accounts AuthActions,
	tokens *auth.TokenService,
	github *auth.GitHubProvider,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		tokens:       tokens,
		github:       github,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// GitHubEnabled reports whether the GitHub routes should be mounted.
func (h *AuthHandler) GitHubEnabled() bool {
	return h.github != nil
}

// HandleRegister creates a password account and signs it in.
//
// HTTP: POST /auth/register → 201 {"user": {...}, "token": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, "/auth/register", http.StatusCreated, h.accounts.SignUp)
}

// HandleLogin signs an existing password account in.
//
// HTTP: POST /auth/login → 200 {"user": {...}, "token": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, "/auth/login", http.StatusOK, h.accounts.SignIn)
}

func (h *AuthHandler) handleCredentials(
	w http.ResponseWriter,
	r *http.Request,
	page string,
	status int,
	action func(context.Context, service.Credentials) (*service.AuthResult, error),
) {
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, page, "", "invalid form")
			return
		}
		redirect := SafeRedirect(r.PostForm.Get("redirect"))
		res, err := action(r.Context(), service.Credentials{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
		})
		if err != nil {
			redirectWithError(w, r, page, redirect, apperror.Message(err))
			return
		}
		h.setSessionCookie(w, res.Token)
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	var creds service.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}
	res, err := action(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, res.Token)
	writeJSON(w, status, res)
}

// HandleLogout clears the session cookie. Tokens are stateless, so a copy
// held elsewhere stays valid until it expires.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if isFormPost(r) {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the signed-in user's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.CurrentUser(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
// The random state is kept in a short-lived cookie and checked on callback.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: check state, exchange the
// code, map the GitHub account to a user and issue the session cookie.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// single-use
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		redirectWithError(w, r, "/auth/login", "", "GitHub authorization was denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res, err := h.accounts.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: account mapping failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// SafeRedirect returns target if it is a local absolute path and "/"
// otherwise. "//host" and "/\host" are rejected since browsers treat them
// as protocol-relative URLs.
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return "/"
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func redirectWithError(w http.ResponseWriter, r *http.Request, page, redirect, msg string) {
	q := url.Values{}
	q.Set("error", msg)
	if redirect != "" && redirect != "/" {
		q.Set("redirect", redirect)
	}
	http.Redirect(w, r, page+"?"+q.Encode(), http.StatusSeeOther)
}
