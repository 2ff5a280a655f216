// Package client is the session side of snippy: an HTTP client for the
// action layer plus the per-session list cache, search box and form
// controller built on top of it.
//
//	FormController ─┐
//	SearchBox ──────┼─→ ListState ─→ Actions (Client over HTTP)
//	                └──────────────→ Actions
//
// Nothing here is global. Each signed-in session builds its own Client,
// ListState and FormController.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/language"
	"github.com/sakif/snippy/internal/model"
)

// Actions is the snippet action layer as seen from a session. The caller's
// identity travels with the transport (the bearer token), not the call.
type Actions interface {
	Create(ctx context.Context, input model.SnippetInput) (*model.Snippet, error)
	Update(ctx context.Context, id string, input model.SnippetInput) (*model.Snippet, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Snippet, error)
}

// Session is what sign-in and sign-up return.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Client talks to the snippy JSON API with a bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SignUp registers an email/password account and keeps its token.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// SignIn signs an existing account in and keeps its token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// SignOut tells the server to drop the cookie and forgets the token. The
// token is forgotten even when the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Languages returns the server's language table and the default value.
func (c *Client) Languages(ctx context.Context) ([]language.Language, string, error) {
	var res struct {
		Default   string              `json:"default"`
		Languages []language.Language `json:"languages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/languages", nil, &res); err != nil {
		return nil, "", err
	}
	return res.Languages, res.Default, nil
}

func (c *Client) Create(ctx context.Context, input model.SnippetInput) (*model.Snippet, error) {
	var s model.Snippet
	if err := c.do(ctx, http.MethodPost, "/api/snippets", input, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Update(ctx context.Context, id string, input model.SnippetInput) (*model.Snippet, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	var s model.Snippet
	if err := c.do(ctx, http.MethodPut, "/api/snippets/"+url.PathEscape(id), input, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}
	return c.do(ctx, http.MethodDelete, "/api/snippets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) List(ctx context.Context) ([]model.Snippet, error) {
	var snippets []model.Snippet
	if err := c.do(ctx, http.MethodGet, "/api/snippets", nil, &snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// do sends one JSON request. A nil in is sent without a body; a nil out
// discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

var sentinels = map[string]error{
	"validation_error": apperror.ErrValidation,
	"unauthenticated":  apperror.ErrUnauthenticated,
	"forbidden":        apperror.ErrForbidden,
	"not_found":        apperror.ErrNotFound,
	"conflict":         apperror.ErrConflict,
	"store_error":      apperror.ErrStore,
}

// decodeError turns an API error body back into an *apperror.AppError so
// callers can use errors.Is exactly as on the server.
func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return fmt.Errorf("client: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	sentinel, ok := sentinels[body.Error]
	if !ok {
		return fmt.Errorf("client: %s (status %d): %s", body.Error, resp.StatusCode, body.Message)
	}
	return &apperror.AppError{Err: sentinel, Message: body.Message, Field: body.Field}
}

// IsAuthError reports whether err means the session is missing or expired.
func IsAuthError(err error) bool {
	return errors.Is(err, apperror.ErrUnauthenticated)
}
