package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippy/internal/auth"
	"github.com/sakif/snippy/internal/handler"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/repository/sqlite"
	"github.com/sakif/snippy/internal/service"
)

type testEnv struct {
	db     *sqlite.DB
	tokens *auth.TokenService
	router chi.Router
	alice  string // bearer tokens
	bob    string
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	logger := quietLogger()
	svc := service.NewSnippetService(db, nil, nil, logger)
	h := handler.NewSnippetHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/snippets", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleUpsert)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})

	env := &testEnv{db: db, tokens: tokens, router: r}
	env.alice = env.signedInUser(t, "alice@example.com")
	env.bob = env.signedInUser(t, "bob@example.com")
	return env
}

func (e *testEnv) signedInUser(t *testing.T, email string) string {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, e.db.Users().Create(context.Background(), u))
	tok, err := e.tokens.Generate(u.Identity())
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeSnippet(t *testing.T, rr *httptest.ResponseRecorder) model.Snippet {
	t.Helper()
	var s model.Snippet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&s))
	return s
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var e handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
	return e
}

func TestSnippetHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/snippets", env.alice,
		`{"title":"  Hello  ","content":"fmt.Println(1)","language":"go"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	created := decodeSnippet(t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Hello", created.Title)
	require.NotNil(t, created.Language)
	assert.Equal(t, "go", *created.Language)

	rr = env.do(t, http.MethodGet, "/api/snippets", env.alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Snippet
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// bob sees nothing of alice's
	rr = env.do(t, http.MethodGet, "/api/snippets", env.bob, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSnippetHandler_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing title", `{"title":"","content":"x"}`, "title"},
		{"whitespace title", `{"title":"   ","content":"x"}`, "title"},
		{"missing content", `{"title":"t","content":""}`, "content"},
		{"malformed json", `{"title":`, ""},
		{"unknown field", `{"title":"t","content":"x","owner":"bob"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/snippets", env.alice, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			e := decodeError(t, rr)
			assert.Equal(t, "validation_error", e.Error)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestSnippetHandler_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/snippets", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/snippets", "not-a-token", `{"title":"t","content":"c"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSnippetHandler_UpdateOwnership(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/snippets", env.alice, `{"title":"t","content":"c"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeSnippet(t, rr).ID

	t.Run("non-owner is forbidden", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/snippets/"+id, env.bob, `{"title":"mine now","content":"c"}`)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "forbidden", decodeError(t, rr).Error)
	})

	t.Run("missing snippet", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/snippets/nope", env.alice, `{"title":"t","content":"c"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("owner updates", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/snippets/"+id, env.alice, `{"title":"renamed","content":"c2"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		s := decodeSnippet(t, rr)
		assert.Equal(t, "renamed", s.Title)
		assert.Nil(t, s.Language)
	})

	t.Run("upsert with id updates", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/snippets", env.alice,
			`{"id":"`+id+`","title":"via post","content":"c3"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, id, decodeSnippet(t, rr).ID)
	})
}

func TestSnippetHandler_Delete(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/snippets", env.alice, `{"title":"t","content":"c"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeSnippet(t, rr).ID

	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, env.bob, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, env.alice, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/api/snippets/"+id, env.alice, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
