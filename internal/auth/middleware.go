package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/snippy/internal/model"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

type contextKey string

const identityKey contextKey = "identity"

// RequireAuth rejects requests without a valid session token with 401 and
// stores the caller's Identity in the request context otherwise.
//
// The token is read from the "token" cookie (browser sessions) or from an
// "Authorization: Bearer" header (the CLI client).
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFromRequest(r, tokens)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the Identity when a valid token is present and
// never blocks the request.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := identityFromRequest(r, tokens); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated caller, or the zero Identity
// and false for anonymous requests.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && !id.IsZero()
}

// TokenFromRequest returns the raw session token from the bearer header or
// the cookie, preferring the header.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func identityFromRequest(r *http.Request, tokens *TokenService) (model.Identity, bool) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return model.Identity{}, false
	}
	id, err := tokens.Validate(raw)
	if err != nil {
		return model.Identity{}, false
	}
	return id, true
}
