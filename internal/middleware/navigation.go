package middleware

import (
	"net/http"
	"net/url"

	"github.com/sakif/snippy/internal/auth"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/auth/login"

// RequireSession guards HTML pages. Without an identity in the context the
// browser is redirected to the login page with the requested path and query
// in ?redirect= so login can send it back. Mount after auth.OptionalAuth.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		target := LoginPath
		if back := r.URL.RequestURI(); back != "/" {
			target += "?" + url.Values{"redirect": {back}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// RedirectSignedIn sends callers that already have a session away from the
// login and register pages.
func RedirectSignedIn(home string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.IdentityFromContext(r.Context()); ok {
				http.Redirect(w, r, home, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
