package session

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

type contextKey string

// usernameKey is the context key for the authenticated username.
const usernameKey = contextKey("username")

// UserChecker reports whether a username still names a registered user.
type UserChecker interface {
	UserExists(username string) (bool, error)
}

// Username returns the authenticated username stored by RequireUser.
func Username(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}

// RequireUser gates a route on an authenticated session. An anonymous
// request is redirected to the login page. A session naming a user the
// store no longer knows (a stale cookie after a restart wiped the memory
// store) is cleared and treated the same way.
func RequireUser(manager Manager, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := manager.CurrentUser(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			exists, err := users.UserExists(username)
			if err != nil {
				log.Error().Err(err).Str("username", username).Msg("Failed to check session user")
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if !exists {
				manager.Clear(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
