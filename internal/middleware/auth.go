package middleware

import (
	"net/http"

	"github.com/arjun/wishhub/internal/auth"
)

// RequireAuth validates the credential cookie, loads the corresponding
// user record, and injects it into the request context. A missing cookie
// and a token pointing at a deleted user are deliberately the same error
// class: the caller is anonymous either way.
func RequireAuth(tokens *auth.TokenManager, users auth.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.TokenCookie)
			if err != nil {
				http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				http.Error(w, `{"message":"Invalid token"}`, http.StatusUnauthorized)
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
