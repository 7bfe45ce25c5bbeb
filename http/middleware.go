package http

import (
	"context"
	"net/http"
)

// TokenHeader is the request header carrying the opaque session token.
const TokenHeader = "X-Token"

type userIDKey struct{}

type tokenKey struct{}

// SessionResolver resolves a session token to a user identifier.
// A miss is ok=false; err reports cache failures only.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (userID string, ok bool, err error)
}

// SessionMiddleware enforces that the request carries a resolvable session
// token. On success the user identifier and token are stored on the request
// context; on a miss the request is rejected with 401 before reaching the
// handler.
func SessionMiddleware(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)

			userID, ok, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				HandleError(w, err)
				return
			}
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user identifier set by
// SessionMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok
}

// TokenFromContext returns the session token set by SessionMiddleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}
