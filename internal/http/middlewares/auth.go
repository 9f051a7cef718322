package middlewares

import (
	"context"
	"net/http"
	"strings"

	httperrors "github.com/flizi/authcenter/internal/http/errors"
	"github.com/flizi/authcenter/internal/security/token"
)

type userIDKey struct{}

// RequireSession rejects requests without a valid gateway session token in
// the Authorization header and exposes the user id on the context.
func RequireSession(signer *token.Signer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(raw, "Bearer ") {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			userID, err := signer.ParseSession(strings.TrimPrefix(raw, "Bearer "))
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom returns the authenticated user id from the context, or "".
func UserIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}
