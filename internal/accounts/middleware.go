package accounts

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/snapgram/pkg/handlers"
)

// SessionCookie is the cookie that carries the session token for browser clients.
const SessionCookie = "snapgram_session"

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns the identity stored by Authenticate, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// Authenticate returns middleware that resolves the request's bearer token
// or session cookie to an identity and rejects the request with 401 when
// that fails.
func Authenticate(sys System, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "authenticate")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sys.Current(r.Context(), RequestToken(r))
			if err != nil {
				status := MapHTTPStatus(err)
				if status != http.StatusInternalServerError {
					err = ErrUnauthenticated
				}
				handlers.RespondError(w, logger, status, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequestToken extracts the token from the Authorization header, falling
// back to the session cookie.
func RequestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}

	return ""
}
