package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/domain"
)

type contextKey string

const contextKeyUser contextKey = "user"

// TokenValidator verifies a session token. Satisfied by *auth.TokenIssuer.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserLoader resolves the user named by a verified token.
// Satisfied by *service.UserService.
type UserLoader interface {
	GetAuthenticated(ctx context.Context, email string) (domain.User, error)
}

// Authenticate requires a valid Bearer session token and stores the matching
// user in the request context. Requests without one get 401; a failure to
// load the user gets 500.
func Authenticate(tokens TokenValidator, users UserLoader, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			user, err := users.GetAuthenticated(r.Context(), claims.Email)
			if errors.Is(err, domain.ErrNotFound) {
				log.WarnContext(r.Context(), "token for unknown user", "sub", claims.Subject, "err", err)
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			if err != nil {
				log.ErrorContext(r.Context(), "load authenticated user", "sub", claims.Subject, "err", err)
				writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, u)
}

// UserFromContext returns the user stored by Authenticate.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(contextKeyUser).(domain.User)
	return u, ok
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
