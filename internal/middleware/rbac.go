package middleware

import "net/http"

// RequireAuthority returns middleware that lets the request through only if
// the authenticated user holds one of the named authorities. It must be
// chained after Authenticate.
//
// Returns 401 when no user is in context and 403 when the user lacks every
// named authority.
func RequireAuthority(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			for _, name := range names {
				if user.HasAuthority(name) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, r, http.StatusForbidden, "forbidden", "insufficient permissions")
		})
	}
}
