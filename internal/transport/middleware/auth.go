package middleware

import (
	"net/http"

	"github.com/financeops/finance-management/internal/auth"
	"github.com/financeops/finance-management/pkg/logger"
)

// UserContext tags the request-scoped logger with the authenticated
// identity. Mount after the auth middleware.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok || u == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", u.ID, "role", string(u.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
