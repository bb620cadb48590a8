package middleware

import (
	"log/slog"
	"net/http"

	"github.com/financeops/finance-management/internal/auth"
	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// RequireMinRole gates a route on the role hierarchy: the authenticated
// user's rank must be at least the given role's rank.
func RequireMinRole(min coreuser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.Role.AtLeast(min) {
				slog.Warn("access denied: insufficient role",
					"user_id", user.ID,
					"user_role", string(user.Role),
					"required_role", string(min))
				http.Error(w, "Forbidden: not enough permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
