package middleware

import (
	"log/slog"
	"net/http"

	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/rbac"
)

// RequirePermission gates a route on the caller's role holding the permission
// (or the wildcard). Enforcement is the rbac set-membership check, nothing
// fancier.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !rbac.HasPermission(user.Role, permission) {
				slog.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"role", user.Role,
					"required_permission", permission)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMinLevel gates a route on role authority level, for routes where the
// check is hierarchical rather than permission-based.
func RequireMinLevel(level int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role, ok := rbac.GetRole(user.Role)
			if !ok || role.Level < level {
				slog.Warn("access denied: role level too low",
					"user_id", user.ID,
					"role", user.Role,
					"required_level", level)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
