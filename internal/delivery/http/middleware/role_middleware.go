package middleware

import (
	"net/http"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowed ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

func RequireMaster(next http.Handler) http.Handler {
	return RequireRole(entity.RoleMaster)(next)
}

func RequireUser(next http.Handler) http.Handler {
	return RequireRole(entity.RoleUser)(next)
}
