package middleware

import (
	"net/http"

	"wikihub/internal/models"
	"wikihub/internal/reqctx"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"
)

func OnlyRole(role string) func(http.Handler) http.Handler {
	return AnyRole(role)
}

func AnyRole(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{})
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// фастлейн для админа
			if SkipGuards(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			userRole, ok := reqctx.GetRole(r.Context())
			if !ok {
				helpers.FromError(w, services.ErrTokenRequired)
				return
			}
			if _, found := roleSet[userRole]; !found {
				if _, adminOnly := roleSet[models.RoleAdmin]; adminOnly && len(roleSet) == 1 {
					helpers.FromError(w, services.ErrAdminOnly)
					return
				}
				helpers.ErrorCode(w, http.StatusForbidden, "ROLE_REQUIRED", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
