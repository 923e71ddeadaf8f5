package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

// RequireRole allows the request through only when the authenticated
// user holds one of roles. It must run after JWTAuth.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.UserRole(GetRole(c.Request.Context()))
		if role == "" {
			Fail(c, apperrors.Unauthorized(apperrors.CodeTokenMissing, "Not authenticated"))
			return
		}
		if !RoleAllowed(role, roles...) {
			Fail(c, apperrors.Forbidden(apperrors.CodeForbidden, "Insufficient permissions").
				WithParams(map[string]interface{}{"role": string(role)}))
			return
		}
		c.Next()
	}
}

// RoleAllowed reports whether role is one of allowed.
func RoleAllowed(role domain.UserRole, allowed ...domain.UserRole) bool {
	return slices.Contains(allowed, role)
}
