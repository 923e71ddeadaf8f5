package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

func TestRoleAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role domain.UserRole
		want bool
	}{
		{"admin may delete", domain.RoleAdmin, true},
		{"supervisor may delete", domain.RoleSupervisor, true},
		{"operator may not delete", domain.RoleOperator, false},
		{"viewer may not delete", domain.RoleViewer, false},
		{"unknown role denied", domain.UserRole("guest"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, RoleAllowed(tc.role, domain.RoleAdmin, domain.RoleSupervisor))
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(), JWTAuth(testJWT))
	router.DELETE("/machines/:id", RequireRole(domain.RoleAdmin, domain.RoleSupervisor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	operator, _, err := GenerateToken(testJWT, "op", string(domain.RoleOperator))
	require.NoError(t, err)
	w := serve(router, http.MethodDelete, "/machines/DR-01", "", bearer(operator))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, decodeError(t, w).Code)

	supervisor, _, err := GenerateToken(testJWT, "boss", string(domain.RoleSupervisor))
	require.NoError(t, err)
	w = serve(router, http.MethodDelete, "/machines/DR-01", "", bearer(supervisor))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_WithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/x", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/x", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
