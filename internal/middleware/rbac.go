package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// RequireRoles enforces role-based access control for routes. A super admin
// passes every check via the role set short-circuit, so allowed lists never
// name SUPER_ADMIN explicitly.
func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !claims.Roles.HasAny(allowed...) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role for this operation"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin gates routes reserved for super admins, such as program
// deletion and module deletion.
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRoles()
}
