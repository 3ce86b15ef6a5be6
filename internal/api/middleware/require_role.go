package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/utils"
)

// RequireRole allows the request through only for the given application
// roles. It must run after LoadProfile.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	allow := map[models.Role]struct{}{}
	for _, a := range allowed {
		allow[a] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get("role")
		role, _ := v.(models.Role)

		if !ok || role == "" {
			abort(c, utils.CodeForbidden, "forbidden")
			return
		}
		if _, ok := allow[role]; !ok {
			abort(c, utils.CodeForbidden, "forbidden")
			return
		}

		c.Next()
	}
}

// RequireRoleSelected blocks everything but the role endpoints until the
// user has picked a role. Admins are assigned out of band and skip it.
func RequireRoleSelected() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("profile")
		p, _ := v.(*models.UserProfile)
		if p == nil {
			abort(c, utils.CodeUnauthorized, "unauthorized")
			return
		}
		if p.Role != models.RoleAdmin && !p.RoleSelectionCompleted {
			abort(c, utils.CodePrecondition, "select a role first")
			return
		}
		c.Next()
	}
}
