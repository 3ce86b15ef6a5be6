package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/talentpool/internal/services"
	"github.com/yoockh/talentpool/internal/utils"
)

// LoadProfile resolves the caller's stored profile, creating the default
// one on first sight, and sets profile and role on the context.
func LoadProfile(svc services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			abort(c, utils.CodeUnauthorized, "unauthorized")
			return
		}

		p, err := svc.EnsureProfile(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(err)
			var ae *utils.AppError
			if errors.As(err, &ae) {
				c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{Code: ae.Code, Message: ae.Message})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{Code: utils.CodeInternal, Message: "failed to load profile"})
			return
		}

		c.Set("profile", p)
		c.Set("role", p.Role)
		c.Next()
	}
}
