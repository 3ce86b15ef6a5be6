package middleware

import (
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/talentpool/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func abort(c *gin.Context, code utils.Code, msg string) {
	c.AbortWithStatusJSON(utils.HTTPStatus(utils.E(code, "", msg, nil)), apiError{Code: code, Message: msg})
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	// "authenticated" / "anon"; the application role lives in user_profiles
	Role string `json:"role"`
}

// JWTAuth verifies the identity provider's HS256 bearer token and sets
// user_id (the token subject) and email on the context.
func JWTAuth() gin.HandlerFunc {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	issuer := os.Getenv("SUPABASE_JWT_ISSUER")     // optional
	audience := os.Getenv("SUPABASE_JWT_AUDIENCE") // optional

	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		auth := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
			abort(c, utils.CodeUnauthorized, "missing bearer token")
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			abort(c, utils.CodeUnauthorized, "invalid token")
			return
		}

		if issuer != "" && claims.Issuer != issuer {
			abort(c, utils.CodeUnauthorized, "invalid token issuer")
			return
		}
		if audience != "" && !slices.Contains(claims.Audience, audience) {
			abort(c, utils.CodeUnauthorized, "invalid token audience")
			return
		}

		if claims.Subject == "" {
			abort(c, utils.CodeUnauthorized, "missing subject")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("email", claims.Email)
		c.Next()
	}
}
