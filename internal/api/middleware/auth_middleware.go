package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/auth"
)

// 上下文键，与 api 包的读取函数保持一致。
const (
	UserIDKey             = "userID"
	MustChangePasswordKey = "mustChangePassword"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验 Bearer 访问令牌，并将 userID 与改密标记注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateTokenOfType(rawToken, auth.TokenTypeAccess)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(MustChangePasswordKey, claims.MustChangePassword)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}
