package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// InternalSecretHeader 是运维端点（如 /metrics）使用的密钥头。
const InternalSecretHeader = "X-Internal-Secret"

// InternalSecretMiddleware 保护仅供内部抓取的端点。
func InternalSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(secret) == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "internal api secret is not configured"})
			return
		}
		// 密钥只走 Header，避免 query 泄露到日志。
		token := strings.TrimSpace(c.GetHeader(InternalSecretHeader))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
