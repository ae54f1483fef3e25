package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationIDHeader 贯穿 API、任务与 WebSocket 通知。
const CorrelationIDHeader = "X-Correlation-ID"

const correlationIDKey = "correlationID"

// maxCorrelationIDLength 限制客户端传入的 ID 长度，超出则重新生成。
const maxCorrelationIDLength = 128

// CorrelationIDMiddleware 确保每个请求都带有 Correlation ID。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" || len(id) > maxCorrelationIDLength {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}
