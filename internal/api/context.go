package api

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/api/middleware"
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, v > 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

// idParam 解析路径中的正整数 ID。
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// requireUser 读取当前用户，失败时已写入 401。
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
	}
	return userID, ok
}

// requireResume 读取当前用户与路径中的简历 ID，失败时已写入响应。
func requireResume(c *gin.Context) (userID, resumeID uint, ok bool) {
	if userID, ok = requireUser(c); !ok {
		return 0, 0, false
	}
	if resumeID, ok = idParam(c, "id"); !ok {
		BadRequest(c, "invalid resume id")
		return 0, 0, false
	}
	return userID, resumeID, true
}

func requestLogger(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContext(c)
}
