package api

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/editor"
)

// writeEditorError 把编辑服务的哨兵错误映射为 HTTP 响应，未知错误记日志后返回 500。
func writeEditorError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, editor.ErrNotFound):
		NotFound(c, "resume not found")
	case errors.Is(err, editor.ErrSectionNotFound):
		NotFound(c, "section not found")
	case errors.Is(err, editor.ErrInvalidSectionType):
		BadRequest(c, "invalid section type")
	case errors.Is(err, editor.ErrInvalidContent):
		BadRequest(c, "section content must be a JSON object")
	case errors.Is(err, editor.ErrNothingToUndo):
		Conflict(c, "nothing to undo")
	case errors.Is(err, editor.ErrNothingToRedo):
		Conflict(c, "nothing to redo")
	case errors.Is(err, editor.ErrResumeLimit):
		Forbidden(c, "resume limit reached")
	case errors.Is(err, editor.ErrPDFNotReady):
		Conflict(c, "pdf not ready")
	default:
		requestLogger(c).Error(action+" failed", slog.Any("error", err))
		Internal(c, "failed to "+action)
	}
}
