package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/editor"
)

// PublicHandler 提供无需登录的分享页数据。
type PublicHandler struct {
	editor  *editor.Service
	resumes *ResumeHandler
}

func NewPublicHandler(svc *editor.Service, resumes *ResumeHandler) *PublicHandler {
	return &PublicHandler{editor: svc, resumes: resumes}
}

// GetShared 返回分享简历的只读数据。
func (h *PublicHandler) GetShared(c *gin.Context) {
	detail, err := h.editor.PublicDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeEditorError(c, err, "load shared resume")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetSharedHTML 按简历当前模板渲染只读 HTML。
func (h *PublicHandler) GetSharedHTML(c *gin.Context) {
	detail, err := h.editor.PublicDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeEditorError(c, err, "load shared resume")
		return
	}
	c.Header("Cache-Control", "no-store")
	h.resumes.writeHTML(c, detail, detail.TemplateName)
}
