package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/editor"
)

// StyleHandler 负责简历级全局样式。
type StyleHandler struct {
	editor *editor.Service
}

func NewStyleHandler(svc *editor.Service) *StyleHandler {
	return &StyleHandler{editor: svc}
}

type styleRequest struct {
	PrimaryColor string `json:"primary_color" binding:"required,hexcolor"`
	FontFamily   string `json:"font_family" binding:"required,max=64"`
	FontSize     int    `json:"font_size" binding:"required,min=6,max=32"`
}

type stylePatchRequest struct {
	PrimaryColor *string `json:"primary_color" binding:"omitempty,hexcolor"`
	FontFamily   *string `json:"font_family" binding:"omitempty,min=1,max=64"`
	FontSize     *int    `json:"font_size" binding:"omitempty,min=6,max=32"`
}

func (h *StyleHandler) GetStyle(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	style, err := h.editor.Style(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load style")
		return
	}
	c.JSON(http.StatusOK, style)
}

// ReplaceStyle 处理 PUT，三个字段都必须提供。
func (h *StyleHandler) ReplaceStyle(c *gin.Context) {
	var req styleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.update(c, editor.StylePatch{
		PrimaryColor: &req.PrimaryColor,
		FontFamily:   &req.FontFamily,
		FontSize:     &req.FontSize,
	})
}

func (h *StyleHandler) PatchStyle(c *gin.Context) {
	var req stylePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.update(c, editor.StylePatch{
		PrimaryColor: req.PrimaryColor,
		FontFamily:   req.FontFamily,
		FontSize:     req.FontSize,
	})
}

func (h *StyleHandler) update(c *gin.Context, patch editor.StylePatch) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	style, err := h.editor.UpdateStyle(c.Request.Context(), userID, resumeID, patch)
	if err != nil {
		writeEditorError(c, err, "update style")
		return
	}
	c.JSON(http.StatusOK, style)
}
