package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/editor"
)

// SectionHandler 负责区块的增删改查与重排。
type SectionHandler struct {
	editor *editor.Service
}

func NewSectionHandler(svc *editor.Service) *SectionHandler {
	return &SectionHandler{editor: svc}
}

type sectionRequest struct {
	Type    string          `json:"type" binding:"required,section_type"`
	Content json.RawMessage `json:"content"`
	Order   *int            `json:"order"`
}

type sectionPatchRequest struct {
	Type    *string         `json:"type" binding:"omitempty,section_type"`
	Content json.RawMessage `json:"content"`
	Order   *int            `json:"order"`
}

type reorderRequest struct {
	SectionIDs []uint `json:"section_ids" binding:"required,min=1"`
}

// ListSections 返回简历的区块，按 order 升序。
func (h *SectionHandler) ListSections(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	sections, err := h.editor.Sections(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "list sections")
		return
	}
	c.JSON(http.StatusOK, sections)
}

// AddSection 新增一个区块；content 缺省时使用该类型的默认内容。
func (h *SectionHandler) AddSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	section, err := h.editor.AddSection(c.Request.Context(), userID, resumeID, editor.NewSection{
		Type:    req.Type,
		Content: req.Content,
		Order:   req.Order,
	})
	if err != nil {
		writeEditorError(c, err, "add section")
		return
	}
	c.JSON(http.StatusCreated, section)
}

// Reorder 按给定顺序重写区块 order；单个区块失败不影响其他区块，部分失败返回 207。
func (h *SectionHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	result, err := h.editor.Reorder(c.Request.Context(), userID, resumeID, req.SectionIDs)
	if err != nil {
		writeEditorError(c, err, "reorder sections")
		return
	}
	writeBatchResult(c, result)
}

// GetSection 返回单个区块。
func (h *SectionHandler) GetSection(c *gin.Context) {
	userID, sectionID, ok := h.requireSection(c)
	if !ok {
		return
	}
	section, _, err := h.editor.Section(c.Request.Context(), userID, sectionID)
	if err != nil {
		writeEditorError(c, err, "load section")
		return
	}
	c.JSON(http.StatusOK, section)
}

// ReplaceSection 处理 PUT：类型与内容整体替换。
func (h *SectionHandler) ReplaceSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if len(req.Content) == 0 {
		BadRequest(c, "content is required")
		return
	}
	h.updateSection(c, editor.SectionPatch{Type: &req.Type, Content: req.Content, Order: req.Order})
}

// PatchSection 处理 PATCH：只修改提供的字段。
func (h *SectionHandler) PatchSection(c *gin.Context) {
	var req sectionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.updateSection(c, editor.SectionPatch{Type: req.Type, Content: req.Content, Order: req.Order})
}

func (h *SectionHandler) updateSection(c *gin.Context, patch editor.SectionPatch) {
	userID, sectionID, ok := h.requireSection(c)
	if !ok {
		return
	}
	section, err := h.editor.UpdateSection(c.Request.Context(), userID, sectionID, patch)
	if err != nil {
		writeEditorError(c, err, "update section")
		return
	}
	c.JSON(http.StatusOK, section)
}

// DeleteSection 删除区块。
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	userID, sectionID, ok := h.requireSection(c)
	if !ok {
		return
	}
	if err := h.editor.DeleteSection(c.Request.Context(), userID, sectionID); err != nil {
		writeEditorError(c, err, "delete section")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SectionHandler) requireSection(c *gin.Context) (userID, sectionID uint, ok bool) {
	if userID, ok = requireUser(c); !ok {
		return 0, 0, false
	}
	if sectionID, ok = idParam(c, "id"); !ok {
		BadRequest(c, "invalid section id")
		return 0, 0, false
	}
	return userID, sectionID, true
}

// writeBatchResult 全部成功返回 200，存在失败单元时返回 207 并附带逐项结果。
func writeBatchResult(c *gin.Context, result editor.BatchResult) {
	if result.Succeeded == nil {
		result.Succeeded = []uint{}
	}
	if result.Failed == nil {
		result.Failed = []editor.UnitError{}
	}
	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
		requestLogger(c).Warn("batch completed with failures",
			slog.Int("succeeded", len(result.Succeeded)),
			slog.Int("failed", len(result.Failed)),
		)
	}
	c.JSON(status, result)
}
