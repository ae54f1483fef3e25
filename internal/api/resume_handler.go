package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/database"
	"resumeforge/internal/editor"
	"resumeforge/internal/metrics"
	"resumeforge/internal/render"
	"resumeforge/internal/resume"
	"resumeforge/internal/storage"
)

// ResumeHandler 负责简历本身的增删改查、预览、撤销/重做与分享。
type ResumeHandler struct {
	editor       *editor.Service
	renderer     *render.Renderer
	storage      storage.ObjectStore
	publicOrigin string
}

// NewResumeHandler 构造 ResumeHandler；storage 为 nil 时删除简历不清理导出文件。
func NewResumeHandler(svc *editor.Service, renderer *render.Renderer, store storage.ObjectStore, publicOrigin string) *ResumeHandler {
	return &ResumeHandler{
		editor:       svc,
		renderer:     renderer,
		storage:      store,
		publicOrigin: publicOrigin,
	}
}

type resumeListItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	TemplateName string    `json:"template_name"`
	Shared       bool      `json:"shared"`
	PdfStatus    string    `json:"pdf_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type resumeDetailResponse struct {
	resume.Detail
	ShareSlug string       `json:"share_slug,omitempty"`
	ShareURL  string       `json:"share_url,omitempty"`
	PdfStatus string       `json:"pdf_status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	History   editor.State `json:"history"`
}

type createResumeRequest struct {
	Title        string `json:"title" binding:"max=255"`
	TemplateName string `json:"template_name" binding:"omitempty,template_name"`
}

type replaceResumeRequest struct {
	Title        string `json:"title" binding:"required,max=255"`
	TemplateName string `json:"template_name" binding:"required,template_name"`
}

type patchResumeRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	TemplateName *string `json:"template_name" binding:"omitempty,template_name"`
}

// ListResumes 按最近更新时间倒序列出用户简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	resumes, err := h.editor.ListResumes(c.Request.Context(), userID)
	if err != nil {
		writeEditorError(c, err, "list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(resumes))
	for _, r := range resumes {
		items = append(items, newResumeListItem(r))
	}
	c.JSON(http.StatusOK, items)
}

// CreateResume 新建简历，同时写入默认样式。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	detail, err := h.editor.CreateResume(c.Request.Context(), userID, editor.CreateResumeInput{
		Title:        req.Title,
		TemplateName: canonicalTemplate(req.TemplateName),
	})
	if err != nil {
		writeEditorError(c, err, "create resume")
		return
	}

	requestLogger(c).Info("resume created", slog.Uint64("resume_id", uint64(detail.ID)))
	h.respondDetail(c, http.StatusCreated, userID, detail.ID)
}

// GetResume 返回完整简历：元数据、区块、样式与历史状态。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	h.respondDetail(c, http.StatusOK, userID, resumeID)
}

// ReplaceResume 处理 PUT，标题与模板都必须提供。
func (h *ResumeHandler) ReplaceResume(c *gin.Context) {
	var req replaceResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	template := canonicalTemplate(req.TemplateName)
	h.updateResume(c, editor.ResumePatch{Title: &req.Title, TemplateName: &template})
}

// PatchResume 处理 PATCH，只修改提供的字段。
func (h *ResumeHandler) PatchResume(c *gin.Context) {
	var req patchResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	patch := editor.ResumePatch{Title: req.Title}
	if req.TemplateName != nil {
		template := canonicalTemplate(*req.TemplateName)
		patch.TemplateName = &template
	}
	h.updateResume(c, patch)
}

func (h *ResumeHandler) updateResume(c *gin.Context, patch editor.ResumePatch) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	if _, err := h.editor.UpdateResume(c.Request.Context(), userID, resumeID, patch); err != nil {
		writeEditorError(c, err, "update resume")
		return
	}
	h.respondDetail(c, http.StatusOK, userID, resumeID)
}

// DeleteResume 删除简历及其区块、样式，并清理对象存储中的导出文件。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	deleted, err := h.editor.DeleteResume(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "delete resume")
		return
	}

	if h.storage != nil && (deleted.PdfObjectKey != "" || deleted.PreviewObjectKey != "") {
		if err := h.storage.DeletePrefix(c.Request.Context(), storage.ResumePrefix(userID, resumeID)); err != nil {
			requestLogger(c).Warn("cleanup resume exports failed",
				slog.Uint64("resume_id", uint64(resumeID)),
				slog.Any("error", err),
			)
		}
	}

	c.Status(http.StatusNoContent)
}

// PreviewResume 返回渲染后的 HTML，?template= 可临时切换模板。
func (h *ResumeHandler) PreviewResume(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	detail, err := h.editor.Snapshot(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load resume")
		return
	}

	templateName := detail.TemplateName
	if override := c.Query("template"); override != "" {
		templateName = override
	}
	h.writeHTML(c, detail, templateName)
}

func (h *ResumeHandler) writeHTML(c *gin.Context, detail resume.Detail, templateName string) {
	html, err := h.renderer.Render(detail, templateName)
	if err != nil {
		requestLogger(c).Error("render resume failed",
			slog.Uint64("resume_id", uint64(detail.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to render resume")
		return
	}
	theme := render.ResolveTheme(templateName).Name
	metrics.ObserveRender(theme, "html")
	metrics.SetTemplate(c, theme)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// History 返回撤销/重做状态。
func (h *ResumeHandler) History(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	state, err := h.editor.HistoryState(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load history")
		return
	}
	c.JSON(http.StatusOK, state)
}

// Undo 恢复上一份快照。
func (h *ResumeHandler) Undo(c *gin.Context) {
	h.travel(c, h.editor.Undo, "undo")
}

// Redo 恢复下一份快照。
func (h *ResumeHandler) Redo(c *gin.Context) {
	h.travel(c, h.editor.Redo, "redo")
}

type travelFunc func(ctx context.Context, userID, resumeID uint) (resume.Detail, editor.State, error)

func (h *ResumeHandler) travel(c *gin.Context, move travelFunc, action string) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	detail, state, err := move(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": detail, "history": state})
}

// Share 生成（或返回已有的）公开分享链接。
func (h *ResumeHandler) Share(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	slug, err := h.editor.Share(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "share resume")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"share_slug": slug,
		"share_url":  editor.ShareURL(h.publicOrigin, slug),
	})
}

// Unshare 撤销公开分享。
func (h *ResumeHandler) Unshare(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	if err := h.editor.Unshare(c.Request.Context(), userID, resumeID); err != nil {
		writeEditorError(c, err, "unshare resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResumeHandler) respondDetail(c *gin.Context, status int, userID, resumeID uint) {
	ctx := c.Request.Context()
	model, err := h.editor.Resume(ctx, userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load resume")
		return
	}
	detail, err := h.editor.Detail(ctx, userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load resume")
		return
	}
	state, err := h.editor.HistoryState(ctx, userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load history")
		return
	}

	resp := resumeDetailResponse{
		Detail:    detail,
		PdfStatus: model.PdfStatus,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		History:   state,
	}
	if model.ShareSlug != nil && *model.ShareSlug != "" {
		resp.ShareSlug = *model.ShareSlug
		resp.ShareURL = editor.ShareURL(h.publicOrigin, resp.ShareSlug)
	}
	c.JSON(status, resp)
}

func newResumeListItem(r database.Resume) resumeListItem {
	return resumeListItem{
		ID:           r.ID,
		Title:        r.Title,
		TemplateName: r.TemplateName,
		Shared:       r.ShareSlug != nil && *r.ShareSlug != "",
		PdfStatus:    r.PdfStatus,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// canonicalTemplate 把 "ModernTemplate" 之类的写法统一为模板标识，空值保持为空。
func canonicalTemplate(name string) string {
	if theme, ok := render.LookupTheme(name); ok {
		return theme.Name
	}
	return name
}
