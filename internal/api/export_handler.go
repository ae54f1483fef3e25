package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/editor"
	"resumeforge/internal/metrics"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
)

const (
	pdfMaxRetry   = 5
	pdfLinkExpiry = 5 * time.Minute
)

// taskEnqueuer 是 asynq.Client 的最小子集。
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportHandler 负责 Word 直出、PDF 异步导出与下载链接。
type ExportHandler struct {
	editor   *editor.Service
	renderer *render.Renderer
	queue    taskEnqueuer
	storage  storage.ObjectStore
}

func NewExportHandler(svc *editor.Service, renderer *render.Renderer, queue taskEnqueuer, store storage.ObjectStore) *ExportHandler {
	return &ExportHandler{
		editor:   svc,
		renderer: renderer,
		queue:    queue,
		storage:  store,
	}
}

// ExportWord 同步返回 Word 可打开的 HTML 文档。
func (h *ExportHandler) ExportWord(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}

	detail, err := h.editor.Snapshot(c.Request.Context(), userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load resume")
		return
	}

	doc, err := h.renderer.RenderWord(detail, detail.TemplateName)
	if err != nil {
		requestLogger(c).Error("render word export failed",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to export resume")
		return
	}
	theme := render.ResolveTheme(detail.TemplateName).Name
	metrics.ObserveRender(theme, "word")
	metrics.SetTemplate(c, theme)

	c.Header("Content-Disposition", storage.ContentDisposition(render.ExportFilename(detail.Title, "doc")))
	c.Data(http.StatusOK, render.WordContentType, doc)
}

// ExportPDF 将 PDF 生成任务入队并立即返回 202，结果通过 websocket 通知。
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.editor.MarkPDFPending(ctx, userID, resumeID); err != nil {
		writeEditorError(c, err, "queue pdf export")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPDFGenerateTask(resumeID, userID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task, asynq.MaxRetry(pdfMaxRetry))
	if err != nil {
		requestLogger(c).Error("enqueue pdf generation failed",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		if failErr := h.editor.FailPDF(ctx, resumeID); failErr != nil {
			requestLogger(c).Warn("reset pdf status failed", slog.Any("error", failErr))
		}
		Internal(c, "failed to enqueue pdf generation")
		return
	}

	requestLogger(c).Info("pdf generation queued",
		slog.Uint64("resume_id", uint64(resumeID)),
		slog.String("task_id", info.ID),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"message": "PDF generation request accepted",
		"task_id": info.ID,
	})
}

// PDFLink 生成最近一次导出 PDF 的预签名下载链接，文件名通过 response-content-disposition 指定。
func (h *ExportHandler) PDFLink(c *gin.Context) {
	userID, resumeID, ok := requireResume(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	key, title, err := h.editor.PDFObjectKey(ctx, userID, resumeID)
	if err != nil {
		writeEditorError(c, err, "load pdf")
		return
	}

	filename := render.ExportFilename(title, "pdf")
	signedURL, err := h.storage.GeneratePresignedURL(ctx, key, pdfLinkExpiry, map[string]string{
		"response-content-disposition": storage.ContentDisposition(filename),
	})
	if err != nil {
		requestLogger(c).Error("presign pdf failed",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        signedURL,
		"filename":   filename,
		"expires_in": fmt.Sprintf("%ds", int(pdfLinkExpiry.Seconds())),
	})
}
