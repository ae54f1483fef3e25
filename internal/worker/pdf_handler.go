package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"resumeforge/internal/editor"
	"resumeforge/internal/errcode"
	"resumeforge/internal/metrics"
	"resumeforge/internal/pdf"
	"resumeforge/internal/render"
	"resumeforge/internal/resume"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
)

const previewMissingMessage = "PDF 已生成，缩略图生成失败"

// ResumeSource 是导出任务读写简历所需的操作，由 editor.Service 实现。
type ResumeSource interface {
	Snapshot(ctx context.Context, userID, resumeID uint) (resume.Detail, error)
	CompletePDF(ctx context.Context, resumeID uint, pdfKey, previewKey string) ([]string, error)
	FailPDF(ctx context.Context, resumeID uint) error
}

// PDFTaskHandler 负责消费 PDF 生成任务：渲染 HTML、打印、上传并通知用户。
type PDFTaskHandler struct {
	resumes  ResumeSource
	renderer *render.Renderer
	printer  pdf.Printer
	storage  storage.ObjectStore
	notifier Notifier
	logger   *slog.Logger

	isFinalAttempt func(ctx context.Context) bool
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(
	resumes ResumeSource,
	renderer *render.Renderer,
	printer pdf.Printer,
	store storage.ObjectStore,
	notifier Notifier,
	logger *slog.Logger,
) *PDFTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTaskHandler{
		resumes:        resumes,
		renderer:       renderer,
		printer:        printer,
		storage:        store,
		notifier:       notifier,
		logger:         logger,
		isFinalAttempt: isFinalAsynqAttempt,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParsePDFGeneratePayload(t)
	if err != nil {
		h.logger.Error("invalid task payload", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
		slog.Uint64("user_id", uint64(payload.UserID)),
	)
	log.Info("starting pdf generation task")

	defer func() {
		if retErr == nil || !h.isFinalAttempt(ctx) {
			return
		}
		metrics.ObservePDFExport(false)
		if err := h.resumes.FailPDF(ctx, payload.ResumeID); err != nil {
			log.Error("mark pdf failed", slog.Any("error", err))
		}
		h.notify(ctx, log, payload.UserID, tasks.PDFNotification{
			Status:        tasks.NotifyStatusError,
			ResumeID:      payload.ResumeID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		})
	}()

	detail, err := h.resumes.Snapshot(ctx, payload.UserID, payload.ResumeID)
	if errors.Is(err, editor.ErrNotFound) {
		log.Warn("resume not found, skipping task")
		return nil
	}
	if err != nil {
		log.Error("load resume failed", slog.Any("error", err))
		return err
	}

	html, err := h.renderer.Render(detail, detail.TemplateName)
	if err != nil {
		log.Error("render resume failed", slog.Any("error", err))
		return err
	}
	metrics.ObserveRender(render.ResolveTheme(detail.TemplateName).Name, "pdf")

	out, err := h.printer.Print(ctx, html)
	if err != nil {
		log.Error("print pdf failed", slog.Any("error", err))
		return err
	}

	pdfKey := storage.PDFObjectKey(payload.UserID, payload.ResumeID)
	if err := h.storage.UploadFile(ctx, pdfKey, bytes.NewReader(out.PDF), int64(len(out.PDF)), render.PDFContentType); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	previewKey := h.uploadPreview(ctx, log, payload, out.Preview)

	stale, err := h.resumes.CompletePDF(ctx, payload.ResumeID, pdfKey, previewKey)
	if err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}
	for _, key := range stale {
		if err := h.storage.DeleteObject(ctx, key); err != nil {
			log.Warn("delete stale export failed", slog.String("object_key", key), slog.Any("error", err))
		}
	}

	notify := tasks.PDFNotification{
		Status:        tasks.NotifyStatusCompleted,
		ResumeID:      payload.ResumeID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if previewKey == "" {
		notify.ErrorCode = errcode.PartialFailure
		notify.ErrorMessage = previewMissingMessage
	}
	h.notify(ctx, log, payload.UserID, notify)

	metrics.ObservePDFExport(true)
	log.Info("pdf generation task completed", slog.String("object_key", pdfKey))
	return nil
}

// uploadPreview 上传缩略图，失败只记日志，返回空键。
func (h *PDFTaskHandler) uploadPreview(ctx context.Context, log *slog.Logger, payload tasks.PDFGeneratePayload, preview []byte) string {
	if len(preview) == 0 {
		log.Warn("preview screenshot missing")
		return ""
	}
	key := storage.PreviewObjectKey(payload.UserID, payload.ResumeID)
	if err := h.storage.UploadFile(ctx, key, bytes.NewReader(preview), int64(len(preview)), "image/jpeg"); err != nil {
		log.Warn("upload preview image failed", slog.Any("error", err))
		return ""
	}
	return key
}

func (h *PDFTaskHandler) notify(ctx context.Context, log *slog.Logger, userID uint, msg tasks.PDFNotification) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(ctx, userID, msg); err != nil {
		log.Error("publish pdf notification failed", slog.String("status", msg.Status), slog.Any("error", err))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
