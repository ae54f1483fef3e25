package editor

import (
	"context"
	"errors"
	"fmt"

	"resumeforge/internal/database"
	"resumeforge/internal/resume"
)

// ErrPDFNotReady 表示简历还没有可下载的 PDF。
var ErrPDFNotReady = errors.New("pdf not generated yet")

// Snapshot 读取当前快照用于导出，不触碰编辑历史。
func (s *Service) Snapshot(ctx context.Context, userID, resumeID uint) (resume.Detail, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Detail{}, err
	}
	return s.loadDetail(ctx, resumeID)
}

// MarkPDFPending 在入队导出任务前把状态置为 pending。
func (s *Service) MarkPDFPending(ctx context.Context, userID, resumeID uint) error {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return err
	}
	return s.setPDFStatus(ctx, resumeID, map[string]any{"pdf_status": database.PdfStatusPending})
}

// CompletePDF 记录新的导出对象，返回被替换的旧对象键（可能为空）供调用方清理。
func (s *Service) CompletePDF(ctx context.Context, resumeID uint, pdfKey, previewKey string) ([]string, error) {
	var model database.Resume
	if err := s.db.WithContext(ctx).First(&model, resumeID).Error; err != nil {
		return nil, fmt.Errorf("query resume: %w", err)
	}

	updates := map[string]any{
		"pdf_status":     database.PdfStatusCompleted,
		"pdf_object_key": pdfKey,
	}
	if previewKey != "" {
		updates["preview_object_key"] = previewKey
	}
	if err := s.setPDFStatus(ctx, resumeID, updates); err != nil {
		return nil, err
	}

	var stale []string
	if model.PdfObjectKey != "" && model.PdfObjectKey != pdfKey {
		stale = append(stale, model.PdfObjectKey)
	}
	if previewKey != "" && model.PreviewObjectKey != "" && model.PreviewObjectKey != previewKey {
		stale = append(stale, model.PreviewObjectKey)
	}
	return stale, nil
}

// FailPDF 把导出状态标记为失败，保留上一次成功的文件。
func (s *Service) FailPDF(ctx context.Context, resumeID uint) error {
	return s.setPDFStatus(ctx, resumeID, map[string]any{"pdf_status": database.PdfStatusFailed})
}

// PDFObjectKey 返回最近一次成功导出的对象键与简历标题。
func (s *Service) PDFObjectKey(ctx context.Context, userID, resumeID uint) (key, title string, err error) {
	model, err := s.Resume(ctx, userID, resumeID)
	if err != nil {
		return "", "", err
	}
	if model.PdfObjectKey == "" {
		return "", "", ErrPDFNotReady
	}
	return model.PdfObjectKey, model.Title, nil
}

// 状态字段不属于编辑内容，直接更新且不刷新 updated_at。
func (s *Service) setPDFStatus(ctx context.Context, resumeID uint, updates map[string]any) error {
	if err := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ?", resumeID).
		UpdateColumns(updates).Error; err != nil {
		return fmt.Errorf("update pdf status: %w", err)
	}
	return nil
}
