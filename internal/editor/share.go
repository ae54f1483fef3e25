package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/resume"
)

// Share 返回简历的公开分享标识，不存在时生成一个；重复调用返回同一个值。
func (s *Service) Share(ctx context.Context, userID, resumeID uint) (string, error) {
	model, err := s.Resume(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}
	if model.ShareSlug != nil && *model.ShareSlug != "" {
		return *model.ShareSlug, nil
	}

	slug := uuid.NewString()
	res := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ? AND (share_slug IS NULL OR share_slug = '')", resumeID).
		Update("share_slug", slug)
	if res.Error != nil {
		return "", fmt.Errorf("save share slug: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// 并发请求已写入，读回现有值。
		model, err = s.Resume(ctx, userID, resumeID)
		if err != nil {
			return "", err
		}
		if model.ShareSlug != nil {
			return *model.ShareSlug, nil
		}
	}
	return slug, nil
}

// Unshare 撤销公开分享。
func (s *Service) Unshare(ctx context.Context, userID, resumeID uint) error {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ?", resumeID).
		Update("share_slug", nil).Error; err != nil {
		return fmt.Errorf("clear share slug: %w", err)
	}
	return nil
}

// PublicDetail 通过分享标识读取简历，无需登录。
func (s *Service) PublicDetail(ctx context.Context, slug string) (resume.Detail, error) {
	slug = strings.TrimSpace(slug)
	if _, err := uuid.Parse(slug); err != nil {
		return resume.Detail{}, ErrNotFound
	}
	var model database.Resume
	err := s.db.WithContext(ctx).Where("share_slug = ?", slug).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resume.Detail{}, ErrNotFound
	}
	if err != nil {
		return resume.Detail{}, fmt.Errorf("query shared resume: %w", err)
	}
	return s.loadDetail(ctx, model.ID)
}

// ShareURL 拼接前端分享页地址。
func ShareURL(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/share/" + slug
}
