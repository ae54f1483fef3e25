package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/resume"
)

// NewSection 是新增区块的参数，Content 为空时使用该类型的默认内容。
type NewSection struct {
	Type    string
	Content json.RawMessage
	Order   *int
}

// SectionPatch 是区块的部分更新。
type SectionPatch struct {
	Type    *string
	Content json.RawMessage
	Order   *int
}

// UnitError 描述批量操作中单个单元的失败。
type UnitError struct {
	Index int    `json:"index"`
	ID    uint   `json:"id,omitempty"`
	Error string `json:"error"`
}

// BatchResult 汇总逐个执行的批量操作，失败单元不会回滚已成功的单元。
type BatchResult struct {
	Succeeded []uint      `json:"succeeded"`
	Failed    []UnitError `json:"failed"`
}

// Partial 表示部分单元失败。
func (b BatchResult) Partial() bool {
	return len(b.Failed) > 0 && len(b.Succeeded) > 0
}

// AllFailed 表示没有任何单元成功。
func (b BatchResult) AllFailed() bool {
	return len(b.Failed) > 0 && len(b.Succeeded) == 0
}

// Sections 返回简历的全部区块，按 order 排序。
func (s *Service) Sections(ctx context.Context, userID, resumeID uint) ([]resume.Section, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return nil, err
	}
	detail, err := s.loadDetail(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	return resume.SortSections(detail.Sections), nil
}

// Section 返回单个区块及其所属简历 ID，只能访问自己的区块。
func (s *Service) Section(ctx context.Context, userID, sectionID uint) (resume.Section, uint, error) {
	model, err := s.ownedSection(ctx, userID, sectionID)
	if err != nil {
		return resume.Section{}, 0, err
	}
	return SectionFromModel(model), model.ResumeID, nil
}

// AddSection 追加一个区块；未指定 order 时排在末尾。
func (s *Service) AddSection(ctx context.Context, userID, resumeID uint, in NewSection) (resume.Section, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Section{}, err
	}
	model, err := buildSection(resumeID, in)
	if err != nil {
		return resume.Section{}, err
	}

	err = s.record(ctx, resumeID, func(db *gorm.DB) error {
		return s.insertSection(db, &model, in.Order == nil)
	})
	if err != nil {
		return resume.Section{}, fmt.Errorf("create section: %w", err)
	}
	return SectionFromModel(model), nil
}

// AddSections 逐个创建区块并汇总结果，用于导入。
// 单个失败只记录日志，不影响其余区块，也不回滚。
func (s *Service) AddSections(ctx context.Context, userID, resumeID uint, items []NewSection) (BatchResult, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Succeeded: []uint{}, Failed: []UnitError{}}
	err := s.record(ctx, resumeID, func(db *gorm.DB) error {
		for i, in := range items {
			model, err := buildSection(resumeID, in)
			if err == nil {
				err = s.insertSection(db, &model, in.Order == nil)
			}
			if err != nil {
				s.logger.Warn("failed to create section",
					slog.Uint64("resume_id", uint64(resumeID)),
					slog.Int("index", i),
					slog.String("type", in.Type),
					slog.Any("error", err),
				)
				result.Failed = append(result.Failed, UnitError{Index: i, Error: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, model.ID)
		}
		return nil
	})
	return result, err
}

// UpdateSection 修改区块的类型、内容或排序。
func (s *Service) UpdateSection(ctx context.Context, userID, sectionID uint, patch SectionPatch) (resume.Section, error) {
	model, err := s.ownedSection(ctx, userID, sectionID)
	if err != nil {
		return resume.Section{}, err
	}

	updates := map[string]any{}
	if patch.Type != nil {
		st, ok := resume.ParseSectionType(*patch.Type)
		if !ok {
			return resume.Section{}, ErrInvalidSectionType
		}
		updates["type"] = string(st)
	}
	if patch.Content != nil {
		if !isObject(patch.Content) {
			return resume.Section{}, ErrInvalidContent
		}
		updates["content"] = datatypes.JSON(patch.Content)
	}
	if patch.Order != nil {
		updates["order_index"] = *patch.Order
	}

	err = s.record(ctx, model.ResumeID, func(db *gorm.DB) error {
		if len(updates) == 0 {
			return nil
		}
		return db.Model(&database.Section{}).Where("id = ?", sectionID).Updates(updates).Error
	})
	if err != nil {
		return resume.Section{}, fmt.Errorf("update section: %w", err)
	}

	section, _, err := s.Section(ctx, userID, sectionID)
	return section, err
}

// DeleteSection 删除区块，可通过撤销恢复。
func (s *Service) DeleteSection(ctx context.Context, userID, sectionID uint) error {
	model, err := s.ownedSection(ctx, userID, sectionID)
	if err != nil {
		return err
	}
	err = s.record(ctx, model.ResumeID, func(db *gorm.DB) error {
		return db.Delete(&database.Section{}, sectionID).Error
	})
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// Reorder 按给定 ID 顺序把 order 依次设为 0..n-1。
// 每个区块单独更新，失败逐个记录日志，已成功的更新不会回滚。
func (s *Service) Reorder(ctx context.Context, userID, resumeID uint, sectionIDs []uint) (BatchResult, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Succeeded: []uint{}, Failed: []UnitError{}}
	err := s.record(ctx, resumeID, func(db *gorm.DB) error {
		for i, id := range sectionIDs {
			res := db.Model(&database.Section{}).
				Where("id = ? AND resume_id = ?", id, resumeID).
				Update("order_index", i)
			err := res.Error
			if err == nil && res.RowsAffected == 0 {
				err = ErrSectionNotFound
			}
			if err != nil {
				s.logger.Warn("failed to update section order",
					slog.Uint64("resume_id", uint64(resumeID)),
					slog.Uint64("section_id", uint64(id)),
					slog.Int("order", i),
					slog.Any("error", err),
				)
				result.Failed = append(result.Failed, UnitError{Index: i, ID: id, Error: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, id)
		}
		return nil
	})
	return result, err
}

func (s *Service) ownedSection(ctx context.Context, userID, sectionID uint) (database.Section, error) {
	var model database.Section
	err := s.db.WithContext(ctx).
		Joins("JOIN resumes ON resumes.id = sections.resume_id AND resumes.deleted_at IS NULL").
		Where("sections.id = ? AND resumes.user_id = ?", sectionID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Section{}, ErrSectionNotFound
	}
	if err != nil {
		return database.Section{}, fmt.Errorf("query section: %w", err)
	}
	return model, nil
}

func (s *Service) insertSection(db *gorm.DB, model *database.Section, appendToEnd bool) error {
	if appendToEnd {
		var next struct{ Next int }
		if err := db.Model(&database.Section{}).
			Select("COALESCE(MAX(order_index) + 1, 0) AS next").
			Where("resume_id = ?", model.ResumeID).
			Scan(&next).Error; err != nil {
			return err
		}
		model.Order = next.Next
	}
	return db.Create(model).Error
}

func buildSection(resumeID uint, in NewSection) (database.Section, error) {
	st, ok := resume.ParseSectionType(in.Type)
	if !ok {
		return database.Section{}, ErrInvalidSectionType
	}
	content := in.Content
	if len(bytes.TrimSpace(content)) == 0 || string(bytes.TrimSpace(content)) == "null" {
		content = resume.DefaultContent(st)
	}
	if !isObject(content) {
		return database.Section{}, ErrInvalidContent
	}
	model := database.Section{
		ResumeID: resumeID,
		Type:     string(st),
		Content:  datatypes.JSON(content),
	}
	if in.Order != nil {
		model.Order = *in.Order
	}
	return model, nil
}

func isObject(raw json.RawMessage) bool {
	var v map[string]json.RawMessage
	return json.Unmarshal(raw, &v) == nil && v != nil
}
