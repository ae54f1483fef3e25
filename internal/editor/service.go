package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/resume"
)

var (
	ErrNotFound           = errors.New("resume not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrInvalidSectionType = errors.New("invalid section type")
	ErrInvalidContent     = errors.New("section content must be a JSON object")
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrNothingToRedo      = errors.New("nothing to redo")
	ErrResumeLimit        = errors.New("resume limit reached")
)

// DefaultResumeTitle 用于未填写标题的新简历。
const DefaultResumeTitle = "Untitled Resume"

// Service 负责简历与区块的增删改、排序以及撤销/重做。
// 每次变更成功后都会记录一份完整快照。
type Service struct {
	db         *gorm.DB
	history    HistoryStore
	logger     *slog.Logger
	maxResumes int

	locks sync.Map
}

// NewService 构造 Service；maxResumes <= 0 表示不限制数量。
func NewService(db *gorm.DB, history HistoryStore, logger *slog.Logger, maxResumes int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if history == nil {
		history = NewMemoryHistoryStore(DefaultHistorySize)
	}
	return &Service{db: db, history: history, logger: logger, maxResumes: maxResumes}
}

// lock 串行化同一份简历上的变更与历史读写。
func (s *Service) lock(resumeID uint) func() {
	v, _ := s.locks.LoadOrStore(resumeID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ---- 简历 ----

// CreateResumeInput 是新建简历的参数。
type CreateResumeInput struct {
	Title        string
	TemplateName string
}

// ResumePatch 是简历元数据的部分更新。
type ResumePatch struct {
	Title        *string
	TemplateName *string
}

// ListResumes 按最近更新时间倒序列出用户简历。
func (s *Service) ListResumes(ctx context.Context, userID uint) ([]database.Resume, error) {
	var resumes []database.Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

// CreateResume 创建简历及其默认样式，并初始化编辑历史。
func (s *Service) CreateResume(ctx context.Context, userID uint, in CreateResumeInput) (resume.Detail, error) {
	db := s.db.WithContext(ctx)

	if s.maxResumes > 0 {
		var count int64
		if err := db.Model(&database.Resume{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return resume.Detail{}, fmt.Errorf("count resumes: %w", err)
		}
		if count >= int64(s.maxResumes) {
			return resume.Detail{}, ErrResumeLimit
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultResumeTitle
	}
	templateName := strings.TrimSpace(in.TemplateName)
	if templateName == "" {
		templateName = "classic"
	}

	defaults := resume.DefaultStyle()
	model := database.Resume{
		Title:        title,
		TemplateName: templateName,
		UserID:       userID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		style := database.Style{
			ResumeID:     model.ID,
			PrimaryColor: defaults.PrimaryColor,
			FontFamily:   defaults.FontFamily,
			FontSize:     defaults.FontSize,
		}
		return tx.Create(&style).Error
	})
	if err != nil {
		return resume.Detail{}, fmt.Errorf("create resume: %w", err)
	}

	detail, err := s.loadDetail(ctx, model.ID)
	if err != nil {
		return resume.Detail{}, err
	}
	h := NewHistory(0)
	h.Reset(detail)
	s.saveHistory(ctx, model.ID, h)
	return detail, nil
}

// Resume 返回属于该用户的简历记录。
func (s *Service) Resume(ctx context.Context, userID, resumeID uint) (database.Resume, error) {
	var model database.Resume
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", resumeID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Resume{}, ErrNotFound
	}
	if err != nil {
		return database.Resume{}, fmt.Errorf("query resume: %w", err)
	}
	return model, nil
}

// Detail 返回完整快照；编辑历史为空时以该快照初始化。
func (s *Service) Detail(ctx context.Context, userID, resumeID uint) (resume.Detail, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Detail{}, err
	}
	unlock := s.lock(resumeID)
	defer unlock()

	detail, err := s.loadDetail(ctx, resumeID)
	if err != nil {
		return resume.Detail{}, err
	}
	if h, err := s.history.Load(ctx, resumeID); err == nil && h.Len() == 0 {
		h.Reset(detail)
		s.saveHistory(ctx, resumeID, h)
	}
	return detail, nil
}

// UpdateResume 修改标题或模板。
func (s *Service) UpdateResume(ctx context.Context, userID, resumeID uint, patch ResumePatch) (resume.Detail, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Detail{}, err
	}
	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			title = DefaultResumeTitle
		}
		updates["title"] = title
	}
	if patch.TemplateName != nil {
		updates["template_name"] = strings.TrimSpace(*patch.TemplateName)
	}

	err := s.record(ctx, resumeID, func(db *gorm.DB) error {
		if len(updates) == 0 {
			return nil
		}
		return db.Model(&database.Resume{}).Where("id = ?", resumeID).Updates(updates).Error
	})
	if err != nil {
		return resume.Detail{}, fmt.Errorf("update resume: %w", err)
	}
	return s.loadDetail(ctx, resumeID)
}

// DeleteResume 删除简历、区块与样式，并清理编辑历史。
// 返回被删除的记录，调用方据此清理对象存储中的导出文件。
func (s *Service) DeleteResume(ctx context.Context, userID, resumeID uint) (database.Resume, error) {
	model, err := s.Resume(ctx, userID, resumeID)
	if err != nil {
		return database.Resume{}, err
	}
	unlock := s.lock(resumeID)
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", resumeID).Delete(&database.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resume_id = ?", resumeID).Delete(&database.Style{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Resume{}, resumeID).Error
	})
	if err != nil {
		return database.Resume{}, fmt.Errorf("delete resume: %w", err)
	}
	if err := s.history.Delete(ctx, resumeID); err != nil {
		s.logger.Warn("failed to delete editor history",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
	}
	s.locks.Delete(resumeID)
	return model, nil
}

// ---- 样式 ----

// StylePatch 是全局样式的部分更新。
type StylePatch struct {
	PrimaryColor *string
	FontFamily   *string
	FontSize     *int
}

// Style 返回简历样式，缺失时返回默认值。
func (s *Service) Style(ctx context.Context, userID, resumeID uint) (resume.Style, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Style{}, err
	}
	return s.loadStyle(ctx, s.db.WithContext(ctx), resumeID)
}

// UpdateStyle 修改样式，样式记录缺失时补建。
func (s *Service) UpdateStyle(ctx context.Context, userID, resumeID uint, patch StylePatch) (resume.Style, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Style{}, err
	}
	err := s.record(ctx, resumeID, func(db *gorm.DB) error {
		current, err := s.loadStyle(ctx, db, resumeID)
		if err != nil {
			return err
		}
		if patch.PrimaryColor != nil {
			current.PrimaryColor = strings.TrimSpace(*patch.PrimaryColor)
		}
		if patch.FontFamily != nil {
			current.FontFamily = strings.TrimSpace(*patch.FontFamily)
		}
		if patch.FontSize != nil {
			current.FontSize = *patch.FontSize
		}
		return saveStyle(db, resumeID, current)
	})
	if err != nil {
		return resume.Style{}, fmt.Errorf("update style: %w", err)
	}
	return s.loadStyle(ctx, s.db.WithContext(ctx), resumeID)
}

func (s *Service) loadStyle(_ context.Context, db *gorm.DB, resumeID uint) (resume.Style, error) {
	var model database.Style
	err := db.Where("resume_id = ?", resumeID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resume.DefaultStyle(), nil
	}
	if err != nil {
		return resume.Style{}, fmt.Errorf("query style: %w", err)
	}
	return resume.Style{
		PrimaryColor: model.PrimaryColor,
		FontFamily:   model.FontFamily,
		FontSize:     model.FontSize,
	}, nil
}

func saveStyle(db *gorm.DB, resumeID uint, style resume.Style) error {
	var model database.Style
	err := db.Unscoped().Where("resume_id = ?", resumeID).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&database.Style{
			ResumeID:     resumeID,
			PrimaryColor: style.PrimaryColor,
			FontFamily:   style.FontFamily,
			FontSize:     style.FontSize,
		}).Error
	case err != nil:
		return err
	}
	return db.Unscoped().Model(&model).Updates(map[string]any{
		"primary_color": style.PrimaryColor,
		"font_family":   style.FontFamily,
		"font_size":     style.FontSize,
		"deleted_at":    nil,
	}).Error
}

// ---- 历史 ----

// Undo 把简历恢复到上一个快照。
func (s *Service) Undo(ctx context.Context, userID, resumeID uint) (resume.Detail, State, error) {
	return s.travel(ctx, userID, resumeID, (*History).Undo, ErrNothingToUndo)
}

// Redo 把简历恢复到下一个快照。
func (s *Service) Redo(ctx context.Context, userID, resumeID uint) (resume.Detail, State, error) {
	return s.travel(ctx, userID, resumeID, (*History).Redo, ErrNothingToRedo)
}

// HistoryState 返回撤销/重做的可用状态。
func (s *Service) HistoryState(ctx context.Context, userID, resumeID uint) (State, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return State{}, err
	}
	h, err := s.history.Load(ctx, resumeID)
	if err != nil {
		return State{}, err
	}
	return h.State(), nil
}

func (s *Service) travel(
	ctx context.Context,
	userID, resumeID uint,
	move func(*History) (resume.Detail, bool),
	empty error,
) (resume.Detail, State, error) {
	if _, err := s.Resume(ctx, userID, resumeID); err != nil {
		return resume.Detail{}, State{}, err
	}
	unlock := s.lock(resumeID)
	defer unlock()

	h, err := s.history.Load(ctx, resumeID)
	if err != nil {
		return resume.Detail{}, State{}, err
	}
	snapshot, ok := move(h)
	if !ok {
		return resume.Detail{}, h.State(), empty
	}
	if err := s.restore(ctx, resumeID, snapshot); err != nil {
		return resume.Detail{}, State{}, fmt.Errorf("restore snapshot: %w", err)
	}
	s.saveHistory(ctx, resumeID, h)

	detail, err := s.loadDetail(ctx, resumeID)
	if err != nil {
		return resume.Detail{}, State{}, err
	}
	return detail, h.State(), nil
}

// restore 把快照整体写回数据库：快照外的区块被软删除，快照内已删除的区块被恢复。
func (s *Service) restore(ctx context.Context, resumeID uint, snapshot resume.Detail) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.Resume{}).Where("id = ?", resumeID).Updates(map[string]any{
			"title":         snapshot.Title,
			"template_name": snapshot.TemplateName,
		}).Error; err != nil {
			return err
		}
		if err := saveStyle(tx, resumeID, snapshot.Style); err != nil {
			return err
		}

		keep := make([]uint, 0, len(snapshot.Sections))
		for _, section := range snapshot.Sections {
			keep = append(keep, section.ID)
			updates := map[string]any{
				"type":        section.Type,
				"order_index": int(section.Order),
				"content":     datatypes.JSON(section.Content),
				"deleted_at":  nil,
			}
			res := tx.Unscoped().Model(&database.Section{}).
				Where("id = ? AND resume_id = ?", section.ID, resumeID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				recreated := database.Section{
					Model:    gorm.Model{ID: section.ID},
					ResumeID: resumeID,
					Type:     section.Type,
					Order:    int(section.Order),
					Content:  datatypes.JSON(section.Content),
				}
				if err := tx.Create(&recreated).Error; err != nil {
					return err
				}
			}
		}

		drop := tx.Where("resume_id = ?", resumeID)
		if len(keep) > 0 {
			drop = drop.Where("id NOT IN ?", keep)
		}
		return drop.Delete(&database.Section{}).Error
	})
}

// record 执行一次变更并在成功后压入快照；历史为空时先以变更前的状态初始化。
// 历史存储失败只记录日志，不影响变更本身。
func (s *Service) record(ctx context.Context, resumeID uint, mutate func(db *gorm.DB) error) error {
	unlock := s.lock(resumeID)
	defer unlock()

	h, err := s.history.Load(ctx, resumeID)
	if err != nil {
		s.logger.Warn("failed to load editor history",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		h = NewHistory(0)
	}
	if h.Len() == 0 {
		if before, err := s.loadDetail(ctx, resumeID); err == nil {
			h.Reset(before)
		}
	}

	if err := mutate(s.db.WithContext(ctx)); err != nil {
		return err
	}
	s.touch(ctx, resumeID)

	after, err := s.loadDetail(ctx, resumeID)
	if err != nil {
		s.logger.Warn("failed to snapshot resume",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		return nil
	}
	h.Push(after)
	s.saveHistory(ctx, resumeID, h)
	return nil
}

func (s *Service) saveHistory(ctx context.Context, resumeID uint, h *History) {
	if err := s.history.Save(ctx, resumeID, h); err != nil {
		s.logger.Warn("failed to save editor history",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
	}
}

// touch 刷新 updated_at，区块变更也应影响列表排序。
// 失败只记录日志，变更本身已经生效。
func (s *Service) touch(ctx context.Context, resumeID uint) {
	err := s.db.WithContext(ctx).Model(&database.Resume{}).
		Where("id = ?", resumeID).
		Update("updated_at", time.Now()).Error
	if err != nil {
		s.logger.Warn("failed to touch resume",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) loadDetail(ctx context.Context, resumeID uint) (resume.Detail, error) {
	db := s.db.WithContext(ctx)

	var model database.Resume
	err := db.First(&model, resumeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resume.Detail{}, ErrNotFound
	}
	if err != nil {
		return resume.Detail{}, fmt.Errorf("query resume: %w", err)
	}

	var sections []database.Section
	if err := db.Where("resume_id = ?", resumeID).
		Order("order_index ASC").
		Order("id ASC").
		Find(&sections).Error; err != nil {
		return resume.Detail{}, fmt.Errorf("query sections: %w", err)
	}

	style, err := s.loadStyle(ctx, db, resumeID)
	if err != nil {
		return resume.Detail{}, err
	}

	return DetailFromModels(model, sections, style), nil
}

// DetailFromModels 组装渲染与历史使用的快照。
func DetailFromModels(model database.Resume, sections []database.Section, style resume.Style) resume.Detail {
	detail := resume.Detail{
		ID:           model.ID,
		Title:        model.Title,
		TemplateName: model.TemplateName,
		Sections:     make([]resume.Section, 0, len(sections)),
		Style:        style,
	}
	for _, section := range sections {
		detail.Sections = append(detail.Sections, SectionFromModel(section))
	}
	return detail
}

// SectionFromModel 把数据库记录转换为渲染层的区块。
func SectionFromModel(section database.Section) resume.Section {
	content := json.RawMessage(section.Content)
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	return resume.Section{
		ID:      section.ID,
		Type:    section.Type,
		Order:   resume.Order(section.Order),
		Content: content,
	}
}
