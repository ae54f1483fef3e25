package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/render"
	"resumeforge/internal/skills"
)

type templateItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Layout      string `json:"layout"`
}

// ListTemplates 返回内置模板目录。
func ListTemplates(c *gin.Context) {
	themes := render.Themes()
	items := make([]templateItem, 0, len(themes))
	for _, t := range themes {
		layout := "single"
		if t.HasSidebar() {
			layout = "sidebar"
		}
		items = append(items, templateItem{
			Name:        t.Name,
			DisplayName: t.DisplayName,
			Description: t.Description,
			Layout:      layout,
		})
	}
	c.JSON(http.StatusOK, items)
}

// ListSkillCategories 返回技能分类与推荐技能。
func ListSkillCategories(c *gin.Context) {
	categories, err := skills.Categories()
	if err != nil {
		requestLogger(c).Error("load skill taxonomy failed", slog.Any("error", err))
		Internal(c, "failed to load skill categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}
