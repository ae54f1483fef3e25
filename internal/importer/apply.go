package importer

import (
	"encoding/json"

	"resumeforge/internal/editor"
	"resumeforge/internal/resume"
	"resumeforge/internal/skills"
)

// ToSections 把解析结果转换为待创建的区块。
// 不指定 order，创建时依次追加到已有区块之后。
// 字段名与编辑器默认内容保持一致，渲染层无需特殊处理导入数据。
func ToSections(p Parsed) []editor.NewSection {
	var out []editor.NewSection
	add := func(t resume.SectionType, content any) {
		data, err := json.Marshal(content)
		if err != nil {
			return
		}
		out = append(out, editor.NewSection{Type: string(t), Content: data})
	}

	if !p.Contact.isEmpty() {
		add(resume.TypeContact, map[string]string{
			"name":     p.Contact.Name,
			"email":    p.Contact.Email,
			"phone":    p.Contact.Phone,
			"address":  p.Contact.Location,
			"linkedin": p.Contact.LinkedIn,
			"website":  p.Contact.Website,
		})
	}
	if p.Summary != "" {
		add(resume.TypeSummary, map[string]string{"text": p.Summary})
	}
	if len(p.Experience) > 0 {
		items := make([]map[string]string, 0, len(p.Experience))
		for _, e := range p.Experience {
			items = append(items, map[string]string{
				"title":       e.Position,
				"company":     e.Company,
				"start_date":  e.StartDate,
				"end_date":    e.EndDate,
				"description": e.Description,
			})
		}
		add(resume.TypeExperience, map[string]any{"items": items})
	}
	if len(p.Education) > 0 {
		items := make([]map[string]string, 0, len(p.Education))
		for _, e := range p.Education {
			items = append(items, map[string]string{
				"degree":         e.Degree,
				"institution":    e.Institution,
				"fieldOfStudy":   e.Field,
				"graduationDate": e.GraduationDate,
			})
		}
		add(resume.TypeEducation, map[string]any{"items": items})
	}
	if len(p.Skills) > 0 {
		items := make([]map[string]string, 0, len(p.Skills))
		for _, name := range p.Skills {
			category, ok := skills.CategoryOf(name)
			if !ok {
				category = skills.OtherCategory
			}
			items = append(items, map[string]string{
				"name":     name,
				"category": category,
			})
		}
		add(resume.TypeSkills, map[string]any{"items": items})
	}
	if len(p.Projects) > 0 {
		items := make([]map[string]string, 0, len(p.Projects))
		for _, pr := range p.Projects {
			items = append(items, map[string]string{
				"name":        pr.Name,
				"description": pr.Description,
				"link":        pr.Link,
			})
		}
		add(resume.TypeProjects, map[string]any{"items": items})
	}
	return out
}
