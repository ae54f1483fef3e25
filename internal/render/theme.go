package render

import (
	"strings"

	"resumeforge/internal/resume"
)

// SkillStyle 决定技能区块的展示方式。
type SkillStyle string

const (
	SkillsInline  SkillStyle = "inline"
	SkillsChips   SkillStyle = "chips"
	SkillsGrouped SkillStyle = "grouped"
)

// Theme 是模板的版式描述：字体、配色、栏位结构与标题文案。
// 所有模板共用同一套数据处理流程，只消费 Theme。
type Theme struct {
	Name             string
	DisplayName      string
	Description      string
	Font             string
	BaseSize         string
	Accent           string
	Text             string
	Muted            string
	SidebarBG        string
	SidebarText      string
	Sidebar          []resume.SectionType
	ContactInSidebar bool
	SkillStyle       SkillStyle
	SkillSeparator   string
	Headings         map[resume.SectionType]string
}

// HasSidebar 表示该模板使用左右分栏。
func (t Theme) HasSidebar() bool {
	return len(t.Sidebar) > 0 || t.ContactInSidebar
}

func (t Theme) inSidebar(st resume.SectionType) bool {
	for _, s := range t.Sidebar {
		if s == st {
			return true
		}
	}
	return false
}

// Heading 返回区块标题，模板未覆盖时使用默认文案。
func (t Theme) Heading(st resume.SectionType) string {
	if h, ok := t.Headings[st]; ok {
		return h
	}
	return defaultHeadings[st]
}

var defaultHeadings = map[resume.SectionType]string{
	resume.TypeContact:    "Contact",
	resume.TypeSummary:    "Professional Summary",
	resume.TypeExperience: "Work Experience",
	resume.TypeEducation:  "Education",
	resume.TypeSkills:     "Skills",
	resume.TypeProjects:   "Projects",
	resume.TypeLanguages:  "Languages",
	resume.TypeCustom:     "Additional Information",
}

// DefaultTemplate 是未指定或指定了未知模板时的回退。
const DefaultTemplate = "classic"

var themes = []Theme{
	{
		Name:        "professional",
		DisplayName: "Professional",
		Description: "Centered header, thin rules, compact single column.",
		Font:        "'Inter', Arial, sans-serif",
		BaseSize:    "13px",
		Accent:      "#1d4ed8",
		Text:        "#111827",
		Muted:       "#4b5563",
		SkillStyle:  SkillsInline,
	},
	{
		Name:        "modern",
		DisplayName: "Modern",
		Description: "Blue accent bar with skills grouped by category.",
		Font:        "'Inter', 'Helvetica Neue', Arial, sans-serif",
		BaseSize:    "13px",
		Accent:      "#3b82f6",
		Text:        "#1f2937",
		Muted:       "#6b7280",
		SkillStyle:  SkillsGrouped,
		Headings: map[resume.SectionType]string{
			resume.TypeSummary:    "SUMMARY",
			resume.TypeExperience: "WORK EXPERIENCE",
			resume.TypeEducation:  "EDUCATION",
			resume.TypeSkills:     "SKILLS",
			resume.TypeProjects:   "PROJECTS",
			resume.TypeLanguages:  "LANGUAGES",
		},
	},
	{
		Name:        "creative",
		DisplayName: "Creative",
		Description: "Purple theme with a skills and education side column.",
		Font:        "'Poppins', 'Segoe UI', sans-serif",
		BaseSize:    "13px",
		Accent:      "#9333ea",
		Text:        "#374151",
		Muted:       "#6b7280",
		SidebarBG:   "#faf5ff",
		SidebarText: "#374151",
		Sidebar:     []resume.SectionType{resume.TypeSkills, resume.TypeEducation, resume.TypeLanguages},
		SkillStyle:  SkillsChips,
		Headings: map[resume.SectionType]string{
			resume.TypeSkills:     "SKILLS",
			resume.TypeEducation:  "EDUCATION",
			resume.TypeExperience: "WORK EXPERIENCE",
			resume.TypeProjects:   "PROJECTS",
			resume.TypeLanguages:  "LANGUAGES",
		},
	},
	{
		Name:           "minimalist",
		DisplayName:    "Minimalist",
		Description:    "Plenty of whitespace, light gray rules, no color.",
		Font:           "'Helvetica Neue', Helvetica, Arial, sans-serif",
		BaseSize:       "13px",
		Accent:         "#111827",
		Text:           "#1f2937",
		Muted:          "#9ca3af",
		SkillStyle:     SkillsInline,
		SkillSeparator: " · ",
		Headings: map[resume.SectionType]string{
			resume.TypeSummary:    "About",
			resume.TypeExperience: "Experience",
		},
	},
	{
		Name:           "classic",
		DisplayName:    "Classic",
		Description:    "Serif typography in a traditional single column.",
		Font:           "Georgia, 'Times New Roman', serif",
		BaseSize:       "13px",
		Accent:         "#111827",
		Text:           "#111827",
		Muted:          "#4b5563",
		SkillStyle:     SkillsInline,
		SkillSeparator: " • ",
		Headings: map[resume.SectionType]string{
			resume.TypeExperience: "Professional Experience",
			resume.TypeSkills:     "Core Competencies",
		},
	},
	{
		Name:        "dynamic",
		DisplayName: "Dynamic",
		Description: "Teal gradient header with skill and language chips.",
		Font:        "'Segoe UI', Tahoma, sans-serif",
		BaseSize:    "14px",
		Accent:      "#14b8a6",
		Text:        "#1f2937",
		Muted:       "#4b5563",
		SkillStyle:  SkillsChips,
	},
	{
		Name:             "executive",
		DisplayName:      "Executive",
		Description:      "Dark contact sidebar with skills grouped by category.",
		Font:             "Calibri, Carlito, Arial, sans-serif",
		BaseSize:         "13px",
		Accent:           "#111827",
		Text:             "#1f2937",
		Muted:            "#6b7280",
		SidebarBG:        "#111827",
		SidebarText:      "#f9fafb",
		Sidebar:          []resume.SectionType{resume.TypeSkills, resume.TypeLanguages},
		ContactInSidebar: true,
		SkillStyle:       SkillsGrouped,
	},
}

// Themes 返回全部模板描述，顺序固定。
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// LookupTheme 按名称（忽略大小写，兼容 "ExecutiveTemplate" 之类的写法）查找模板。
func LookupTheme(name string) (Theme, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "template")
	for _, t := range themes {
		if t.Name == key {
			return t, true
		}
	}
	return Theme{}, false
}

// ResolveTheme 查找模板，找不到时回退到 DefaultTemplate。
func ResolveTheme(name string) Theme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	t, _ := LookupTheme(DefaultTemplate)
	return t
}
