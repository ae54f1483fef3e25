package resume

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SectionType 是 Section.type 的封闭取值集合。
type SectionType string

const (
	TypeContact    SectionType = "contact"
	TypeSummary    SectionType = "summary"
	TypeExperience SectionType = "experience"
	TypeEducation  SectionType = "education"
	TypeSkills     SectionType = "skills"
	TypeProjects   SectionType = "projects"
	TypeLanguages  SectionType = "languages"
	TypeCustom     SectionType = "custom"
)

// SectionTypes 按编辑器展示顺序列出全部类型。
var SectionTypes = []SectionType{
	TypeContact,
	TypeSummary,
	TypeExperience,
	TypeEducation,
	TypeSkills,
	TypeProjects,
	TypeLanguages,
	TypeCustom,
}

// ParseSectionType 校验并返回类型。
func ParseSectionType(raw string) (SectionType, bool) {
	t := SectionType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range SectionTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// IsMultiItem 表示该类型的内容会被规范化为条目数组。
func (t SectionType) IsMultiItem() bool {
	switch t {
	case TypeExperience, TypeEducation, TypeProjects:
		return true
	}
	return false
}

// IsFlatList 表示 items 是扁平的字符串或技能记录列表。
func (t SectionType) IsFlatList() bool {
	return t == TypeSkills || t == TypeLanguages
}

// Order 是宽松解析的排序值：数字、数字字符串都接受，其他一律视为 0。
// NaN、无穷以及超出 int32 范围的值同样视为 0。
type Order int

func (o *Order) UnmarshalJSON(data []byte) error {
	*o = 0
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return nil
	}
	*o = Order(int(f))
	return nil
}

// Section 是渲染层消费的单个区块，Content 保持原始 JSON。
type Section struct {
	ID      uint            `json:"id"`
	Type    string          `json:"type"`
	Order   Order           `json:"order"`
	Content json.RawMessage `json:"content"`
}

// Style 是简历级别的外观参数。
type Style struct {
	PrimaryColor string `json:"primary_color"`
	FontFamily   string `json:"font_family"`
	FontSize     int    `json:"font_size"`
}

// DefaultStyle 与新建简历时写入的默认值一致。
func DefaultStyle() Style {
	return Style{PrimaryColor: "#000000", FontFamily: "Inter", FontSize: 10}
}

// Detail 是一份完整简历的快照，编辑历史与渲染都以它为单位。
type Detail struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	TemplateName string    `json:"template_name"`
	Sections     []Section `json:"sections"`
	Style        Style     `json:"style"`
}

// DefaultContent 返回新建区块时的占位内容。
func DefaultContent(t SectionType) json.RawMessage {
	var v any
	switch t {
	case TypeContact:
		v = map[string]any{"email": "email@example.com", "phone": "123-456-7890", "address": "City, State"}
	case TypeSummary:
		v = map[string]any{"text": "Your professional summary goes here."}
	case TypeExperience:
		v = map[string]any{
			"title":       PlaceholderJobTitle,
			"company":     "Company Name",
			"location":    "City, State",
			"start_date":  "",
			"end_date":    "",
			"description": "Job description and achievements",
		}
	case TypeEducation:
		v = map[string]any{
			"degree":      PlaceholderDegreeName,
			"institution": "Institution Name",
			"location":    "City, State",
			"start_date":  "",
			"end_date":    "",
		}
	case TypeSkills:
		v = map[string]any{"items": []string{"Skill 1", "Skill 2", "Skill 3"}}
	case TypeProjects, TypeLanguages:
		v = map[string]any{"items": []any{}}
	default:
		v = map[string]any{"title": "", "text": ""}
	}
	data, _ := json.Marshal(v)
	return data
}
