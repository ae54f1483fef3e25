package importer

import "strings"

// Contact 是解析出的联系方式。
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

func (c *Contact) isEmpty() bool {
	return c == nil || (c.Name == "" && c.Email == "" && c.Phone == "" &&
		c.Location == "" && c.Website == "" && c.LinkedIn == "")
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduationDate"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Parsed 是导入预览返回给客户端的结构，AI 与规则解析共用。
type Parsed struct {
	Contact    *Contact     `json:"contact,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
}

// Usable 表示至少解析出联系方式、经历、教育或技能之一。
func (p Parsed) Usable() bool {
	return !p.Contact.isEmpty() || len(p.Experience) > 0 || len(p.Education) > 0 || len(p.Skills) > 0
}

// Source 标记解析结果来自哪个解析器。
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// Result 是一次导入解析的结果。
type Result struct {
	Data   Parsed `json:"data"`
	Source Source `json:"source"`
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
