package render

import (
	"html/template"
	"strconv"
	"strings"

	"resumeforge/internal/resume"
	"resumeforge/internal/skills"
)

// Header 是页眉信息，来自 contact 区块。
type Header struct {
	Name     string
	JobTitle string
	Email    string
	Phone    string
	Location string
	LinkedIn string
	Website  string
}

// HasContact 表示至少有一项联系方式。
func (h Header) HasContact() bool {
	return h.Email != "" || h.Phone != "" || h.Location != "" || h.LinkedIn != "" || h.Website != ""
}

// Item 是 experience/education/projects 的单条展示数据。
type Item struct {
	Title       string
	Subtitle    string
	Location    string
	Dates       string
	Extra       string
	Description string
	Link        string
	Tags        []string
}

func (i Item) blank() bool {
	return i.Title == "" && i.Subtitle == "" && i.Description == "" && i.Dates == "" && i.Link == "" && len(i.Tags) == 0
}

// SectionView 是单个区块在模板中的展示模型。
type SectionView struct {
	ID          uint
	Type        resume.SectionType
	Heading     string
	Style       template.CSS
	Empty       bool
	Placeholder string
	Text        string
	Items       []Item
	Groups      []skills.Group
	Chips       []string
	Inline      string
}

// View 是整份文档的展示模型。
type View struct {
	Title    string
	Theme    Theme
	Vars     CSSVars
	Header   Header
	Main     []SectionView
	Sidebar  []SectionView
	Envelope bool
}

// CSSVars 是注入 :root 的主题变量，已做过安全过滤。
type CSSVars struct {
	Font        template.CSS
	BaseSize    template.CSS
	Accent      template.CSS
	Text        template.CSS
	Muted       template.CSS
	SidebarBG   template.CSS
	SidebarText template.CSS
}

// Build 执行所有模板共用的流程：排序、规范化、样式覆盖，产出展示模型。
// 不修改入参，不做任何 IO。
func Build(detail resume.Detail, theme Theme) View {
	sorted := resume.SortSections(detail.Sections)

	view := View{
		Title: detail.Title,
		Theme: theme,
		Vars:  cssVars(theme, detail.Style),
	}

	if contact, ok := resume.FindByType(sorted, resume.TypeContact); ok {
		view.Header = buildHeader(contact)
	}

	for _, section := range sorted {
		st, ok := resume.ParseSectionType(section.Type)
		if !ok {
			st = resume.TypeCustom
		}
		if st == resume.TypeContact {
			continue
		}
		sv := buildSection(section, st, theme)
		if theme.inSidebar(st) {
			view.Sidebar = append(view.Sidebar, sv)
		} else {
			view.Main = append(view.Main, sv)
		}
	}
	return view
}

func buildHeader(section resume.Section) Header {
	res := resume.Normalize(resume.TypeContact, section.Content)
	if res.Kind != resume.Single {
		return Header{}
	}
	r := res.Record
	return Header{
		Name:     r.String("name"),
		JobTitle: r.String("title", "jobTitle"),
		Email:    r.String("email"),
		Phone:    r.String("phone"),
		Location: r.String("address", "location"),
		LinkedIn: r.String("linkedin"),
		Website:  r.String("website"),
	}
}

func buildSection(section resume.Section, st resume.SectionType, theme Theme) SectionView {
	sv := SectionView{
		ID:          section.ID,
		Type:        st,
		Heading:     theme.Heading(st),
		Style:       template.CSS(resume.ParseFormatting(section.Content).CSS()),
		Placeholder: placeholderFor(st),
	}

	res := resume.Normalize(st, section.Content)

	switch st {
	case resume.TypeSummary:
		if res.Kind == resume.Single {
			sv.Text = res.Record.String("text")
		}
		sv.Empty = sv.Text == ""
	case resume.TypeCustom:
		if res.Kind == resume.Single {
			if title := res.Record.String("title"); title != "" {
				sv.Heading = title
			}
			sv.Text = res.Record.String("text", "content", "description")
		}
		sv.Empty = sv.Text == ""
	case resume.TypeExperience, resume.TypeEducation, resume.TypeProjects:
		for _, record := range res.Items {
			item := buildItem(res.Shape, record)
			if !item.blank() {
				sv.Items = append(sv.Items, item)
			}
		}
		sv.Empty = len(sv.Items) == 0
	case resume.TypeSkills:
		values := recordsAsAny(res.Items)
		switch theme.SkillStyle {
		case SkillsGrouped:
			sv.Groups = skills.GroupByCategory(values)
			sv.Empty = len(sv.Groups) == 0
		case SkillsChips:
			sv.Chips = skills.Names(values)
			sv.Empty = len(sv.Chips) == 0
		default:
			names := skills.Names(values)
			sep := theme.SkillSeparator
			if sep == "" {
				sep = ", "
			}
			sv.Inline = strings.Join(names, sep)
			sv.Empty = len(names) == 0
		}
	case resume.TypeLanguages:
		for _, record := range res.Items {
			name := record.String("name", "language")
			if name == "" {
				continue
			}
			if level := record.String("proficiency", "level"); level != "" {
				name += " (" + level + ")"
			}
			sv.Chips = append(sv.Chips, name)
		}
		sv.Empty = len(sv.Chips) == 0
	}
	return sv
}

func buildItem(shape resume.SectionType, r resume.Record) Item {
	switch shape {
	case resume.TypeEducation:
		subtitle := r.String("institution")
		if field := r.String("fieldOfStudy", "field"); field != "" {
			if subtitle != "" {
				subtitle += ", " + field
			} else {
				subtitle = field
			}
		}
		dates := dateRange(r)
		if dates == "" {
			dates = r.String("graduationDate")
		}
		item := Item{
			Title:       r.String("degree"),
			Subtitle:    subtitle,
			Location:    r.String("location"),
			Dates:       dates,
			Description: r.String("description"),
		}
		if gpa := r.String("gpa"); gpa != "" {
			item.Extra = "GPA: " + gpa
		}
		return item
	case resume.TypeProjects:
		return Item{
			Title:       r.String("name", "title"),
			Dates:       dateRange(r),
			Description: r.String("description"),
			Link:        safeLink(r.String("url", "link")),
			Tags:        r.Strings("technologies"),
		}
	default:
		return Item{
			Title:       r.String("title", "jobTitle", "position"),
			Subtitle:    r.String("company"),
			Location:    r.String("location"),
			Dates:       dateRange(r),
			Description: r.String("description"),
		}
	}
}

func dateRange(r resume.Record) string {
	start := r.String("startDate", "start_date")
	end := r.String("endDate", "end_date")
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start + " – Present"
	default:
		return end
	}
}

// safeLink 只保留 http(s) 链接，裸域名补全协议。
func safeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	if strings.Contains(lower, ":") {
		return ""
	}
	return "https://" + raw
}

func recordsAsAny(records []resume.Record) []any {
	out := make([]any, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]any(r))
	}
	return out
}

func placeholderFor(st resume.SectionType) string {
	if st == resume.TypeCustom {
		return "Add your content"
	}
	return "Add your " + string(st)
}

func cssVars(theme Theme, style resume.Style) CSSVars {
	defaults := resume.DefaultStyle()

	accent := theme.Accent
	if c := cssToken(style.PrimaryColor); c != "" && !strings.EqualFold(c, defaults.PrimaryColor) {
		accent = c
	}
	font := theme.Font
	if f := cssToken(style.FontFamily); f != "" && f != defaults.FontFamily {
		font = "'" + f + "', " + theme.Font
	}
	base := theme.BaseSize
	if style.FontSize > 0 && style.FontSize != defaults.FontSize {
		base = strconv.Itoa(style.FontSize) + "pt"
	}

	sidebarBG, sidebarText := theme.SidebarBG, theme.SidebarText
	if sidebarBG == "" {
		sidebarBG = "transparent"
	}
	if sidebarText == "" {
		sidebarText = theme.Text
	}

	return CSSVars{
		Font:        template.CSS(font),
		BaseSize:    template.CSS(base),
		Accent:      template.CSS(accent),
		Text:        template.CSS(theme.Text),
		Muted:       template.CSS(theme.Muted),
		SidebarBG:   template.CSS(sidebarBG),
		SidebarText: template.CSS(sidebarText),
	}
}

// cssToken 只接受颜色值与字体名里常见的字符。
func cssToken(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '#', r == ' ', r == '-', r == '_', r == '.', r == ',', r == '(', r == ')', r == '%':
		default:
			return ""
		}
	}
	if strings.Contains(strings.ToLower(raw), "url(") {
		return ""
	}
	return raw
}
