package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/resume"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(nil)
	require.NoError(t, err)
	return r
}

func section(id uint, typ string, order int, content string) resume.Section {
	return resume.Section{ID: id, Type: typ, Order: resume.Order(order), Content: json.RawMessage(content)}
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sampleDetail() resume.Detail {
	return resume.Detail{
		ID:           7,
		Title:        "Backend Resume",
		TemplateName: "classic",
		Style:        resume.DefaultStyle(),
		Sections: []resume.Section{
			section(1, "contact", 0, `{"name":"Ada Lovelace","email":"ada@example.com","phone":"555-0100","linkedin":"linkedin.com/in/ada"}`),
			section(2, "experience", 1, `{"items":[],"title":"Backend Engineer","company":"Acme"}`),
			section(3, "skills", 2, `{"items":"["}`),
		},
	}
}

func TestEveryTemplateRendersFlatExperienceAndSkillsPlaceholder(t *testing.T) {
	r := newTestRenderer(t)

	for _, theme := range Themes() {
		t.Run(theme.Name, func(t *testing.T) {
			html, err := r.RenderStrict(sampleDetail(), theme.Name)
			require.NoError(t, err)
			doc := parseHTML(t, html)

			exp := doc.Find(".section-experience")
			require.Equal(t, 1, exp.Length())
			assert.Contains(t, exp.Text(), "Backend Engineer")
			assert.Contains(t, exp.Text(), "Acme")
			assert.Equal(t, 0, exp.Find(".placeholder").Length())

			skillsSection := doc.Find(".section-skills")
			require.Equal(t, 1, skillsSection.Length())
			assert.Equal(t, "Add your skills", strings.TrimSpace(skillsSection.Find("em.placeholder").Text()))

			assert.Contains(t, doc.Find(".name").Text(), "Ada Lovelace")
			assert.True(t, doc.Find("body").HasClass("template-"+theme.Name))
		})
	}
}

func TestRenderTiesKeepInputOrder(t *testing.T) {
	r := newTestRenderer(t)
	detail := resume.Detail{
		Title: "Ties",
		Sections: []resume.Section{
			section(10, "summary", 0, `{"text":"first"}`),
			section(11, "custom", 0, `{"title":"Awards","text":"second"}`),
			section(12, "projects", 0, `{"name":"Forge","url":"https://example.com"}`),
		},
	}

	var previous []string
	for i := 0; i < 3; i++ {
		html, err := r.Render(detail, "professional")
		require.NoError(t, err)

		var ids []string
		parseHTML(t, html).Find("main section").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("data-section-id")
			ids = append(ids, id)
		})
		assert.Equal(t, []string{"10", "11", "12"}, ids)
		if previous != nil {
			assert.Equal(t, previous, ids)
		}
		previous = ids
	}
}

func TestRenderUnknownTemplateFallsBackToClassic(t *testing.T) {
	r := newTestRenderer(t)
	html, err := r.Render(sampleDetail(), "does-not-exist")
	require.NoError(t, err)
	assert.True(t, parseHTML(t, html).Find("body").HasClass("template-classic"))

	_, err = r.RenderStrict(sampleDetail(), "does-not-exist")
	var tmplErr *TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestLookupThemeAcceptsComponentNames(t *testing.T) {
	theme, ok := LookupTheme("ExecutiveTemplate")
	require.True(t, ok)
	assert.Equal(t, "executive", theme.Name)
	assert.True(t, theme.HasSidebar())
}

func TestExecutiveSidebarHoldsSkillsAndContact(t *testing.T) {
	r := newTestRenderer(t)
	detail := sampleDetail()
	detail.Sections[2] = section(3, "skills", 2, `{"items":[{"name":"Go","category":"programming"},"Mentoring"]}`)

	html, err := r.Render(detail, "executive")
	require.NoError(t, err)
	doc := parseHTML(t, html)

	sidebar := doc.Find("aside.sidebar")
	assert.Equal(t, 1, sidebar.Find(".section-contact").Length())
	assert.Contains(t, sidebar.Find(".section-skills").Text(), "Programming Languages:")
	assert.Contains(t, sidebar.Find(".section-skills").Text(), "Other:")
	assert.Equal(t, 0, doc.Find("main .section-skills").Length())
}

func TestSectionFormattingBecomesInlineStyle(t *testing.T) {
	r := newTestRenderer(t)
	detail := resume.Detail{
		Sections: []resume.Section{
			section(1, "summary", 0, `{"text":"hello","formatting":{"textColor":"#ff0000","backgroundColor":"transparent","padding":"12"}}`),
		},
	}
	html, err := r.Render(detail, "modern")
	require.NoError(t, err)

	style, ok := parseHTML(t, html).Find(".section-summary").Attr("style")
	require.True(t, ok)
	assert.Equal(t, "color: #ff0000; padding: 12px", style)
}

func TestRenderEscapesContent(t *testing.T) {
	r := newTestRenderer(t)
	detail := resume.Detail{
		Sections: []resume.Section{
			section(1, "summary", 0, `{"text":"<script>alert(1)</script>"}`),
			section(2, "projects", 1, `{"name":"x","link":"javascript:alert(1)"}`),
		},
	}
	html, err := r.Render(detail, "minimalist")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "javascript:alert")
}

func TestStyleOverridesTheme(t *testing.T) {
	theme, _ := LookupTheme("classic")

	view := Build(resume.Detail{Style: resume.Style{PrimaryColor: "#2563eb", FontFamily: "Roboto", FontSize: 12}}, theme)
	assert.Equal(t, "#2563eb", string(view.Vars.Accent))
	assert.True(t, strings.HasPrefix(string(view.Vars.Font), "'Roboto'"))
	assert.Equal(t, "12pt", string(view.Vars.BaseSize))

	view = Build(resume.Detail{Style: resume.DefaultStyle()}, theme)
	assert.Equal(t, theme.Accent, string(view.Vars.Accent))
	assert.Equal(t, theme.Font, string(view.Vars.Font))

	view = Build(resume.Detail{Style: resume.Style{PrimaryColor: "red;}</style>"}}, theme)
	assert.Equal(t, theme.Accent, string(view.Vars.Accent))
}

func TestRenderWordEnvelope(t *testing.T) {
	r := newTestRenderer(t)
	data, err := r.RenderWord(sampleDetail(), "professional")
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "xmlns:o='urn:schemas-microsoft-com:office:office'")
	assert.Contains(t, html, "xmlns:w='urn:schemas-microsoft-com:office:word'")
	assert.Contains(t, html, "xmlns='http://www.w3.org/TR/REC-html40'")
	assert.Contains(t, html, "Backend Engineer")
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "My_Great_Resume_resume.doc", ExportFilename("My Great \t Resume", "doc"))
	assert.Equal(t, "resume_resume.pdf", ExportFilename("  ", ".pdf"))
}
