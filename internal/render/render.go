package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"

	"resumeforge/internal/resume"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed themes/*.css
var themeFS embed.FS

// TemplateError 表示模板解析或执行失败。
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// ErrUnknownTemplate 在严格模式下请求未知模板时返回。
var ErrUnknownTemplate = errors.New("unknown template")

// Renderer 持有解析好的文档模板，可并发使用。
type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// New 解析内嵌模板与主题样式。
func New(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := themeFS.ReadFile("themes/base.css")
	if err != nil {
		return nil, &TemplateError{Template: "base", Cause: err}
	}
	themeCSS := make(map[string]template.CSS, len(themes))
	for _, t := range themes {
		data, err := themeFS.ReadFile("themes/" + t.Name + ".css")
		if err != nil {
			return nil, &TemplateError{Template: t.Name, Cause: err}
		}
		themeCSS[t.Name] = template.CSS(data)
	}

	funcs := template.FuncMap{
		"baseCSS":  func() template.CSS { return template.CSS(base) },
		"themeCSS": func(name string) template.CSS { return themeCSS[name] },
		"join":     strings.Join,
		"link":     safeLink,
	}

	tmpl, err := template.New("resume").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, &TemplateError{Template: "document", Cause: err}
	}

	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// MustNew 在模板损坏时 panic，只用于进程启动。
func MustNew(logger *slog.Logger) *Renderer {
	r, err := New(logger)
	if err != nil {
		panic(err)
	}
	return r
}

// Render 用指定模板渲染完整 HTML 文档，未知模板回退到 classic。
func (r *Renderer) Render(detail resume.Detail, templateName string) (string, error) {
	theme := r.resolve(templateName, detail.ID)
	return r.execute(Build(detail, theme))
}

// RenderStrict 与 Render 相同，但未知模板返回 ErrUnknownTemplate。
func (r *Renderer) RenderStrict(detail resume.Detail, templateName string) (string, error) {
	theme, ok := LookupTheme(templateName)
	if !ok {
		return "", &TemplateError{Template: templateName, Cause: ErrUnknownTemplate}
	}
	return r.execute(Build(detail, theme))
}

// RenderWord 输出带 Office 命名空间的 HTML，供 .doc 下载使用。
func (r *Renderer) RenderWord(detail resume.Detail, templateName string) ([]byte, error) {
	view := Build(detail, r.resolve(templateName, detail.ID))
	view.Envelope = true
	html, err := r.execute(view)
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

func (r *Renderer) resolve(templateName string, resumeID uint) Theme {
	theme, ok := LookupTheme(templateName)
	if !ok {
		r.logger.Debug("unknown template, falling back",
			slog.String("template", templateName),
			slog.String("fallback", DefaultTemplate),
			slog.Uint64("resume_id", uint64(resumeID)),
		)
		theme = ResolveTheme(DefaultTemplate)
	}
	return theme
}

func (r *Renderer) execute(view View) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "document", view); err != nil {
		return "", &TemplateError{Template: view.Theme.Name, Cause: err}
	}
	return buf.String(), nil
}

const (
	WordContentType = "application/msword"
	PDFContentType  = "application/pdf"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename 生成下载文件名，空白替换为下划线。
func ExportFilename(title, ext string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "resume"
	}
	return whitespaceRun.ReplaceAllString(title, "_") + "_resume." + strings.TrimPrefix(ext, ".")
}
