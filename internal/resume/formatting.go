package resume

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultBorderColor = "#d1d5db"

// Formatting 是区块级的稀疏样式覆盖，只做类型宽松转换，不做校验。
type Formatting struct {
	FontFamily      string  `json:"fontFamily,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`
	TextAlign       string  `json:"textAlign,omitempty"`
	TextColor       string  `json:"textColor,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Padding         float64 `json:"padding,omitempty"`
	Margin          float64 `json:"margin,omitempty"`
	BorderWidth     float64 `json:"borderWidth,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"`
}

// ParseFormatting 读取 content.formatting，缺失或格式错误时返回零值。
func ParseFormatting(content []byte) Formatting {
	if len(content) == 0 || !gjson.ValidBytes(content) {
		return Formatting{}
	}
	f := gjson.GetBytes(content, "formatting")
	if !f.IsObject() {
		return Formatting{}
	}
	return Formatting{
		FontFamily:      text(f.Get("fontFamily")),
		FontSize:        number(f.Get("fontSize")),
		FontWeight:      text(f.Get("fontWeight")),
		TextAlign:       text(f.Get("textAlign")),
		TextColor:       text(f.Get("textColor")),
		BackgroundColor: text(f.Get("backgroundColor")),
		Padding:         number(f.Get("padding")),
		Margin:          number(f.Get("margin")),
		BorderWidth:     number(f.Get("borderWidth")),
		BorderColor:     text(f.Get("borderColor")),
		BorderRadius:    number(f.Get("borderRadius")),
	}
}

func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return safeValue(v.Str)
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// safeValue 丢弃可能跳出 style 属性或引入外部资源的取值。
func safeValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, ";{}<>\"\\`") {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "url(") || strings.Contains(lower, "expression(") {
		return ""
	}
	return raw
}

func number(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		s := strings.TrimSuffix(strings.TrimSpace(v.Str), "px")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// CSS 生成内联 style 字符串，未设置的字段不输出。
func (f Formatting) CSS() string {
	var decls []string
	add := func(prop, value string) {
		decls = append(decls, prop+": "+value)
	}

	if f.TextColor != "" {
		add("color", f.TextColor)
	}
	if f.BackgroundColor != "" && !strings.EqualFold(f.BackgroundColor, "transparent") {
		add("background-color", f.BackgroundColor)
	}
	if f.FontFamily != "" {
		add("font-family", f.FontFamily)
	}
	if f.FontSize > 0 {
		add("font-size", px(f.FontSize))
	}
	if f.FontWeight != "" {
		add("font-weight", f.FontWeight)
	}
	if f.TextAlign != "" {
		add("text-align", f.TextAlign)
	}
	if f.Padding > 0 {
		add("padding", px(f.Padding))
	}
	if f.Margin > 0 {
		add("margin", px(f.Margin))
	}
	if f.BorderWidth > 0 {
		color := f.BorderColor
		if color == "" {
			color = defaultBorderColor
		}
		add("border", fmt.Sprintf("%s solid %s", px(f.BorderWidth), color))
		if f.BorderRadius > 0 {
			add("border-radius", px(f.BorderRadius))
		}
	}
	return strings.Join(decls, "; ")
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
