package skills

import (
	"fmt"
	"strings"
)

// objectObject 是上游把对象直接转成字符串时留下的文本。
const objectObject = "[object Object]"

// Group 是一个分类及其下按出现顺序排列的技能名。
type Group struct {
	CategoryID string   `json:"category_id"`
	Category   string   `json:"category"`
	Skills     []string `json:"skills"`
}

// GroupByCategory 按分类分组，分类保持首次出现的顺序。
// 纯字符串归入 Other；名称为空或为 "[object Object]" 的记录被丢弃。
func GroupByCategory(items []any) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, item := range items {
		name, category := resolve(item)
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, Group{
				CategoryID: category,
				Category:   DisplayName(category),
			})
		}
		if name == "" || name == objectObject {
			continue
		}
		groups[pos].Skills = append(groups[pos].Skills, name)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Skills) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func resolve(item any) (name, category string) {
	switch v := item.(type) {
	case string:
		return strings.TrimSpace(v), OtherCategory
	case map[string]any:
		category = OtherCategory
		if c, ok := v["category"].(string); ok && strings.TrimSpace(c) != "" {
			category = strings.TrimSpace(c)
		}
		switch n := v["name"].(type) {
		case string:
			name = strings.TrimSpace(n)
		case nil:
			name = objectObject
		default:
			name = stringValue(n)
		}
		return name, category
	case nil:
		return "", OtherCategory
	default:
		return stringValue(v), OtherCategory
	}
}

func stringValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return objectObject
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Lines 渲染为 "分类: a, b" 的多行文本。
func Lines(items []any) string {
	groups := GroupByCategory(items)
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, g.Category+": "+strings.Join(g.Skills, ", "))
	}
	return strings.Join(lines, "\n")
}

// Names 返回所有可展示的技能名，已丢弃无效记录。
func Names(items []any) []string {
	var names []string
	for _, item := range items {
		name, _ := resolve(item)
		if name == "" || name == objectObject {
			continue
		}
		names = append(names, name)
	}
	return names
}
