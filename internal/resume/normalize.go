package resume

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind 标记规范化结果的形态。
type Kind int

const (
	Empty Kind = iota
	Single
	Many
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Many:
		return "many"
	default:
		return "empty"
	}
}

// corruptedItems 是历史序列化缺陷写入的 items 值。
const corruptedItems = "["

// 编辑器写入的默认占位文本。
const (
	PlaceholderJobTitle   = "Job Title"
	PlaceholderDegree     = "Degree"
	PlaceholderDegreeName = "Degree Name"
	PlaceholderProject    = "Project Name"
)

// Record 是一条扁平的内容记录。
type Record map[string]any

// String 返回第一个非空字段的字符串形式。
func (r Record) String(keys ...string) string {
	for _, key := range keys {
		if s := stringify(r[key]); s != "" {
			return s
		}
	}
	return ""
}

// Strings 把字段解释为字符串列表，兼容数组与逗号分隔字符串。
func (r Record) Strings(key string) []string {
	var out []string
	switch v := r[key].(type) {
	case []any:
		for _, item := range v {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%g", t))
	case bool, int, int64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// Result 是 Normalize 的带标签返回值。
// Shape 是识别出的内容形态，扁平字段签名可能与区块类型不一致。
type Result struct {
	Kind   Kind
	Shape  SectionType
	Record Record
	Items  []Record
}

// IsEmpty 表示该区块没有可展示的数据。
func (r Result) IsEmpty() bool {
	switch r.Kind {
	case Single:
		return len(r.Record) == 0
	case Many:
		return len(r.Items) == 0
	}
	return true
}

type signature struct {
	shape   SectionType
	markers []string
	fields  []string
}

// 顺序固定：education -> projects -> experience。
// title 同时出现在 experience 与 projects 中，必须按此顺序判定。
var signatures = []signature{
	{
		shape:   TypeEducation,
		markers: []string{"degree", "institution"},
		fields: []string{
			"degree", "institution", "location", "fieldOfStudy", "field",
			"start_date", "end_date", "startDate", "endDate", "graduationDate", "gpa", "description",
		},
	},
	{
		shape:   TypeProjects,
		markers: []string{"url", "link", "technologies"},
		fields: []string{
			"name", "title", "description", "url", "link", "technologies",
			"start_date", "end_date", "startDate", "endDate",
		},
	},
	{
		shape:   TypeExperience,
		markers: []string{"title", "jobTitle", "company"},
		fields: []string{
			"title", "jobTitle", "position", "company", "location",
			"start_date", "end_date", "startDate", "endDate", "description",
		},
	},
}

type placeholder struct {
	fields    []string
	sentinels []string
}

var placeholders = map[SectionType]placeholder{
	TypeExperience: {fields: []string{"title", "jobTitle"}, sentinels: []string{PlaceholderJobTitle}},
	TypeEducation:  {fields: []string{"degree"}, sentinels: []string{PlaceholderDegree, PlaceholderDegreeName}},
	TypeProjects:   {fields: []string{"name"}, sentinels: []string{PlaceholderProject}},
}

// Normalize 把存储的区块内容规范化为 Empty、Single 或 Many。
// 任何无法识别的形态都退化为 Empty，从不 panic。
func Normalize(sectionType SectionType, content []byte) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{Kind: Empty, Shape: sectionType}
		}
	}()

	empty := Result{Kind: Empty, Shape: sectionType}
	if len(content) == 0 || !gjson.ValidBytes(content) {
		return empty
	}
	root := gjson.ParseBytes(content)
	if !root.IsObject() {
		return empty
	}

	switch {
	case sectionType.IsMultiItem():
		return normalizeMulti(sectionType, root)
	case sectionType.IsFlatList():
		return normalizeFlatList(sectionType, root)
	default:
		record, ok := root.Value().(map[string]any)
		if !ok {
			return empty
		}
		return Result{Kind: Single, Shape: sectionType, Record: record}
	}
}

func normalizeMulti(sectionType SectionType, root gjson.Result) Result {
	items := root.Get("items")

	if items.IsArray() && len(items.Array()) > 0 {
		records := objectRecords(items)
		if len(records) == 0 {
			return Result{Kind: Empty, Shape: sectionType}
		}
		if merged, ok := mergePlaceholder(sectionType, records[0], root); ok {
			records[0] = merged
		}
		return Result{Kind: Many, Shape: sectionType, Items: records}
	}

	if items.Type == gjson.String && items.Str == corruptedItems {
		return Result{Kind: Empty, Shape: sectionType}
	}

	for _, sig := range signatures {
		if !hasAnyField(root, sig.markers) {
			continue
		}
		record := make(Record, len(sig.fields))
		for _, field := range sig.fields {
			value := root.Get(field)
			if value.Exists() && value.Type != gjson.Null {
				record[field] = value.Value()
			} else {
				record[field] = ""
			}
		}
		return Result{Kind: Many, Shape: sig.shape, Items: []Record{record}}
	}

	return Result{Kind: Empty, Shape: sectionType}
}

func normalizeFlatList(sectionType SectionType, root gjson.Result) Result {
	items := root.Get("items")
	if !items.IsArray() {
		return Result{Kind: Empty, Shape: sectionType}
	}
	var records []Record
	for _, item := range items.Array() {
		switch {
		case item.IsObject():
			if record, ok := item.Value().(map[string]any); ok {
				records = append(records, record)
			}
		case item.Type == gjson.String:
			if name := strings.TrimSpace(item.Str); name != "" {
				records = append(records, Record{"name": name})
			}
		case item.Type == gjson.Number:
			records = append(records, Record{"name": item.Raw})
		}
	}
	if len(records) == 0 {
		return Result{Kind: Empty, Shape: sectionType}
	}
	return Result{Kind: Many, Shape: sectionType, Items: records}
}

// objectRecords 只保留对象元素，非对象条目无法映射为字段记录。
func objectRecords(items gjson.Result) []Record {
	var records []Record
	for _, item := range items.Array() {
		if !item.IsObject() {
			continue
		}
		if record, ok := item.Value().(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

// mergePlaceholder 处理 items[0] 仍是占位文本而真实数据落在扁平字段上的记录。
func mergePlaceholder(sectionType SectionType, first Record, root gjson.Result) (Record, bool) {
	ph, ok := placeholders[sectionType]
	if !ok {
		return nil, false
	}

	triggered := false
	for _, field := range ph.fields {
		if !isSentinel(first.String(field), ph.sentinels) {
			continue
		}
		flat := strings.TrimSpace(root.Get(field).String())
		if flat != "" && !isSentinel(flat, ph.sentinels) {
			triggered = true
			break
		}
	}
	if !triggered {
		return nil, false
	}

	merged := make(Record, len(first))
	for k, v := range first {
		merged[k] = v
	}
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == "items" || name == "formatting" {
			return true
		}
		if value.Type == gjson.Null {
			return true
		}
		if value.Type == gjson.String && strings.TrimSpace(value.Str) == "" {
			return true
		}
		merged[name] = value.Value()
		return true
	})
	return merged, true
}

func isSentinel(value string, sentinels []string) bool {
	for _, s := range sentinels {
		if value == s {
			return true
		}
	}
	return false
}

func hasAnyField(root gjson.Result, fields []string) bool {
	for _, field := range fields {
		value := root.Get(field)
		switch value.Type {
		case gjson.Null:
			continue
		case gjson.String:
			if strings.TrimSpace(value.Str) != "" {
				return true
			}
		case gjson.JSON:
			if value.IsArray() && len(value.Array()) == 0 {
				continue
			}
			return true
		default:
			if value.Exists() {
				return true
			}
		}
	}
	return false
}
