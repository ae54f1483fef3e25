package skills

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Proficiency 是技能熟练度的有序枚举。
type Proficiency string

const (
	Beginner     Proficiency = "Beginner"
	Intermediate Proficiency = "Intermediate"
	Advanced     Proficiency = "Advanced"
	Expert       Proficiency = "Expert"
)

var proficiencyRank = map[Proficiency]int{
	Beginner:     1,
	Intermediate: 2,
	Advanced:     3,
	Expert:       4,
}

// ParseProficiency 忽略大小写解析熟练度；空字符串合法，表示未设置。
func ParseProficiency(raw string) (Proficiency, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	for p := range proficiencyRank {
		if strings.EqualFold(string(p), raw) {
			return p, true
		}
	}
	return "", false
}

// Rank 返回熟练度的序号，未设置为 0。
func (p Proficiency) Rank() int {
	return proficiencyRank[p]
}

// Category 是预置技能分类。
type Category struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Skills []string `yaml:"skills" json:"skills"`
}

// OtherCategory 是未归类技能使用的分类标识。
const OtherCategory = "Other"

type taxonomy struct {
	Categories []Category `yaml:"categories"`
}

var (
	loadOnce   sync.Once
	loaded     taxonomy
	loadErr    error
	byID       map[string]Category
	bySkillKey map[string]string
)

func load() {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(taxonomyYAML, &loaded); err != nil {
			loadErr = fmt.Errorf("decode skill taxonomy: %w", err)
			return
		}
		byID = make(map[string]Category, len(loaded.Categories))
		bySkillKey = make(map[string]string)
		for _, c := range loaded.Categories {
			byID[c.ID] = c
			for _, s := range c.Skills {
				key := strings.ToLower(s)
				if _, exists := bySkillKey[key]; !exists {
					bySkillKey[key] = c.ID
				}
			}
		}
	})
}

// Categories 返回预置分类列表的副本。
func Categories() ([]Category, error) {
	load()
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]Category, len(loaded.Categories))
	copy(out, loaded.Categories)
	return out, nil
}

// CategoryOf 按技能名（忽略大小写）查找所属分类。
func CategoryOf(skill string) (string, bool) {
	load()
	id, ok := bySkillKey[strings.ToLower(strings.TrimSpace(skill))]
	return id, ok
}

// DisplayName 把分类标识解析为展示名，未知标识原样返回。
func DisplayName(categoryID string) string {
	load()
	if c, ok := byID[categoryID]; ok {
		return c.Name
	}
	return categoryID
}
