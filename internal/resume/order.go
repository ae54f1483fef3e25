package resume

import "sort"

// SortSections 按 order 升序稳定排序，order 相同时保持原有顺序。
// 返回新切片，不修改入参。
func SortSections(sections []Section) []Section {
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// FindByType 返回第一个给定类型的区块。
func FindByType(sections []Section, t SectionType) (Section, bool) {
	for _, s := range sections {
		if SectionType(s.Type) == t {
			return s, true
		}
	}
	return Section{}, false
}
