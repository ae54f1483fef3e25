package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesLoaded(t *testing.T) {
	categories, err := Categories()
	require.NoError(t, err)
	require.Len(t, categories, 13)
	assert.Equal(t, "programming", categories[0].ID)
	assert.Equal(t, "Other", categories[12].Name)
}

func TestCategoryOfIsCaseInsensitive(t *testing.T) {
	id, ok := CategoryOf("postgresql")
	require.True(t, ok)
	assert.Equal(t, "database", id)

	// Swift 同时出现在 programming 与 mobile，取第一个。
	id, ok = CategoryOf("SWIFT")
	require.True(t, ok)
	assert.Equal(t, "programming", id)

	_, ok = CategoryOf("Basket Weaving")
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "DevOps & Cloud", DisplayName("devops"))
	assert.Equal(t, "Soft Stuff", DisplayName("Soft Stuff"))
	assert.Equal(t, "Other", DisplayName(OtherCategory))
}

func TestGroupByCategoryPreservesFirstSeenOrder(t *testing.T) {
	items := []any{
		map[string]any{"name": "Go", "category": "programming"},
		"Leadership",
		map[string]any{"name": "Redis", "category": "database"},
		map[string]any{"name": "Rust", "category": "programming", "proficiency": "Advanced"},
		map[string]any{"name": "Knitting", "category": "hobbies"},
	}

	groups := GroupByCategory(items)
	require.Len(t, groups, 4)
	assert.Equal(t, "Programming Languages", groups[0].Category)
	assert.Equal(t, []string{"Go", "Rust"}, groups[0].Skills)
	assert.Equal(t, "Other", groups[1].Category)
	assert.Equal(t, []string{"Leadership"}, groups[1].Skills)
	assert.Equal(t, "Databases", groups[2].Category)
	assert.Equal(t, "hobbies", groups[3].Category)
}

func TestGroupByCategoryNeverEmitsObjectObject(t *testing.T) {
	items := []any{
		map[string]any{"name": "[object Object]", "category": "tools"},
		map[string]any{"name": map[string]any{"nested": true}},
		map[string]any{"category": "tools"},
		[]any{"x"},
		nil,
		"",
		"Git",
	}

	groups := GroupByCategory(items)
	for _, g := range groups {
		for _, s := range g.Skills {
			assert.NotEqual(t, objectObject, s)
		}
	}
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Git"}, groups[0].Skills)
	assert.NotContains(t, Names(items), objectObject)
}

func TestLines(t *testing.T) {
	items := []any{
		map[string]any{"name": "Docker", "category": "devops"},
		map[string]any{"name": "Kubernetes", "category": "devops"},
		"Chess",
	}
	assert.Equal(t, "DevOps & Cloud: Docker, Kubernetes\nOther: Chess", Lines(items))
}

func TestParseProficiency(t *testing.T) {
	p, ok := ParseProficiency("expert")
	require.True(t, ok)
	assert.Equal(t, Expert, p)
	assert.Greater(t, Expert.Rank(), Beginner.Rank())

	_, ok = ParseProficiency("guru")
	assert.False(t, ok)

	p, ok = ParseProficiency("")
	assert.True(t, ok)
	assert.Equal(t, Proficiency(""), p)
}
