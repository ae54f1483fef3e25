package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCorruptedItemsIsEmpty(t *testing.T) {
	for _, typ := range SectionTypes {
		res := Normalize(typ, []byte(`{"items":"["}`))
		assert.True(t, res.IsEmpty(), "type %s", typ)
		if typ.IsMultiItem() || typ.IsFlatList() {
			assert.Equal(t, Empty, res.Kind, "type %s", typ)
		}
	}
}

func TestNormalizeCorruptedItemsIgnoresFlatFields(t *testing.T) {
	res := Normalize(TypeExperience, []byte(`{"items":"[","title":"Backend Engineer"}`))
	assert.Equal(t, Empty, res.Kind)
}

func TestNormalizeItemsVerbatim(t *testing.T) {
	content := []byte(`{"items":[{"title":"Engineer","company":"Acme"},{"title":"Intern","company":"Beta"}]}`)
	res := Normalize(TypeExperience, content)

	require.Equal(t, Many, res.Kind)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Engineer", res.Items[0].String("title"))
	assert.Equal(t, "Beta", res.Items[1].String("company"))
}

func TestNormalizeFlatExperience(t *testing.T) {
	res := Normalize(TypeExperience, []byte(`{"items":[],"title":"Backend Engineer","company":"Acme"}`))

	require.Equal(t, Many, res.Kind)
	require.Len(t, res.Items, 1)
	assert.Equal(t, TypeExperience, res.Shape)
	assert.Equal(t, "Backend Engineer", res.Items[0].String("title"))
	assert.Equal(t, "Acme", res.Items[0].String("company"))
	assert.Equal(t, "", res.Items[0]["location"])
}

func TestNormalizeIsIdempotentOnOwnOutput(t *testing.T) {
	first := Normalize(TypeExperience, []byte(`{"title":"Backend Engineer","company":"Acme"}`))
	require.Equal(t, Many, first.Kind)

	wrapped, err := json.Marshal(map[string]any{"items": first.Items})
	require.NoError(t, err)

	second := Normalize(TypeExperience, wrapped)
	require.Equal(t, Many, second.Kind)
	assert.Equal(t, first.Items, second.Items)
}

func TestNormalizeSignaturePriority(t *testing.T) {
	res := Normalize(TypeProjects, []byte(`{"degree":"BSc","technologies":"Go"}`))
	require.Equal(t, Many, res.Kind)
	assert.Equal(t, TypeEducation, res.Shape)

	res = Normalize(TypeExperience, []byte(`{"title":"Resume Builder","url":"https://example.com"}`))
	require.Equal(t, Many, res.Kind)
	assert.Equal(t, TypeProjects, res.Shape)
}

func TestNormalizePlaceholderMerge(t *testing.T) {
	content := []byte(`{
		"items":[{"title":"Job Title","company":"Company Name","highlights":["kept"]}],
		"title":"Staff Engineer",
		"company":"Acme",
		"location":""
	}`)
	res := Normalize(TypeExperience, content)

	require.Equal(t, Many, res.Kind)
	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.Equal(t, "Staff Engineer", item.String("title"))
	assert.Equal(t, "Acme", item.String("company"))
	assert.Equal(t, []any{"kept"}, item["highlights"])
	_, hasItems := item["items"]
	assert.False(t, hasItems)
}

func TestNormalizePlaceholderWithoutRealFlatDataStaysVerbatim(t *testing.T) {
	content := []byte(`{"items":[{"degree":"Degree Name","institution":"Institution Name"}],"degree":"Degree"}`)
	res := Normalize(TypeEducation, content)

	require.Equal(t, Many, res.Kind)
	assert.Equal(t, "Degree Name", res.Items[0].String("degree"))
	assert.Equal(t, "Institution Name", res.Items[0].String("institution"))
}

func TestNormalizeNoSignature(t *testing.T) {
	assert.Equal(t, Empty, Normalize(TypeEducation, []byte(`{"foo":"bar"}`)).Kind)
	assert.Equal(t, Empty, Normalize(TypeProjects, []byte(`{"items":[]}`)).Kind)
	assert.Equal(t, Empty, Normalize(TypeExperience, []byte(`{"title":"","company":""}`)).Kind)
}

func TestNormalizeSingleItemTypes(t *testing.T) {
	res := Normalize(TypeSummary, []byte(`{"text":"Ten years of Go."}`))
	require.Equal(t, Single, res.Kind)
	assert.Equal(t, "Ten years of Go.", res.Record.String("text"))

	res = Normalize(TypeContact, []byte(`{"name":"Ada","email":"ada@example.com"}`))
	require.Equal(t, Single, res.Kind)
	assert.Equal(t, "ada@example.com", res.Record.String("email"))
}

func TestNormalizeFlatLists(t *testing.T) {
	res := Normalize(TypeSkills, []byte(`{"items":["Go",{"name":"Redis","category":"database"},"",42]}`))
	require.Equal(t, Many, res.Kind)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Go", res.Items[0].String("name"))
	assert.Equal(t, "database", res.Items[1].String("category"))
	assert.Equal(t, "42", res.Items[2].String("name"))

	assert.Equal(t, Empty, Normalize(TypeLanguages, []byte(`{"items":"English"}`)).Kind)
	assert.Equal(t, Empty, Normalize(TypeSkills, []byte(`{}`)).Kind)
}

func TestNormalizeMalformedInput(t *testing.T) {
	inputs := [][]byte{nil, []byte(``), []byte(`not json`), []byte(`[1,2]`), []byte(`"text"`), []byte(`{"items":`)}
	for _, in := range inputs {
		for _, typ := range SectionTypes {
			assert.NotPanics(t, func() {
				res := Normalize(typ, in)
				assert.True(t, res.IsEmpty())
			})
		}
	}
}

func TestNormalizeMultiDropsNonObjectItems(t *testing.T) {
	assert.Equal(t, Empty, Normalize(TypeExperience, []byte(`{"items":["a","b"],"title":"Engineer"}`)).Kind)

	res := Normalize(TypeProjects, []byte(`{"items":["junk",{"name":"Forge"}]}`))
	require.Equal(t, Many, res.Kind)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Forge", res.Items[0].String("name"))
}
