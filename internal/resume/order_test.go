package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSectionsStableOnTies(t *testing.T) {
	sections := []Section{
		{ID: 1, Order: 2},
		{ID: 2, Order: 0},
		{ID: 3, Order: 0},
		{ID: 4, Order: 1},
		{ID: 5, Order: 0},
	}

	for i := 0; i < 5; i++ {
		sorted := SortSections(sections)
		ids := make([]uint, 0, len(sorted))
		for _, s := range sorted {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, []uint{2, 3, 5, 4, 1}, ids)
	}
	assert.Equal(t, uint(1), sections[0].ID, "input must not be reordered")
}

func TestOrderLenientDecoding(t *testing.T) {
	var sections []Section
	raw := `[
		{"id":1,"type":"summary","order":"3"},
		{"id":2,"type":"skills"},
		{"id":3,"type":"projects","order":"abc"},
		{"id":4,"type":"education","order":null},
		{"id":5,"type":"experience","order":1.0}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &sections))

	assert.Equal(t, Order(3), sections[0].Order)
	assert.Equal(t, Order(0), sections[1].Order)
	assert.Equal(t, Order(0), sections[2].Order)
	assert.Equal(t, Order(0), sections[3].Order)
	assert.Equal(t, Order(1), sections[4].Order)

	sorted := SortSections(sections)
	assert.Equal(t, []uint{2, 3, 4, 5, 1}, []uint{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID, sorted[4].ID})
}

func TestOrderOutOfRangeDefaultsToZero(t *testing.T) {
	var sections []Section
	raw := `[
		{"id":1,"type":"summary","order":1},
		{"id":2,"type":"skills","order":1e300},
		{"id":3,"type":"projects","order":"NaN"},
		{"id":4,"type":"education","order":"-Inf"},
		{"id":5,"type":"experience","order":"-1e300"}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &sections))

	for _, s := range sections[1:] {
		assert.Equal(t, Order(0), s.Order, "section %d", s.ID)
	}

	sorted := SortSections(sections)
	assert.Equal(t, []uint{2, 3, 4, 5, 1}, []uint{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID, sorted[4].ID})
}
