package wishlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCollectionShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "flat array",
			raw:  `[{"id":"p1","name":"A"},{"id":"p2","name":"B"}]`,
			want: []string{"p1", "p2"},
		},
		{
			name: "nested items",
			raw:  `{"items":[{"id":"p1"}]}`,
			want: []string{"p1"},
		},
		{
			name: "items under data",
			raw:  `{"data":{"items":[{"id":"p1"}]}}`,
			want: []string{"p1"},
		},
		{
			name: "single document wrapper",
			raw:  `{"wishlist":{"items":[{"id":"p1"}]}}`,
			want: []string{"p1"},
		},
		{
			name: "wrapper under data",
			raw:  `{"data":{"wishlist":{"items":[{"id":"p1"}]}}}`,
			want: []string{"p1"},
		},
		{
			name: "flat array under data",
			raw:  `{"data":[{"id":"p1"}]}`,
			want: []string{"p1"},
		},
		{
			name: "empty items still matches",
			raw:  `{"items":[]}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, ok := extractCollection(json.RawMessage(tt.raw))
			require.True(t, ok)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestExtractCollectionUnknownShapes(t *testing.T) {
	for _, raw := range []string{"", `{"success":true}`, `"just a string"`, `{"data":{"count":3}}`} {
		_, ok := extractCollection(json.RawMessage(raw))
		assert.False(t, ok, "shape should not match: %s", raw)
	}
}

func TestLineMongoIDFallbacks(t *testing.T) {
	items, ok := extractCollection(json.RawMessage(`[
		{"id":"a"},
		{"_id":"b"},
		{"productId":"c"},
		{"name":"no id at all"}
	]`))
	require.True(t, ok)

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	// The id-less line is dropped.
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestLineEmbeddedProductDocumentWins(t *testing.T) {
	items, ok := extractCollection(json.RawMessage(`[
		{"productId":"flat","name":"flat name","price":100,
		 "product":{"_id":"doc","name":"doc name","price":200,"images":["x.jpg"],"reviewCount":12}}
	]`))
	require.True(t, ok)
	require.Len(t, items, 1)

	assert.Equal(t, "doc", items[0].ID)
	assert.Equal(t, "doc name", items[0].Name)
	assert.EqualValues(t, 200, items[0].Price)
	assert.Equal(t, "x.jpg", items[0].Image)
	assert.Equal(t, 12, items[0].Reviews)
}

func TestLineBareProductIDString(t *testing.T) {
	items, ok := extractCollection(json.RawMessage(`[
		{"name":"Banarasi Silk","price":8000,"product":"p42"}
	]`))
	require.True(t, ok)
	require.Len(t, items, 1)

	assert.Equal(t, "p42", items[0].ID)
	assert.Equal(t, "Banarasi Silk", items[0].Name)
}

func TestLineDefaults(t *testing.T) {
	items, ok := extractCollection(json.RawMessage(`[
		{"id":"p1","images":["first.jpg","second.jpg"],"reviewCount":7},
		{"id":"p2","inStock":false}
	]`))
	require.True(t, ok)
	require.Len(t, items, 2)

	// Images[0] backfills image, reviewCount backfills reviews, and stock
	// defaults to available.
	assert.Equal(t, "first.jpg", items[0].Image)
	assert.Equal(t, 7, items[0].Reviews)
	assert.True(t, items[0].InStock)

	assert.False(t, items[1].InStock)
}
