package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searchdom "github.com/storefront/backend/internal/domain/search"
)

func TestParseParams_Defaults(t *testing.T) {
	p, err := ParseParams(RawParams{Query: "автомат"})
	require.NoError(t, err)

	assert.Equal(t, "автомат", p.Query)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, searchdom.SortRelevance, p.Sort)
	assert.Equal(t, int64(1), p.CityID)
	assert.True(t, p.Filters.Empty())
}

func TestParseParams_Bounds(t *testing.T) {
	tests := []struct {
		name string
		raw  RawParams
	}{
		{"page too large", RawParams{Page: 1001}},
		{"negative page", RawParams{Page: -1}},
		{"limit too large", RawParams{Limit: 101}},
		{"negative limit", RawParams{Limit: -5}},
		{"negative city", RawParams{CityID: -2}},
		{"unknown sort", RawParams{Sort: "cheapest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseParams_Filters(t *testing.T) {
	p, err := ParseParams(RawParams{
		Filters: `{"brand":"schneider","price_min":100,"price_max":500,"in_stock":true,"attributes":{"Ток":"16 А"}}`,
	})
	require.NoError(t, err)

	assert.Equal(t, "schneider", p.Filters.Brand)
	require.NotNil(t, p.Filters.PriceMin)
	assert.Equal(t, 100.0, *p.Filters.PriceMin)
	require.NotNil(t, p.Filters.InStock)
	assert.True(t, *p.Filters.InStock)
	assert.Equal(t, "16 А", p.Filters.Attributes["Ток"])
}

func TestParseParams_FilterErrors(t *testing.T) {
	tests := []struct {
		name    string
		filters string
	}{
		{"not json", `not-json`},
		{"unknown key", `{"color":"red"}`},
		{"negative price", `{"price_min":-1}`},
		{"price over cap", `{"price_max":1000001}`},
		{"inverted range", `{"price_min":500,"price_max":100}`},
		{"wrong type", `{"in_stock":"yes"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(RawParams{Filters: tt.filters})
			assert.Error(t, err)
		})
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "автомат 16А", "автомат 16А"},
		{"html stripped", `<script>alert(1)</script>кабель`, "alert(1) кабель"},
		{"control chars", "кабель\x00\x1f ввг", "кабель ввг"},
		{"whitespace collapsed", "  кабель \t ввг  ", "кабель ввг"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeQuery(tt.in))
		})
	}
}

func TestSanitizeQueryTruncates(t *testing.T) {
	long := ""
	for i := 0; i < MaxQueryLength+50; i++ {
		long += "д"
	}
	got := SanitizeQuery(long)
	assert.Len(t, []rune(got), MaxQueryLength)
}
