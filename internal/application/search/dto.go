package search

import (
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductView is a product merged with its dynamic data, ready for clients.
type ProductView struct {
	catalog.Product
	Price     *catalog.Price      `json:"price"`
	Quantity  int                 `json:"quantity"`
	Available bool                `json:"available"`
	Delivery  catalog.Delivery    `json:"delivery"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// BrandBucket is one brand facet entry.
type BrandBucket struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CategoryBucket is one category facet entry.
type CategoryBucket struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// AttributeFacet groups the values seen for one attribute name.
type AttributeFacet struct {
	Name   string           `json:"name"`
	Values []AttributeValue `json:"values"`
}

// AttributeValue is one attribute value facet entry.
type AttributeValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// PriceStats is the price summary over the matched products.
type PriceStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Aggregations are the formatted facets of a search response. Facet lists
// are always present, empty when nothing matched; only the price summary is
// omitted when there is nothing to summarize.
type Aggregations struct {
	Brands     []BrandBucket    `json:"brands"`
	Categories []CategoryBucket `json:"categories"`
	Attributes []AttributeFacet `json:"attributes"`
	PriceStats *PriceStats      `json:"price_stats,omitempty"`
}

// Response is a complete search response.
type Response struct {
	Items        []ProductView `json:"items"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
	Pages        int           `json:"pages"`
	Intent       string        `json:"intent"`
	Aggregations *Aggregations `json:"aggregations,omitempty"`
}

// AutocompleteItem is one suggestion with enough context to render it.
type AutocompleteItem struct {
	Text      string `json:"text"`
	Type      string `json:"type"` // product, brand or category
	ProductID int64  `json:"product_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
}

// AutocompleteResponse is an autocomplete response.
type AutocompleteResponse struct {
	Items []AutocompleteItem `json:"items"`
}
