package search

import (
	"context"
	"encoding/json"

	"github.com/storefront/backend/internal/domain/catalog"
)

// Hit is one matched product with its relevance score and highlights.
type Hit struct {
	Product   catalog.Product
	Score     float64
	Highlight map[string][]string
}

// Result is a decoded search engine response. Aggregations are kept raw,
// the application layer shapes them for clients.
type Result struct {
	TookMillis   int64
	Total        int64
	Hits         []Hit
	Aggregations map[string]json.RawMessage
}

// Suggestion is one autocomplete option.
type Suggestion struct {
	Text    string
	Product catalog.Product
}

// Engine abstracts the search engine behind domain-level operations.
type Engine interface {
	// Search executes a query body against the product index.
	Search(ctx context.Context, body Body) (*Result, error)

	// Suggest runs the completion suggester for an autocomplete prefix.
	Suggest(ctx context.Context, prefix string, size int) ([]Suggestion, error)

	// GetByCode fetches a product by numeric ID or exact external code.
	// Returns nil when nothing matches.
	GetByCode(ctx context.Context, code string) (*catalog.Product, error)

	// GetByIDs fetches products by their numeric IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error)
}
