package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	searchdom "github.com/storefront/backend/internal/domain/search"
)

// Merger joins search hits with the dynamic data of their products. Result
// order always follows the search engine's ranking; dynamic data never
// reorders or drops products.
type Merger struct {
	provider catalog.DynamicDataProvider
	logger   *zap.Logger
}

// NewMerger creates a new Merger
func NewMerger(provider catalog.DynamicDataProvider, logger *zap.Logger) *Merger {
	return &Merger{provider: provider, logger: logger.Named("merger")}
}

// Merge resolves dynamic data for the hits in batches and attaches it. When
// the provider fails, every product falls back to defaults: a degraded
// result beats no result.
func (m *Merger) Merge(ctx context.Context, hits []searchdom.Hit, cityID int64, userID string) []ProductView {
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Product.ProductID)
	}

	dynamic := m.resolveAll(ctx, ids, cityID, userID)

	views := make([]ProductView, 0, len(hits))
	for _, h := range hits {
		data, ok := dynamic[h.Product.ProductID]
		if !ok {
			data = catalog.DefaultDynamicData(h.Product.ProductID)
		}
		views = append(views, ProductView{
			Product:   h.Product,
			Price:     data.Price,
			Quantity:  data.Stock.Quantity,
			Available: data.Available,
			Delivery:  data.Delivery,
			Highlight: h.Highlight,
		})
	}
	return views
}

func (m *Merger) resolveAll(ctx context.Context, ids []int64, cityID int64, userID string) map[int64]catalog.DynamicData {
	merged := make(map[int64]catalog.DynamicData, len(ids))
	for start := 0; start < len(ids); start += catalog.MaxDynamicBatch {
		end := start + catalog.MaxDynamicBatch
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := m.provider.Resolve(ctx, ids[start:end], cityID, userID)
		if err != nil {
			m.logger.Warn("dynamic data resolution failed, serving defaults",
				zap.Int("batch_size", end-start),
				zap.Int64("city_id", cityID),
				zap.Error(err),
			)
			continue
		}
		for id, data := range batch {
			merged[id] = data
		}
	}
	return merged
}
