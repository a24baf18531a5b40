package catalog

import "context"

// MaxDynamicBatch caps the number of product IDs resolved in one provider
// call. Callers with more IDs must chunk.
const MaxDynamicBatch = 1000

// DynamicDataProvider resolves prices, stock and delivery for a batch of
// products in a given city. Implementations must tolerate unknown IDs by
// omitting them from the result; callers substitute DefaultDynamicData.
type DynamicDataProvider interface {
	Resolve(ctx context.Context, productIDs []int64, cityID int64, userID string) (map[int64]DynamicData, error)
}
