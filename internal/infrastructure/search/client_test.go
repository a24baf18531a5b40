package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// newTestClient points a Client at a stub engine. The product header is
// required by the client library's compatibility check.
func newTestClient(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.SearchConfig{
		Hosts:          []string{srv.URL},
		Index:          "products_current",
		RequestTimeout: timeout,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestClient_Search_DecodesHits(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"took": 4,
			"hits": {
				"total": {"value": 1},
				"hits": [{"_source": {"product_id": 7, "name": "Кабель ВВГ"}, "_score": 12.5}]
			},
			"aggregations": {"brands": {"buckets": []}}
		}`))
	})

	result, err := client.Search(context.Background(), map[string]any{"query": map[string]any{"match_all": map[string]any{}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, int64(7), result.Hits[0].Product.ProductID)
	assert.Equal(t, 12.5, result.Hits[0].Score)
	assert.Contains(t, result.Aggregations, "brands")
}

func TestClient_Search_EngineErrorIsUpstream(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"index_not_found_exception"}`, http.StatusNotFound)
	})

	_, err := client.Search(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, shared.ErrUpstream)
}

// A stalled engine must not hold the request open past the configured
// timeout.
func TestClient_Search_BoundedByRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, 30*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	// Cleanups run LIFO: close(release) must be registered after the server
	// is created so the handler unblocks before srv.Close waits on it.
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := client.Search(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, shared.ErrUpstream)
	assert.Less(t, time.Since(start), time.Second, "call must be cut off by the request timeout")
}

func TestClient_GetByCode_NoMatchReturnsNil(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"took": 1, "hits": {"total": {"value": 0}, "hits": []}}`))
	})

	product, err := client.GetByCode(context.Background(), "NOPE-404")
	require.NoError(t, err)
	assert.Nil(t, product)
}
