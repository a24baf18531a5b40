package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// suggestField is the completion field in the product mapping.
const suggestField = "suggest"

// Client wraps the search engine client with domain-level operations against
// the product index. The index is a read-only projection maintained by an
// external indexer.
type Client struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a search client from configuration.
func NewClient(cfg *config.SearchConfig, logger *zap.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Hosts,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: create client: %w", err)
	}
	return &Client{
		es:      es,
		index:   cfg.Index,
		timeout: cfg.RequestTimeout,
		logger:  logger.Named("search"),
	}, nil
}

type rawResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source    catalog.Product     `json:"_source"`
			Score     *float64            `json:"_score"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
	Suggest      map[string][]struct {
		Options []struct {
			Text   string          `json:"text"`
			Source catalog.Product `json:"_source"`
		} `json:"options"`
	} `json:"suggest"`
}

// Search executes a query body against the product index.
func (c *Client) Search(ctx context.Context, body searchdom.Body) (*searchdom.Result, error) {
	raw, err := c.execute(ctx, body)
	if err != nil {
		return nil, err
	}

	result := &searchdom.Result{
		TookMillis:   raw.Took,
		Total:        raw.Hits.Total.Value,
		Hits:         make([]searchdom.Hit, 0, len(raw.Hits.Hits)),
		Aggregations: raw.Aggregations,
	}
	for _, h := range raw.Hits.Hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		result.Hits = append(result.Hits, searchdom.Hit{
			Product:   h.Source,
			Score:     score,
			Highlight: h.Highlight,
		})
	}
	return result, nil
}

// Suggest runs the completion suggester for an autocomplete prefix.
func (c *Client) Suggest(ctx context.Context, prefix string, size int) ([]searchdom.Suggestion, error) {
	body := searchdom.Body{
		"suggest": searchdom.Body{
			"product_suggest": searchdom.Body{
				"prefix": prefix,
				"completion": searchdom.Body{
					"field":           suggestField,
					"size":            size,
					"skip_duplicates": true,
					"fuzzy": searchdom.Body{
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"_source": []string{"product_id", "external_id", "sku", "name", "brand_name", "categories"},
	}

	raw, err := c.execute(ctx, body)
	if err != nil {
		return nil, err
	}

	var suggestions []searchdom.Suggestion
	for _, entry := range raw.Suggest["product_suggest"] {
		for _, opt := range entry.Options {
			suggestions = append(suggestions, searchdom.Suggestion{Text: opt.Text, Product: opt.Source})
		}
	}
	return suggestions, nil
}

// GetByCode fetches a single product by numeric product_id or by exact
// external_id. Returns nil when nothing matches.
func (c *Client) GetByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var idClause searchdom.Body
	if id, err := strconv.ParseInt(code, 10, 64); err == nil {
		idClause = searchdom.Body{"term": searchdom.Body{"product_id": id}}
	} else {
		idClause = searchdom.Body{"term": searchdom.Body{"external_id.keyword": code}}
	}

	body := searchdom.Body{
		"query": idClause,
		"size":  1,
	}

	raw, err := c.execute(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(raw.Hits.Hits) == 0 {
		return nil, nil
	}
	product := raw.Hits.Hits[0].Source
	return &product, nil
}

// GetByIDs fetches products by their numeric IDs, preserving index order of
// the response, not of the request.
func (c *Client) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body := searchdom.Body{
		"query": searchdom.Body{
			"terms": searchdom.Body{"product_id": ids},
		},
		"size": len(ids),
	}

	raw, err := c.execute(ctx, body)
	if err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(raw.Hits.Hits))
	for _, h := range raw.Hits.Hits {
		products = append(products, h.Source)
	}
	return products, nil
}

// Ping checks that the search engine is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return shared.ErrUpstream
	}
	defer res.Body.Close()
	if res.IsError() {
		return shared.ErrUpstream
	}
	return nil
}

func (c *Client) execute(ctx context.Context, body searchdom.Body) (*rawResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode body: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		c.logger.Error("search request failed", zap.Error(err))
		return nil, shared.ErrUpstream
	}
	defer res.Body.Close()

	if res.IsError() {
		responseBody, _ := io.ReadAll(res.Body)
		c.logger.Error("search engine returned error",
			zap.String("status", res.Status()),
			zap.ByteString("body", responseBody),
		)
		return nil, shared.ErrUpstream
	}

	var raw rawResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		c.logger.Error("search response decode failed", zap.Error(err))
		return nil, shared.ErrUpstream
	}
	return &raw, nil
}

// withTimeout bounds one engine call. A slow engine must surface as a
// retryable upstream failure, not hold the request open indefinitely.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
