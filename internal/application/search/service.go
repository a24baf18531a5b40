package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/searchlog"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
)

// Autocomplete limits.
const (
	MinAutocompletePrefix = 2
	DefaultSuggestSize    = 10
)

// ResultCache is a best-effort response cache. Implementations must treat
// every failure as a miss.
type ResultCache interface {
	Key(params any) string
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

// LogSink accepts search log entries without blocking.
type LogSink interface {
	Record(entry searchlog.Entry) bool
}

// Identity carries who is searching, for pricing and logging.
type Identity struct {
	UserID    string
	SessionID string
}

// Service runs the search pipeline: validate, classify, build, execute,
// merge, format. The cache and the log sink are optional.
type Service struct {
	engine   searchdom.Engine
	builder  *searchdom.RequestBuilder
	merger   *Merger
	cache    ResultCache
	recorder LogSink
	logger   *zap.Logger
}

// NewService creates a new search Service. cache and recorder may be nil.
func NewService(
	engine searchdom.Engine,
	builder *searchdom.RequestBuilder,
	merger *Merger,
	cache ResultCache,
	recorder LogSink,
	logger *zap.Logger,
) *Service {
	return &Service{
		engine:   engine,
		builder:  builder,
		merger:   merger,
		cache:    cache,
		recorder: recorder,
		logger:   logger.Named("search-service"),
	}
}

type cacheKeyParams struct {
	Params Params `json:"params"`
	UserID string `json:"user_id"`
}

// Search executes a full product search.
func (s *Service) Search(ctx context.Context, raw RawParams, who Identity) (*Response, error) {
	params, err := ParseParams(raw)
	if err != nil {
		return nil, err
	}

	intent := searchdom.Classify(params.Query)
	started := time.Now()

	var cacheKey string
	if s.cache != nil {
		// prices depend on the user, so the user is part of the key
		cacheKey = s.cache.Key(cacheKeyParams{Params: params, UserID: who.UserID})
		var cached Response
		if s.cache.Get(ctx, cacheKey, &cached) {
			s.record(params, intent, who, cached.Total, time.Since(started), true)
			return &cached, nil
		}
	}

	body := s.builder.Build(searchdom.Query{
		Text:    params.Query,
		Page:    params.Page,
		Limit:   params.Limit,
		Sort:    params.Sort,
		CityID:  params.CityID,
		Filters: params.Filters,
	})

	result, err := s.engine.Search(ctx, body)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Items:        s.merger.Merge(ctx, result.Hits, params.CityID, who.UserID),
		Total:        result.Total,
		Page:         params.Page,
		Limit:        params.Limit,
		Pages:        pageCount(result.Total, params.Limit),
		Intent:       string(intent),
		Aggregations: FormatAggregations(result.Aggregations),
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, response)
	}
	s.record(params, intent, who, result.Total, time.Since(started), false)

	return response, nil
}

// GetProduct fetches one product by numeric ID or external code, with its
// dynamic data for the city.
func (s *Service) GetProduct(ctx context.Context, code string, cityID int64, who Identity) (*ProductView, error) {
	code = SanitizeQuery(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "product code is required")
	}
	if cityID < 1 {
		cityID = 1
	}

	product, err := s.engine.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.ErrNotFound
	}

	views := s.merger.Merge(ctx, []searchdom.Hit{{Product: *product}}, cityID, who.UserID)
	return &views[0], nil
}

// Autocomplete returns completion suggestions for a prefix. Prefixes
// shorter than MinAutocompletePrefix yield an empty result, not an error.
func (s *Service) Autocomplete(ctx context.Context, prefix string, limit int) (*AutocompleteResponse, error) {
	prefix = SanitizeQuery(prefix)
	if utf8.RuneCountInString(prefix) < MinAutocompletePrefix {
		return &AutocompleteResponse{Items: []AutocompleteItem{}}, nil
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultSuggestSize
	}

	suggestions, err := s.engine.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	items := make([]AutocompleteItem, 0, len(suggestions))
	for _, sug := range suggestions {
		items = append(items, AutocompleteItem{
			Text:      sug.Text,
			Type:      suggestionType(sug),
			ProductID: sug.Product.ProductID,
			SKU:       sug.Product.SKU,
		})
	}
	return &AutocompleteResponse{Items: items}, nil
}

// suggestionType classifies what a suggestion completes to, so the client
// can route brand and category picks to filtered searches.
func suggestionType(sug searchdom.Suggestion) string {
	if strings.EqualFold(sug.Text, sug.Product.BrandName) {
		return "brand"
	}
	for _, category := range sug.Product.Categories {
		if strings.EqualFold(sug.Text, category) {
			return "category"
		}
	}
	return "product"
}

func (s *Service) record(params Params, intent searchdom.Intent, who Identity, total int64, took time.Duration, cacheHit bool) {
	if s.recorder == nil || params.Query == "" {
		return
	}
	s.recorder.Record(searchlog.Entry{
		Query:      params.Query,
		Intent:     string(intent),
		CityID:     params.CityID,
		UserID:     who.UserID,
		SessionID:  who.SessionID,
		Total:      total,
		Page:       params.Page,
		TookMillis: took.Milliseconds(),
		CacheHit:   cacheHit,
	})
}

// pageCount is the number of pages needed for total results at the given
// page size. Zero results means zero pages.
func pageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
