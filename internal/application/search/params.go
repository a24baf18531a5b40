package search

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
)

// Validation bounds for incoming search parameters.
const (
	MaxPage        = 1000
	MaxLimit       = 100
	DefaultLimit   = 20
	MaxQueryLength = 255
	MaxPrice       = 1_000_000
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// RawParams are the unvalidated query-string inputs of a search request.
type RawParams struct {
	Query   string
	Page    int
	Limit   int
	Sort    string
	CityID  int64
	Filters string // JSON object, whitelisted keys only
}

// Params are validated, sanitized search parameters. They also serve as the
// cache key material: identical Params mean an identical search.
type Params struct {
	Query   string              `json:"query"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	Sort    searchdom.SortOrder `json:"sort"`
	CityID  int64               `json:"city_id"`
	Filters searchdom.Filters   `json:"filters"`
}

// ParseParams validates and normalizes raw request parameters.
func ParseParams(raw RawParams) (Params, error) {
	p := Params{
		Query:  SanitizeQuery(raw.Query),
		Page:   raw.Page,
		Limit:  raw.Limit,
		CityID: raw.CityID,
	}

	if p.Page == 0 {
		p.Page = 1
	}
	if p.Page < 1 || p.Page > MaxPage {
		return Params{}, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("page must be between 1 and %d", MaxPage))
	}

	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return Params{}, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	if p.CityID == 0 {
		p.CityID = 1
	}
	if p.CityID < 1 {
		return Params{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "city_id must be positive")
	}

	sort := searchdom.SortOrder(raw.Sort)
	if raw.Sort == "" {
		sort = searchdom.SortRelevance
	}
	if !searchdom.ValidSortOrder(sort) {
		return Params{}, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("unknown sort order %q", raw.Sort))
	}
	p.Sort = sort

	filters, err := parseFilters(raw.Filters)
	if err != nil {
		return Params{}, err
	}
	p.Filters = filters

	return p, nil
}

// SanitizeQuery strips markup and control characters and truncates overly
// long input. An empty result means a browse-all request.
func SanitizeQuery(query string) string {
	query = tagPattern.ReplaceAllString(query, " ")
	query = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, query)
	query = strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(query) > MaxQueryLength {
		runes := []rune(query)
		query = string(runes[:MaxQueryLength])
	}
	return query
}

// parseFilters decodes the filters JSON and keeps only whitelisted keys.
// Unknown keys are rejected so clients learn about typos instead of
// silently getting unfiltered results.
func parseFilters(raw string) (searchdom.Filters, error) {
	var filters searchdom.Filters
	if strings.TrimSpace(raw) == "" {
		return filters, nil
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return filters, shared.NewDomainError(shared.ErrInvalidInput.Code, "filters must be a JSON object")
	}

	for key, value := range decoded {
		switch key {
		case "brand":
			if err := json.Unmarshal(value, &filters.Brand); err != nil {
				return filters, filterError(key)
			}
			filters.Brand = SanitizeQuery(filters.Brand)
		case "category":
			if err := json.Unmarshal(value, &filters.Category); err != nil {
				return filters, filterError(key)
			}
			filters.Category = SanitizeQuery(filters.Category)
		case "price_min":
			if err := json.Unmarshal(value, &filters.PriceMin); err != nil {
				return filters, filterError(key)
			}
		case "price_max":
			if err := json.Unmarshal(value, &filters.PriceMax); err != nil {
				return filters, filterError(key)
			}
		case "in_stock":
			if err := json.Unmarshal(value, &filters.InStock); err != nil {
				return filters, filterError(key)
			}
		case "attributes":
			if err := json.Unmarshal(value, &filters.Attributes); err != nil {
				return filters, filterError(key)
			}
			cleaned := make(map[string]string, len(filters.Attributes))
			for name, val := range filters.Attributes {
				name, val = SanitizeQuery(name), SanitizeQuery(val)
				if name != "" && val != "" {
					cleaned[name] = val
				}
			}
			filters.Attributes = cleaned
		default:
			return filters, shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("unknown filter %q", key))
		}
	}

	if err := validatePriceRange(filters.PriceMin, filters.PriceMax); err != nil {
		return searchdom.Filters{}, err
	}
	return filters, nil
}

func validatePriceRange(min, max *float64) error {
	for _, price := range []*float64{min, max} {
		if price != nil && (*price < 0 || *price > MaxPrice) {
			return shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("price must be between 0 and %d", MaxPrice))
		}
	}
	if min != nil && max != nil && *min > *max {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "price_min cannot exceed price_max")
	}
	return nil
}

func filterError(key string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("invalid value for filter %q", key))
}
