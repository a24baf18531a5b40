package search

import (
	"fmt"
	"regexp"
	"strings"
)

// SortOrder enumerates the supported result orderings.
type SortOrder string

const (
	SortRelevance  SortOrder = "relevance"
	SortName       SortOrder = "name"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortPopularity SortOrder = "popularity"
)

// ValidSortOrder reports whether s is one of the known orderings.
func ValidSortOrder(s SortOrder) bool {
	switch s {
	case SortRelevance, SortName, SortPriceAsc, SortPriceDesc, SortPopularity:
		return true
	}
	return false
}

// Filters are the structured, non-text constraints of a search request.
type Filters struct {
	Brand      string
	Category   string
	PriceMin   *float64
	PriceMax   *float64
	InStock    *bool
	Attributes map[string]string
}

// Empty reports whether no filter is active.
func (f Filters) Empty() bool {
	return f.Brand == "" && f.Category == "" && f.PriceMin == nil &&
		f.PriceMax == nil && f.InStock == nil && len(f.Attributes) == 0
}

// Query is the request-scoped description of one search. It is never
// persisted.
type Query struct {
	Text    string
	Page    int
	Limit   int
	Sort    SortOrder
	CityID  int64
	Filters Filters
}

// Offset returns the from-position for the engine request.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Body is a declarative search-engine request body. It is built once per
// request and performs no I/O itself.
type Body map[string]any

// sourceFields is the projection requested from the engine for every hit.
var sourceFields = []string{
	"product_id", "external_id", "sku", "name", "description",
	"brand_name", "series_name", "categories", "attributes",
	"unit", "min_sale", "base_price", "weight", "dimensions",
	"images", "documents", "created_at", "updated_at",
}

var separators = regexp.MustCompile(`[ \-_/]+`)

// RequestBuilder assembles engine request bodies from classified queries.
type RequestBuilder struct {
	Boosts BoostTable
}

// NewRequestBuilder returns a builder using the default boost table.
func NewRequestBuilder() RequestBuilder {
	return RequestBuilder{Boosts: DefaultBoosts()}
}

// Build produces the full request body: pagination, query clauses for the
// classified intent, filters, sort, highlighting and facet aggregations.
func (b RequestBuilder) Build(q Query) Body {
	body := Body{
		"size":             q.Limit,
		"from":             q.Offset(),
		"track_total_hits": true,
		"_source":          sourceFields,
	}

	text := strings.TrimSpace(q.Text)
	var must, should []any

	if text != "" {
		switch Classify(text) {
		case IntentCode:
			should = b.codeClauses(text)
		case IntentNumeric:
			must = append(must, b.numericClause(text))
		case IntentBrand:
			must = append(must, b.brandClause(text))
		case IntentCategory:
			must = append(must, b.categoryClause(text))
		default:
			must = append(must, b.textClause(text))
			should = append(should, b.attributeClause(text))
		}
		body["highlight"] = highlightSpec()
	}

	filter := filterClauses(q.Filters)

	if len(must) == 0 && len(should) == 0 && len(filter) == 0 {
		body["query"] = Body{"match_all": Body{}}
	} else {
		boolQuery := Body{}
		if len(must) > 0 {
			boolQuery["must"] = must
		}
		if len(should) > 0 {
			boolQuery["should"] = should
			if len(must) == 0 {
				boolQuery["minimum_should_match"] = 1
			}
		}
		if len(filter) > 0 {
			boolQuery["filter"] = filter
		}
		body["query"] = Body{"bool": boolQuery}
	}

	body["sort"] = sortSpec(q.Sort, text != "")
	body["aggs"] = aggregationSpec()
	return body
}

// codeClauses builds the should-ladder for article-code lookups: exact
// identifier matches far above prefix and n-gram fallbacks.
func (b RequestBuilder) codeClauses(code string) []any {
	lower := strings.ToLower(code)
	collapsed := separators.ReplaceAllString(lower, "")
	return []any{
		term("external_id.keyword", lower, b.Boosts.CodeExternalIDExact),
		term("sku.keyword", lower, b.Boosts.CodeSKUExact),
		term("external_id.keyword", collapsed, b.Boosts.CodeCollapsedExact),
		prefix("external_id.keyword", lower, b.Boosts.CodeExternalPrefix),
		prefix("sku.keyword", lower, b.Boosts.CodeSKUPrefix),
		Body{"match": Body{"external_id.ngram": Body{"query": code, "boost": b.Boosts.CodeNgram}}},
		Body{"match_phrase": Body{"name": Body{"query": code, "boost": b.Boosts.CodeNamePhrase, "slop": 1}}},
	}
}

func (b RequestBuilder) numericClause(query string) Body {
	return Body{
		"nested": Body{
			"path": "attributes",
			"query": Body{
				"match": Body{
					"attributes.value": Body{"query": query, "operator": "and"},
				},
			},
			"inner_hits": Body{
				"size":      5,
				"highlight": Body{"fields": Body{"attributes.value": Body{}}},
			},
		},
	}
}

func (b RequestBuilder) brandClause(query string) Body {
	return multiMatch(query, []string{
		boosted("brand_name", b.Boosts.FieldBrandName),
		boosted("brand_name.ngram", b.Boosts.FieldBrandNgram),
		boosted("name", 3),
		"search_text",
	}, Body{"operator": "and", "fuzziness": "AUTO"})
}

func (b RequestBuilder) categoryClause(query string) Body {
	return multiMatch(query, []string{
		boosted("categories", b.Boosts.FieldName),
		boosted("name", b.Boosts.FieldNameAuto),
		boosted("search_text", b.Boosts.FieldSearchText),
	}, Body{"operator": "and"})
}

// textClause builds the general free-text ladder: exact phrase, all words,
// most words, autocomplete, fuzzy, n-gram, then secondary fields.
func (b RequestBuilder) textClause(query string) Body {
	return Body{
		"bool": Body{
			"should": []any{
				Body{"match_phrase": Body{"name": Body{"query": query, "boost": b.Boosts.TextNamePhrase, "slop": 2}}},
				Body{"match": Body{"name": Body{"query": query, "operator": "and", "boost": b.Boosts.TextNameAll}}},
				Body{"match": Body{"name": Body{"query": query, "operator": "or", "minimum_should_match": "75%", "boost": b.Boosts.TextNamePart}}},
				Body{"match": Body{"name.autocomplete": Body{"query": query, "boost": b.Boosts.TextNameAuto}}},
				Body{"match": Body{"name": Body{"query": query, "fuzziness": "AUTO", "prefix_length": 2, "boost": b.Boosts.TextNameFuzzy}}},
				Body{"match": Body{"name.ngram": Body{"query": query, "boost": b.Boosts.TextNameNgram}}},
				multiMatch(query, []string{
					boosted("description", b.Boosts.FieldDescription),
					boosted("brand_name", b.Boosts.FieldBrandName),
					boosted("series_name", b.Boosts.FieldSeriesName),
					boosted("categories", b.Boosts.FieldCategories),
					boosted("search_text", b.Boosts.FieldSearchText),
				}, Body{"minimum_should_match": "50%", "fuzziness": "AUTO"}),
			},
			"minimum_should_match": 1,
		},
	}
}

func (b RequestBuilder) attributeClause(query string) Body {
	return Body{
		"nested": Body{
			"path": "attributes",
			"query": multiMatch(query, []string{
				"attributes.name", "attributes.value",
			}, nil),
			"boost": b.Boosts.TextAttributes,
		},
	}
}

func filterClauses(f Filters) []any {
	var out []any
	if f.Brand != "" {
		out = append(out, Body{"term": Body{"brand_name.keyword": f.Brand}})
	}
	if f.Category != "" {
		out = append(out, Body{"match": Body{"categories": f.Category}})
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		rng := Body{}
		if f.PriceMin != nil {
			rng["gte"] = *f.PriceMin
		}
		if f.PriceMax != nil {
			rng["lte"] = *f.PriceMax
		}
		out = append(out, Body{"range": Body{"base_price": rng}})
	}
	if f.InStock != nil {
		out = append(out, Body{"term": Body{"in_stock": *f.InStock}})
	}
	for name, value := range f.Attributes {
		out = append(out, Body{
			"nested": Body{
				"path": "attributes",
				"query": Body{
					"bool": Body{
						"must": []any{
							Body{"match": Body{"attributes.name": name}},
							Body{"match": Body{"attributes.value": value}},
						},
					},
				},
			},
		})
	}
	return out
}

// sortSpec resolves the sort enum to engine fields. Relevance without a text
// query degrades to name ascending: there is no score to sort by.
func sortSpec(sort SortOrder, hasQuery bool) []any {
	switch sort {
	case SortName:
		return []any{Body{"name.keyword": "asc"}}
	case SortPriceAsc:
		return []any{Body{"base_price": "asc"}}
	case SortPriceDesc:
		return []any{Body{"base_price": "desc"}}
	case SortPopularity:
		return []any{Body{"orders_count": "desc"}, Body{"name.keyword": "asc"}}
	default:
		if hasQuery {
			return []any{Body{"_score": "desc"}, Body{"name.keyword": "asc"}}
		}
		return []any{Body{"name.keyword": "asc"}}
	}
}

func highlightSpec() Body {
	return Body{
		"pre_tags":  []string{"<mark>"},
		"post_tags": []string{"</mark>"},
		"fields": Body{
			"name":        Body{"number_of_fragments": 0},
			"description": Body{"fragment_size": 150, "number_of_fragments": 2},
			"brand_name":  Body{"number_of_fragments": 0},
			"categories":  Body{"number_of_fragments": 0},
		},
	}
}

func aggregationSpec() Body {
	return Body{
		"brands": Body{
			"terms": Body{"field": "brand_name.keyword", "size": 50, "order": Body{"_count": "desc"}},
		},
		"categories": Body{
			"terms": Body{"field": "categories.keyword", "size": 30},
		},
		"attributes": Body{
			"nested": Body{"path": "attributes"},
			"aggs": Body{
				"names": Body{
					"terms": Body{"field": "attributes.name.keyword", "size": 20},
					"aggs": Body{
						"values": Body{
							"terms": Body{"field": "attributes.value.keyword", "size": 10},
						},
					},
				},
			},
		},
		"price_stats": Body{
			"stats": Body{"field": "base_price"},
		},
	}
}

func term(field, value string, boost float64) Body {
	return Body{"term": Body{field: Body{"value": value, "boost": boost}}}
}

func prefix(field, value string, boost float64) Body {
	return Body{"prefix": Body{field: Body{"value": value, "boost": boost}}}
}

func multiMatch(query string, fields []string, extra Body) Body {
	mm := Body{
		"query":  query,
		"fields": fields,
		"type":   "best_fields",
	}
	for k, v := range extra {
		mm[k] = v
	}
	return Body{"multi_match": mm}
}

func boosted(field string, boost float64) string {
	if boost == float64(int64(boost)) {
		return fmt.Sprintf("%s^%d", field, int64(boost))
	}
	return fmt.Sprintf("%s^%g", field, boost)
}
