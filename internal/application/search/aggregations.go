package search

import (
	"encoding/json"
)

type termsAggregation struct {
	Buckets []struct {
		Key      string `json:"key"`
		DocCount int64  `json:"doc_count"`
	} `json:"buckets"`
}

type nestedAttributesAggregation struct {
	Names struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int64  `json:"doc_count"`
			Values   struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"values"`
		} `json:"buckets"`
	} `json:"names"`
}

type statsAggregation struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// FormatAggregations shapes raw engine aggregations into client facets.
// Empty buckets produce empty facet lists, never missing keys; the whole
// section is omitted only when the engine sent no aggregations at all.
func FormatAggregations(raw map[string]json.RawMessage) *Aggregations {
	if len(raw) == 0 {
		return nil
	}

	aggs := &Aggregations{
		Brands:     []BrandBucket{},
		Categories: []CategoryBucket{},
		Attributes: []AttributeFacet{},
	}

	if section, ok := raw["brands"]; ok {
		var terms termsAggregation
		if json.Unmarshal(section, &terms) == nil {
			for _, b := range terms.Buckets {
				aggs.Brands = append(aggs.Brands, BrandBucket{Name: b.Key, Count: b.DocCount})
			}
		}
	}

	if section, ok := raw["categories"]; ok {
		var terms termsAggregation
		if json.Unmarshal(section, &terms) == nil {
			for _, b := range terms.Buckets {
				aggs.Categories = append(aggs.Categories, CategoryBucket{Name: b.Key, Count: b.DocCount})
			}
		}
	}

	if section, ok := raw["attributes"]; ok {
		var nested nestedAttributesAggregation
		if json.Unmarshal(section, &nested) == nil {
			for _, name := range nested.Names.Buckets {
				facet := AttributeFacet{Name: name.Key}
				for _, v := range name.Values.Buckets {
					facet.Values = append(facet.Values, AttributeValue{Value: v.Key, Count: v.DocCount})
				}
				if len(facet.Values) > 0 {
					aggs.Attributes = append(aggs.Attributes, facet)
				}
			}
		}
	}

	if section, ok := raw["price_stats"]; ok {
		var stats statsAggregation
		if json.Unmarshal(section, &stats) == nil && stats.Count > 0 {
			aggs.PriceStats = &PriceStats{Min: stats.Min, Max: stats.Max, Avg: stats.Avg}
		}
	}

	return aggs
}
