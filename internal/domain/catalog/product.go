package catalog

import "github.com/shopspring/decimal"

// Product is the static product document as indexed by the external search
// engine. It is read-only from this system's perspective: the indexer owns
// the documents, we only deserialize them at the search boundary.
type Product struct {
	ProductID   int64       `json:"product_id"`
	ExternalID  string      `json:"external_id"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	BrandName   string      `json:"brand_name,omitempty"`
	SeriesName  string      `json:"series_name,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	MinSale     int         `json:"min_sale,omitempty"`
	BasePrice   float64     `json:"base_price,omitempty"`
	Weight      float64     `json:"weight,omitempty"`
	Dimensions  string      `json:"dimensions,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Documents   []string    `json:"documents,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

// Attribute is one name/value pair of a product's characteristics. Order is
// meaningful and preserved from the document.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Price is the resolved price for one product in one city for one user.
type Price struct {
	Base       decimal.Decimal `json:"base"`
	Final      decimal.Decimal `json:"final"`
	HasSpecial bool            `json:"has_special"`
}

// Stock is the aggregate available quantity across a city's warehouses.
type Stock struct {
	Quantity int `json:"quantity"`
}

// Delivery describes the nearest delivery option for a product in a city.
type Delivery struct {
	Date string `json:"date,omitempty"`
	Text string `json:"text"`
}

// DynamicData is the per-(product, city, user) slice of a product that cannot
// live in the search index: price, stock and delivery. Computed on demand,
// never persisted by this system.
type DynamicData struct {
	ProductID int64    `json:"product_id"`
	Price     *Price   `json:"price"`
	Stock     Stock    `json:"stock"`
	Delivery  Delivery `json:"delivery"`
	Available bool     `json:"available"`
}

// FallbackDeliveryText is used when no dynamic data exists for a product.
const FallbackDeliveryText = "Уточняйте"

// DefaultDynamicData returns the zero-value dynamic record for a product that
// is not stocked anywhere. Products without dynamic data stay in results with
// these defaults instead of being dropped.
func DefaultDynamicData(productID int64) DynamicData {
	return DynamicData{
		ProductID: productID,
		Stock:     Stock{Quantity: 0},
		Delivery:  Delivery{Text: FallbackDeliveryText},
		Available: false,
	}
}
