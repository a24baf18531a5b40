package cart

import (
	"sort"

	"github.com/storefront/backend/internal/domain/shared"
)

// Item is one cart position.
type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Cart holds the positions of one session or one user, keyed by product ID.
// A product appears at most once; adding the same product sums quantities.
type Cart struct {
	Items map[int64]Item `json:"items"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: make(map[int64]Item)}
}

// Add increases the quantity of productID by qty, creating the position if
// absent. Quantity must be positive.
func (c *Cart) Add(productID int64, qty int) error {
	if productID <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "product id must be positive")
	}
	if qty <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "quantity must be positive")
	}
	item := c.Items[productID]
	item.ProductID = productID
	item.Quantity += qty
	c.Items[productID] = item
	return nil
}

// Update sets the quantity of productID. A quantity of zero or less removes
// the position.
func (c *Cart) Update(productID int64, qty int) error {
	if productID <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "product id must be positive")
	}
	if qty <= 0 {
		delete(c.Items, productID)
		return nil
	}
	c.Items[productID] = Item{ProductID: productID, Quantity: qty}
	return nil
}

// Remove drops the position for productID. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID int64) {
	delete(c.Items, productID)
}

// Clear drops every position.
func (c *Cart) Clear() {
	c.Items = make(map[int64]Item)
}

// Merge folds other into c: overlapping products sum their quantities,
// the rest are unioned. other is not modified.
func (c *Cart) Merge(other *Cart) {
	if other == nil {
		return
	}
	for id, item := range other.Items {
		cur := c.Items[id]
		cur.ProductID = id
		cur.Quantity += item.Quantity
		c.Items[id] = cur
	}
}

// Len returns the number of positions.
func (c *Cart) Len() int {
	return len(c.Items)
}

// TotalQuantity returns the sum of all position quantities.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Sorted returns the positions ordered by product ID for stable responses.
func (c *Cart) Sorted() []Item {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}
