package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	cartdom "github.com/storefront/backend/internal/domain/cart"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// CartHandler serves the visitor's cart. Works for guests and logged-in
// users alike; the session middleware guarantees a session exists.
type CartHandler struct {
	BaseHandler
	service *appcart.Service
	engine  searchdom.Engine
}

// NewCartHandler creates a new CartHandler. The engine enriches cart lines
// with catalog data on reads and may be nil.
func NewCartHandler(service *appcart.Service, engine searchdom.Engine) *CartHandler {
	return &CartHandler{service: service, engine: engine}
}

// RegisterRoutes registers cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:product_id", h.UpdateItem)
		cart.DELETE("/items/:product_id", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// CartItemRequest is the body of add/update item requests
type CartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartLineResponse is one cart position. Catalog fields are filled from the
// search index on reads and omitted when the product is no longer indexed.
type CartLineResponse struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name,omitempty"`
	SKU       string  `json:"sku,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	BasePrice float64 `json:"base_price,omitempty"`
}

// CartResponse is the cart rendered for the storefront
type CartResponse struct {
	Items         []CartLineResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
}

func newCartResponse(c *cartdom.Cart) CartResponse {
	items := make([]CartLineResponse, 0, c.Len())
	for _, it := range c.Sorted() {
		items = append(items, CartLineResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return CartResponse{Items: items, TotalQuantity: c.TotalQuantity()}
}

// Get returns the current cart with lines enriched from the search index.
// Enrichment is best-effort: if the index is unreachable the raw lines are
// still returned.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), getSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := newCartResponse(cart)
	h.enrich(c, &resp)
	h.Success(c, resp)
}

func (h *CartHandler) enrich(c *gin.Context, resp *CartResponse) {
	if h.engine == nil || len(resp.Items) == 0 {
		return
	}

	ids := make([]int64, 0, len(resp.Items))
	for _, it := range resp.Items {
		ids = append(ids, it.ProductID)
	}

	products, err := h.engine.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		logger.FromGinContext(c).Warn("cart enrichment skipped, search index unavailable",
			zap.Error(err))
		return
	}

	byID := make(map[int64]int, len(products))
	for i, p := range products {
		byID[p.ProductID] = i
	}
	for i := range resp.Items {
		idx, ok := byID[resp.Items[i].ProductID]
		if !ok {
			continue
		}
		p := products[idx]
		resp.Items[i].Name = p.Name
		resp.Items[i].SKU = p.SKU
		resp.Items[i].Unit = p.Unit
		resp.Items[i].BasePrice = p.BasePrice
	}
}

// AddItem adds a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.service.Add(c.Request.Context(), getSession(c), req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newCartResponse(cart))
}

// UpdateItem sets the quantity of a cart position
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "product_id must be an integer")
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.service.Update(c.Request.Context(), getSession(c), productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newCartResponse(cart))
}

// RemoveItem drops a product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "product_id must be an integer")
		return
	}

	cart, err := h.service.Remove(c.Request.Context(), getSession(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newCartResponse(cart))
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.service.Clear(c.Request.Context(), getSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newCartResponse(cart))
}
