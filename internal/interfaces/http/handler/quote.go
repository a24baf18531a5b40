package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appquote "github.com/storefront/backend/internal/application/quote"
	quotedom "github.com/storefront/backend/internal/domain/quote"
)

// QuoteHandler serves quote requests. All routes require a logged-in user.
type QuoteHandler struct {
	BaseHandler
	service *appquote.Service
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(service *appquote.Service) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// RegisterRoutes registers quote routes
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	{
		quotes.POST("", h.Create)
		quotes.GET("", h.List)
		quotes.GET("/:id", h.Get)
		quotes.POST("/:id/submit", h.Submit)
		quotes.POST("/:id/cancel", h.Cancel)
	}
}

// CreateQuoteRequest is the body of a quote creation request
type CreateQuoteRequest struct {
	Comment string `json:"comment"`
}

// QuoteLineResponse is one position of a quote
type QuoteLineResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// QuoteResponse is a quote rendered for the storefront
type QuoteResponse struct {
	ID        string              `json:"id"`
	Number    string              `json:"number"`
	Status    string              `json:"status"`
	CityID    int64               `json:"city_id"`
	Lines     []QuoteLineResponse `json:"lines"`
	Total     decimal.Decimal     `json:"total"`
	Comment   string              `json:"comment,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func newQuoteResponse(q *quotedom.Quote) QuoteResponse {
	lines := make([]QuoteLineResponse, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = QuoteLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		}
	}
	return QuoteResponse{
		ID:        q.ID.String(),
		Number:    q.Number,
		Status:    string(q.Status),
		CityID:    q.CityID,
		Lines:     lines,
		Total:     q.Total,
		Comment:   q.Comment,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// Create snapshots the user's cart into a draft quote
func (h *QuoteHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Login required")
		return
	}
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cityID := int64(1)
	if sess := getSession(c); sess != nil && sess.CityID > 0 {
		cityID = sess.CityID
	}

	q, err := h.service.CreateFromCart(c.Request.Context(), userID, cityID, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newQuoteResponse(q))
}

// List returns the user's quotes, newest first
func (h *QuoteHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Login required")
		return
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		h.BadRequest(c, "page must be an integer")
		return
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}

	quotes, total, err := h.service.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		items[i] = newQuoteResponse(q)
	}
	h.SuccessWithMeta(c, items, total, page, limit)
}

// Get returns one quote of the user
func (h *QuoteHandler) Get(c *gin.Context) {
	h.withQuote(c, h.service.Get)
}

// Submit moves a draft quote to submitted
func (h *QuoteHandler) Submit(c *gin.Context) {
	h.withQuote(c, h.service.Submit)
}

// Cancel cancels a quote
func (h *QuoteHandler) Cancel(c *gin.Context) {
	h.withQuote(c, h.service.Cancel)
}

func (h *QuoteHandler) withQuote(c *gin.Context, fn func(ctx context.Context, userID, quoteID uuid.UUID) (*quotedom.Quote, error)) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Login required")
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	q, err := fn(c.Request.Context(), userID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newQuoteResponse(q))
}
