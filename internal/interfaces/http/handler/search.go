package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appsearch "github.com/storefront/backend/internal/application/search"
)

// SearchHandler serves the catalog search surface: full search with facets,
// single-product lookup by code and autocomplete.
type SearchHandler struct {
	BaseHandler
	service *appsearch.Service
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service *appsearch.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// RegisterRoutes registers search routes
func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// the storefront calls one endpoint and switches on action
	rg.GET("/products", h.Products)
}

// Products dispatches on the action query parameter.
func (h *SearchHandler) Products(c *gin.Context) {
	switch action := c.DefaultQuery("action", "search"); action {
	case "search":
		h.search(c)
	case "get":
		h.get(c)
	case "autocomplete":
		h.autocomplete(c)
	default:
		h.BadRequest(c, "Unknown action: "+action)
	}
}

func (h *SearchHandler) search(c *gin.Context) {
	raw := appsearch.RawParams{
		Query:   c.Query("q"),
		Sort:    c.Query("sort"),
		Filters: c.Query("filters"),
	}
	var err error
	if raw.Page, err = intQuery(c, "page", 0); err != nil {
		h.BadRequest(c, "page must be an integer")
		return
	}
	if raw.Limit, err = intQuery(c, "limit", 0); err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}
	raw.CityID = h.cityID(c)

	resp, err := h.service.Search(c.Request.Context(), raw, h.identity(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *SearchHandler) get(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		h.BadRequest(c, "code is required")
		return
	}

	view, err := h.service.GetProduct(c.Request.Context(), code, h.cityID(c), h.identity(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

func (h *SearchHandler) autocomplete(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.BadRequest(c, "limit must be an integer")
		return
	}

	resp, err := h.service.Autocomplete(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// cityID prefers an explicit query parameter over the session city.
func (h *SearchHandler) cityID(c *gin.Context) int64 {
	if raw := c.Query("city_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	if sess := getSession(c); sess != nil {
		return sess.CityID
	}
	return 0
}

func (h *SearchHandler) identity(c *gin.Context) appsearch.Identity {
	sess := getSession(c)
	if sess == nil {
		return appsearch.Identity{}
	}
	return appsearch.Identity{
		UserID:    sess.UserID,
		SessionID: sess.ID.String(),
	}
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
