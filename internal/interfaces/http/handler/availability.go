package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/catalog"
)

// AvailabilityHandler serves batch price/stock/delivery lookups, used by the
// storefront to refresh listings without re-running the search.
type AvailabilityHandler struct {
	BaseHandler
	provider catalog.DynamicDataProvider
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(provider catalog.DynamicDataProvider) *AvailabilityHandler {
	return &AvailabilityHandler{provider: provider}
}

// RegisterRoutes registers availability routes
func (h *AvailabilityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.Get)
}

// Get resolves dynamic data for a comma-separated list of product IDs.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cityID := int64(1)
	if sess := getSession(c); sess != nil && sess.CityID > 0 {
		cityID = sess.CityID
	}
	if raw := c.Query("city_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "city_id must be a positive integer")
			return
		}
		cityID = parsed
	}

	userID := ""
	if sess := getSession(c); sess != nil {
		userID = sess.UserID
	}

	data, err := h.provider.Resolve(c.Request.Context(), ids, cityID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// every requested ID gets an answer, defaults for unknown products
	items := make([]catalog.DynamicData, 0, len(ids))
	for _, id := range ids {
		if dd, ok := data[id]; ok {
			items = append(items, dd)
		} else {
			items = append(items, catalog.DefaultDynamicData(id))
		}
	}
	h.Success(c, gin.H{"items": items, "city_id": cityID})
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ids is required")
	}

	parts := strings.Split(raw, ",")
	if len(parts) > catalog.MaxDynamicBatch {
		return nil, fmt.Errorf("at most %d ids per request", catalog.MaxDynamicBatch)
	}

	ids := make([]int64, 0, len(parts))
	seen := make(map[int64]struct{}, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("ids must be positive integers")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
