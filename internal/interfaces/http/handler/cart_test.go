package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	cartdom "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/infrastructure/session"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

type noopSessionStore struct{}

func (noopSessionStore) Save(ctx context.Context, sess *session.Session) error { return nil }

type unusedCartRepo struct{}

func (unusedCartRepo) Load(ctx context.Context, userID uuid.UUID) (*cartdom.Cart, error) {
	return cartdom.New(), nil
}
func (unusedCartRepo) Save(ctx context.Context, userID uuid.UUID, c *cartdom.Cart) error { return nil }
func (unusedCartRepo) Delete(ctx context.Context, userID uuid.UUID) error                { return nil }

// catalogStub serves GetByIDs from a fixed product list; the other engine
// operations are never reached from the cart handler.
type catalogStub struct {
	products []catalog.Product
	err      error
}

func (s catalogStub) Search(ctx context.Context, body searchdom.Body) (*searchdom.Result, error) {
	panic("not used")
}
func (s catalogStub) Suggest(ctx context.Context, prefix string, size int) ([]searchdom.Suggestion, error) {
	panic("not used")
}
func (s catalogStub) GetByCode(ctx context.Context, code string) (*catalog.Product, error) {
	panic("not used")
}
func (s catalogStub) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	return s.products, s.err
}

// cartRouter wires the handler behind a middleware that pins one guest
// session, the way the session middleware would.
func cartRouter(sess *session.Session, engine searchdom.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := appcart.NewService(unusedCartRepo{}, noopSessionStore{}, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, sess)
		c.Next()
	})
	NewCartHandler(svc, engine).RegisterRoutes(r.Group("/api"))
	return r
}

func decodeCart(t *testing.T, body []byte) CartResponse {
	t.Helper()
	var resp struct {
		Data CartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestCartHandler_AddAndGet(t *testing.T) {
	sess := session.NewSession()
	r := cartRouter(sess, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":101,"quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w.Body.Bytes())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(101), cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decodeCart(t, w.Body.Bytes()).TotalQuantity)
}

func TestCartHandler_AddRejectsZeroQuantity(t *testing.T) {
	r := cartRouter(session.NewSession(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":101,"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartHandler_UpdateToZeroRemoves(t *testing.T) {
	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(7, 2))
	r := cartRouter(sess, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/7", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w.Body.Bytes()).Items)
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(1, 1))
	require.NoError(t, sess.Cart.Add(2, 2))
	r := cartRouter(sess, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cart/items/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeCart(t, w.Body.Bytes()).Items, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w.Body.Bytes()).Items)
}

func TestCartHandler_GetEnrichesFromIndex(t *testing.T) {
	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(101, 2))
	require.NoError(t, sess.Cart.Add(102, 1))
	engine := catalogStub{products: []catalog.Product{
		{ProductID: 101, Name: "Кабель ВВГ 3x2.5", SKU: "VVG-325", Unit: "м", BasePrice: 150.50},
	}}
	r := cartRouter(sess, engine)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w.Body.Bytes())
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "Кабель ВВГ 3x2.5", cart.Items[0].Name)
	assert.Equal(t, "VVG-325", cart.Items[0].SKU)
	assert.Equal(t, 150.50, cart.Items[0].BasePrice)
	// product 102 is no longer indexed, the line stays with bare fields
	assert.Equal(t, int64(102), cart.Items[1].ProductID)
	assert.Empty(t, cart.Items[1].Name)
}

func TestCartHandler_GetSurvivesIndexOutage(t *testing.T) {
	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(101, 2))
	r := cartRouter(sess, catalogStub{err: errors.New("index down")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w.Body.Bytes())
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}
