package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testGateway struct {
	router    *gin.Engine
	inventory *fakeInventory
	orders    *fakeOrders
	auth      *fakeAuth
}

func newTestGateway(limiter *IPRateLimiter) *testGateway {
	g := &testGateway{inventory: newFakeInventory(), orders: newFakeOrders(), auth: &fakeAuth{}}
	g.router = NewRouter(RouterDeps{
		Inventory:   g.inventory,
		Order:       g.orders,
		Auth:        g.auth,
		AuthLimiter: limiter,
	})
	return g
}

func (g *testGateway) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	g := newTestGateway(nil)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/v1/health", "", "").Code)
}

func TestListProductsForwardsFilters(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodGet, "/api/v1/products?category=toys,books&category=games&min_price=5&max_price=50&in_stock=true&search=kite&sort=price_asc&page=2&page_size=500", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	req := g.inventory.lastList
	assert.Equal(t, []string{"toys", "books", "games"}, req.Categories)
	assert.Equal(t, 5.0, *req.MinPrice)
	assert.Equal(t, 50.0, *req.MaxPrice)
	assert.True(t, req.InStockOnly)
	assert.Equal(t, "kite", req.Search)
	assert.Equal(t, "price_asc", req.Sort)
	assert.Equal(t, int32(100), req.PageSize)
	assert.Equal(t, int32(2), req.PageNumber)

	body := decode(t, w)
	assert.Equal(t, 1.0, body["total"])
}

func TestListProductsRejectsBadParams(t *testing.T) {
	g := newTestGateway(nil)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/v1/products?min_price=cheap", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/v1/products?page=0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/v1/products?in_stock=maybe", "", "").Code)
}

func TestListProductsMapsErrors(t *testing.T) {
	g := newTestGateway(nil)

	g.inventory.listErr = status.Error(codes.InvalidArgument, "Unknown sort option")
	w := g.do(http.MethodGet, "/api/v1/products?sort=random", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown sort option", decode(t, w)["error"])

	g.inventory.listErr = status.Error(codes.Internal, "mongo exploded")
	w = g.do(http.MethodGet, "/api/v1/products", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error in downstream service", decode(t, w)["error"])

	g.inventory.listErr = errors.New("connection refused")
	assert.Equal(t, http.StatusBadGateway, g.do(http.MethodGet, "/api/v1/products", "", "").Code)
}

func TestGetProduct(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodGet, "/api/v1/products/1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kite", decode(t, w)["name"])

	assert.Equal(t, http.StatusNotFound, g.do(http.MethodGet, "/api/v1/products/9", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/v1/products/abc", "", "").Code)
}

func TestListCategories(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodGet, "/api/v1/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["books","toys"]`, w.Body.String())
}

func TestOrdersRequireAuth(t *testing.T) {
	g := newTestGateway(nil)

	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/v1/orders", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/v1/orders", "garbage", "").Code)
}

func TestPlaceOrder(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodPost, "/api/v1/orders", "token-alice", `{"items":[{"product_id":1,"quantity":2}],"total":22}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", g.orders.lastPlace.UserID)
	assert.Equal(t, 22.0, *g.orders.lastPlace.DeclaredTotal)
	assert.Equal(t, int64(1), g.orders.lastPlace.Items[0].ProductID)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/v1/orders", "token-alice", `{"items":[]}`).Code)

	g.orders.placeErr = status.Error(codes.FailedPrecondition, "insufficient stock")
	w = g.do(http.MethodPost, "/api/v1/orders", "token-alice", `{"items":[{"product_id":1,"quantity":9}]}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient stock", decode(t, w)["error"])
}

func TestGetOrderOwnership(t *testing.T) {
	g := newTestGateway(nil)

	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/v1/orders/o-alice", "token-alice", "").Code)
	assert.Equal(t, http.StatusNotFound, g.do(http.MethodGet, "/api/v1/orders/o-alice", "token-mallory", "").Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/v1/orders/o-alice", "token-boss", "").Code)
	assert.Equal(t, http.StatusNotFound, g.do(http.MethodGet, "/api/v1/orders/missing", "token-alice", "").Code)
}

func TestListMyOrders(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodGet, "/api/v1/orders", "token-alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = g.do(http.MethodGet, "/api/v1/orders", "token-bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["total"])
}

func TestAdminRoutes(t *testing.T) {
	g := newTestGateway(nil)

	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/v1/admin/orders", "", "").Code)
	assert.Equal(t, http.StatusForbidden, g.do(http.MethodGet, "/api/v1/admin/orders", "token-alice", "").Code)

	w := g.do(http.MethodGet, "/api/v1/admin/orders?search=ali&status=pending&sort=total_desc", "token-boss", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ali", g.orders.lastList.Search)
	assert.Equal(t, "pending", g.orders.lastList.Status)
	assert.Equal(t, "total_desc", g.orders.lastList.Sort)

	w = g.do(http.MethodPatch, "/api/v1/admin/orders/o-alice/status", "token-boss", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", decode(t, w)["status"])

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPatch, "/api/v1/admin/orders/o-alice/status", "token-boss", `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusNotFound, g.do(http.MethodPatch, "/api/v1/admin/orders/nope/status", "token-boss", `{"status":"shipped"}`).Code)
}

func TestAdminProducts(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodPost, "/api/v1/admin/products", "token-boss", `{"name":"Yo-yo","category":"toys","price":3.5,"stock":10}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Yo-yo", g.inventory.lastCreate.Name)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/v1/admin/products", "token-boss", `{"name":"Free","price":0}`).Code)
	assert.Equal(t, http.StatusForbidden, g.do(http.MethodPost, "/api/v1/admin/products", "token-alice", `{"name":"Yo-yo","price":3.5}`).Code)

	w = g.do(http.MethodPut, "/api/v1/admin/products/1", "token-boss", `{"name":"Kite","category":"toys","price":12,"stock":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), g.inventory.lastUpdate.ID)
	assert.Equal(t, int32(7), g.inventory.lastUpdate.Stock)
	assert.Equal(t, http.StatusNotFound, g.do(http.MethodPut, "/api/v1/admin/products/9", "token-boss", `{"name":"Kite","price":12}`).Code)

	assert.Equal(t, http.StatusNoContent, g.do(http.MethodDelete, "/api/v1/admin/products/1", "token-boss", "").Code)
	assert.Equal(t, []int64{1}, g.inventory.deletedIDs)
}

func TestAuthRoutes(t *testing.T) {
	g := newTestGateway(nil)

	w := g.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"new@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "token-new", decode(t, w)["token"])

	assert.Equal(t, http.StatusConflict, g.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"taken@example.com","password":"hunter22"}`).Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"x@example.com","password":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/v1/auth/login", "", `{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@example.com","password":"nope"}`).Code)

	w = g.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"alice@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = g.do(http.MethodGet, "/api/v1/auth/user", "token-boss", "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["profile"].(map[string]any)
	assert.Equal(t, true, profile["is_admin"])

	assert.Equal(t, http.StatusNoContent, g.do(http.MethodPost, "/api/v1/auth/logout", "token-alice", "").Code)
	assert.Equal(t, []string{"jti-alice"}, g.auth.loggedOut)
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodPost, "/api/v1/auth/logout", "", "").Code)
}

func TestAuthRateLimit(t *testing.T) {
	g := newTestGateway(NewIPRateLimiter(0.001, 2))
	body := `{"email":"a@example.com","password":"nope"}`

	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, g.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/v1/categories", "", "").Code)
}
