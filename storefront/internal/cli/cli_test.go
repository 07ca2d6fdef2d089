package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"ecommerce-storefront/storefront/internal/assistant"
	"ecommerce-storefront/storefront/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway serves just enough of the API gateway for the CLI.
type fakeGateway struct {
	mu       sync.Mutex
	products map[int64]*gateway.Product
	orders   []gateway.Order
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		var out []gateway.Product
		for id := int64(1); id <= int64(len(g.products)); id++ {
			out = append(out, *g.products[id])
		}
		writeJSON(w, http.StatusOK, gateway.ProductPage{Data: out, Total: int64(len(out)), Page: 1, PageSize: 12})
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		p, ok := g.products[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []string{"outdoor", "toys"})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, gateway.Session{
			Token:     "tok",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      gateway.User{ID: "u1", Email: body.Email, Profile: &gateway.Profile{UserID: "u1"}},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		var req gateway.PlaceOrderRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, item := range req.Items {
			g.products[item.ProductID].Stock -= item.Quantity
		}
		order := gateway.Order{ID: "order-" + strconv.Itoa(len(g.orders)+1), UserID: "u1", Status: "pending", Total: *req.Total}
		g.orders = append(g.orders, order)
		writeJSON(w, http.StatusCreated, order)
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		writeJSON(w, http.StatusOK, gateway.OrderPage{Data: g.orders, Total: int64(len(g.orders)), Page: 1, PageSize: 10})
	})

	api := http.NewServeMux()
	api.Handle("/api/v1/", http.StripPrefix("/api/v1", mux))
	return api
}

type harness struct {
	t        *testing.T
	gw       *fakeGateway
	apiURL   string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	gw := &fakeGateway{products: map[int64]*gateway.Product{
		1: {ID: 1, Name: "Kite", Category: "outdoor", Price: 10, Stock: 5},
		2: {ID: 2, Name: "Yo-yo", Category: "toys", Price: 2.5, Stock: 0},
	}}
	srv := httptest.NewServer(gw.handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, gw: gw, apiURL: srv.URL + "/api/v1", stateDir: t.TempDir()}
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api", h.apiURL, "--state-dir", h.stateDir}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestProductsAndCategories(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("products")
	require.NoError(t, err)
	assert.Contains(t, out, "Kite")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "Page 1, 2 of 2 products")

	out, _, err = h.run("categories")
	require.NoError(t, err)
	assert.Equal(t, "outdoor\ntoys\n", out)

	_, stderr, err := h.run("products", "--min-price", "9", "--max-price", "1")
	require.Error(t, err)
	assert.Contains(t, stderr, "Could not load products")
}

func TestShoppingSession(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("cart", "add", "2")
	require.Error(t, err)
	assert.Contains(t, stderr, "Out of stock")

	_, stderr, err = h.run("cart", "add", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Added to cart: Kite")

	_, _, err = h.run("cart", "set", "1", "2")
	require.NoError(t, err)

	out, _, err := h.run("cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Total 22.00")

	_, stderr, err = h.run("checkout")
	require.Error(t, err)
	assert.Contains(t, stderr, "Sign in required")

	_, stderr, err = h.run("login", "--email", "a@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid email or password")

	_, _, err = h.run("login", "--email", "a@example.com", "--password", "secret")
	require.NoError(t, err)

	out, _, err = h.run("checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Order order-1 placed: 2 items, total 22.00")
	assert.Equal(t, 3, h.gw.products[1].Stock)

	out, _, err = h.run("cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	out, _, err = h.run("orders")
	require.NoError(t, err)
	assert.Contains(t, out, "order-1")

	_, stderr, err = h.run("admin", "set-status", "order-1", "shipped")
	require.Error(t, err)
	assert.Contains(t, stderr, "Access denied")

	_, _, err = h.run("logout")
	require.NoError(t, err)

	_, stderr, err = h.run("orders")
	require.Error(t, err)
	assert.Contains(t, stderr, "Not signed in")
}

func TestInvalidArguments(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("cart", "add", "zero")
	assert.EqualError(t, err, `invalid product id "zero"`)

	_, _, err = h.run("cart", "set", "1", "many")
	assert.EqualError(t, err, `invalid quantity "many"`)
}

func TestChat(t *testing.T) {
	h := newHarness(t)
	assistantSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]string{"text": "Take the kite."}}}}},
		})
	}))
	defer assistantSrv.Close()

	out, _, err := h.run("chat")
	require.NoError(t, err)
	assert.Contains(t, out, "New Chat")

	out, _, err = h.run("--assistant-url", assistantSrv.URL, "chat", "ask", "what", "should", "I", "take", "to", "the", "beach")
	require.NoError(t, err)
	assert.Equal(t, "Take the kite.\n", out)

	out, _, err = h.run("chat", "list")
	require.NoError(t, err)
	assert.Regexp(t, `what should I\.\.\.\s+2\n`, out)

	_, stderr, err := h.run("chat", "ask", "hello")
	require.ErrorIs(t, err, assistant.ErrNotConfigured)
	assert.Contains(t, stderr, "Assistant unavailable")

	_, stderr, err = h.run("chat", "show", "nope")
	require.Error(t, err)
	assert.Contains(t, stderr, "Chat not found")
}
