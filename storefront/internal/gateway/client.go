// Package gateway is the storefront's HTTP client for the API gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("storefront API unavailable")

// APIError is a non-2xx reply from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request to %s: %w", path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Gateway client: Error calling %s %s: %v", method, u, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		log.Printf("Gateway client: %s %s returned %d: %s", method, path, resp.StatusCode, errBody.Error)
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("Gateway client: Error decoding response from %s: %v", path, err)
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func setPage(q url.Values, page, pageSize int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
}

func (c *Client) ListProducts(ctx context.Context, pq ProductQuery) (*ProductPage, error) {
	q := url.Values{}
	for _, cat := range pq.Categories {
		q.Add("category", cat)
	}
	if pq.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*pq.MinPrice, 'f', -1, 64))
	}
	if pq.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*pq.MaxPrice, 'f', -1, 64))
	}
	if pq.InStockOnly {
		q.Set("in_stock", "true")
	}
	if pq.Search != "" {
		q.Set("search", pq.Search)
	}
	if pq.Sort != "" {
		q.Set("sort", pq.Sort)
	}
	setPage(q, pq.Page, pq.PageSize)

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, "/products", "", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), "", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", nil, credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/user", token, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) PlaceOrder(ctx context.Context, token string, req PlaceOrderRequest) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, nil, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), token, nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListMyOrders(ctx context.Context, token string, page, pageSize int) (*OrderPage, error) {
	q := url.Values{}
	setPage(q, page, pageSize)

	var out OrderPage
	if err := c.do(ctx, http.MethodGet, "/orders", token, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminListOrders(ctx context.Context, token string, aq AdminOrderQuery) (*OrderPage, error) {
	q := url.Values{}
	if aq.Search != "" {
		q.Set("search", aq.Search)
	}
	if aq.Status != "" {
		q.Set("status", aq.Status)
	}
	if aq.Sort != "" {
		q.Set("sort", aq.Sort)
	}
	setPage(q, aq.Page, aq.PageSize)

	var out OrderPage
	if err := c.do(ctx, http.MethodGet, "/admin/orders", token, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) (*Order, error) {
	body := struct {
		Status string `json:"status"`
	}{status}

	var o Order
	path := "/admin/orders/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, token, nil, body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
