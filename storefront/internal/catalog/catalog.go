// Package catalog turns browse filters into product queries against the
// API gateway.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ecommerce-storefront/storefront/internal/gateway"
)

var ErrInvalidFilter = errors.New("invalid catalog filter")

type Sort string

const (
	SortDefault   Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNameAsc   Sort = "name_asc"
	SortNameDesc  Sort = "name_desc"
	SortNewest    Sort = "newest"
)

func (s Sort) Valid() bool {
	switch s {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortNewest:
		return true
	}
	return false
}

type Filter struct {
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	Search      string
}

func (f Filter) validate() error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: minimum price is negative", ErrInvalidFilter)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: maximum price is negative", ErrInvalidFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: minimum price is above maximum price", ErrInvalidFilter)
	}
	return nil
}

type Source interface {
	ListProducts(ctx context.Context, q gateway.ProductQuery) (*gateway.ProductPage, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// snapshotPageSize is the largest page the gateway serves.
const snapshotPageSize = 100

type Catalog struct {
	source Source

	mu         sync.Mutex
	lastFilter Filter
	lastSort   Sort
}

func New(source Source) *Catalog {
	return &Catalog{source: source}
}

func query(f Filter, s Sort, page, pageSize int) gateway.ProductQuery {
	return gateway.ProductQuery{
		Categories:  f.Categories,
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		InStockOnly: f.InStockOnly,
		Search:      strings.TrimSpace(f.Search),
		Sort:        string(s),
		Page:        page,
		PageSize:    pageSize,
	}
}

// Products returns one page of products matching f, ordered by s.
func (c *Catalog) Products(ctx context.Context, f Filter, s Sort, page, pageSize int) (*gateway.ProductPage, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, s)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return c.source.ListProducts(ctx, query(f, s, page, pageSize))
}

// All returns every product matching f and remembers the query for Refresh.
func (c *Catalog) All(ctx context.Context, f Filter, s Sort) ([]gateway.Product, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, s)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	var products []gateway.Product
	for page := 1; ; page++ {
		resp, err := c.source.ListProducts(ctx, query(f, s, page, snapshotPageSize))
		if err != nil {
			return nil, err
		}
		products = append(products, resp.Data...)
		if len(resp.Data) < snapshotPageSize || int64(len(products)) >= resp.Total {
			break
		}
	}

	c.mu.Lock()
	c.lastFilter, c.lastSort = f, s
	c.mu.Unlock()
	return products, nil
}

// Refresh re-runs the last All query.
func (c *Catalog) Refresh(ctx context.Context) ([]gateway.Product, error) {
	c.mu.Lock()
	f, s := c.lastFilter, c.lastSort
	c.mu.Unlock()
	return c.All(ctx, f, s)
}

// Categories returns the distinct categories known to the store.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	categories, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// FilterLocal narrows already fetched products by a case-insensitive match
// on name, description or category.
func FilterLocal(products []gateway.Product, search string) []gateway.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return products
	}
	var out []gateway.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the product with id from products.
func Find(products []gateway.Product, id int64) (gateway.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return gateway.Product{}, false
}
