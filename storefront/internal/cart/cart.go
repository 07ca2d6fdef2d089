// Package cart holds the shopping cart in memory and mirrors every
// non-empty state to a storage.Store.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"ecommerce-storefront/pkg/pricing"
	"ecommerce-storefront/storefront/internal/gateway"
	"ecommerce-storefront/storefront/internal/storage"
)

var (
	ErrOutOfStock = errors.New("product is out of stock")
	ErrStockLimit = errors.New("quantity exceeds available stock")
)

// Line is one cart entry. Name and Price are snapshots of the product,
// refreshed by Add and Reprice.
type Line struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Cart struct {
	mu    sync.Mutex
	store storage.Store
	lines []Line
}

func New(store storage.Store) *Cart {
	return &Cart{store: store}
}

// Load replaces the in-memory cart with the persisted mirror. A mirror that
// cannot be decoded is discarded, and lines with a bad id or quantity are
// dropped.
func (c *Cart) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stored []Line
	err := storage.LoadJSON(ctx, c.store, storage.CartKey, &stored)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.lines = nil
		return nil
	case err != nil:
		log.Printf("Cart: discarding unreadable cart mirror: %v", err)
		c.lines = nil
		return c.store.Delete(ctx, storage.CartKey)
	}

	lines := make([]Line, 0, len(stored))
	for _, l := range stored {
		if l.ProductID <= 0 || l.Quantity < 1 {
			log.Printf("Cart: dropping invalid line %+v", l)
			continue
		}
		lines = append(lines, l)
	}
	c.lines = lines
	return nil
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// commit writes next through to the mirror and only then makes it the
// cart's state. An empty cart is not written; only Clear erases the mirror.
func (c *Cart) commit(ctx context.Context, next []Line) error {
	if len(next) > 0 {
		if err := storage.SaveJSON(ctx, c.store, storage.CartKey, next); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
	}
	c.lines = next
	return nil
}

func (c *Cart) snapshot() []Line {
	return append([]Line(nil), c.lines...)
}

// Add puts one unit of p in the cart. A line already in the cart takes p's
// current name and price.
func (c *Cart) Add(ctx context.Context, p gateway.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.Stock <= 0 {
		return fmt.Errorf("%s: %w", p.Name, ErrOutOfStock)
	}

	next := c.snapshot()
	if i := c.index(p.ID); i >= 0 {
		if next[i].Quantity+1 > p.Stock {
			return fmt.Errorf("only %d of %s available: %w", p.Stock, p.Name, ErrStockLimit)
		}
		next[i].Quantity++
		next[i].Name, next[i].Price = p.Name, p.Price
	} else {
		next = append(next, Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1})
	}
	return c.commit(ctx, next)
}

// SetQuantity overwrites the quantity of p's line. Quantities below 1 and
// products not in the cart are ignored.
func (c *Cart) SetQuantity(ctx context.Context, p gateway.Product, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		return nil
	}
	i := c.index(p.ID)
	if i < 0 {
		return nil
	}
	if quantity > p.Stock {
		return fmt.Errorf("only %d of %s available: %w", p.Stock, p.Name, ErrStockLimit)
	}
	next := c.snapshot()
	next[i].Quantity = quantity
	return c.commit(ctx, next)
}

func (c *Cart) Remove(ctx context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(productID)
	if i < 0 {
		return nil
	}
	next := append(c.snapshot()[:i], c.lines[i+1:]...)
	return c.commit(ctx, next)
}

// Reprice copies the current name and price of every line found in products
// onto the cart. It reports whether any price changed. Lines missing from
// products are left as they are.
func (c *Cart) Reprice(ctx context.Context, products []gateway.Product) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snapshot()
	priced, renamed := false, false
	for i, l := range next {
		for _, p := range products {
			if p.ID != l.ProductID {
				continue
			}
			if p.Price != l.Price {
				next[i].Price = p.Price
				priced = true
			}
			if p.Name != l.Name {
				next[i].Name = p.Name
				renamed = true
			}
			break
		}
	}
	if !priced && !renamed {
		return false, nil
	}
	if err := c.commit(ctx, next); err != nil {
		return false, err
	}
	return priced, nil
}

// Clear empties the cart and erases its mirror.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, storage.CartKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.lines = nil
	return nil
}

func (c *Cart) Items() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Totals() pricing.Totals {
	return Totals(c.Items())
}

// Totals prices lines at their snapshot prices.
func Totals(lines []Line) pricing.Totals {
	pl := make([]pricing.Line, len(lines))
	for i, l := range lines {
		pl[i] = pricing.Line{UnitPrice: l.Price, Quantity: l.Quantity}
	}
	return pricing.Compute(pl)
}
