// Package checkout turns the cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"ecommerce-storefront/pkg/pricing"
	"ecommerce-storefront/storefront/internal/cart"
	"ecommerce-storefront/storefront/internal/catalog"
	"ecommerce-storefront/storefront/internal/gateway"
)

var (
	ErrAuthRequired       = errors.New("sign in to check out")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// AuthRequiredError sends the caller to sign in and back to ReturnTo.
type AuthRequiredError struct {
	ReturnTo string
}

func (e *AuthRequiredError) Error() string { return ErrAuthRequired.Error() }

func (e *AuthRequiredError) Is(target error) bool { return target == ErrAuthRequired }

// InsufficientStockError names the first cart line the snapshot cannot
// cover. Missing is set when the product is not in the snapshot at all.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
	Missing   bool
}

func (e *InsufficientStockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s is no longer available", e.Name)
	}
	return fmt.Sprintf("only %d of %s in stock, %d requested", e.Available, e.Name, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type Session interface {
	IsLoggedIn() bool
	Token() string
}

type Cart interface {
	Items() []cart.Line
	Reprice(ctx context.Context, products []gateway.Product) (bool, error)
	Clear(ctx context.Context) error
}

type Orders interface {
	PlaceOrder(ctx context.Context, token string, req gateway.PlaceOrderRequest) (*gateway.Order, error)
}

type Refresher interface {
	Refresh(ctx context.Context) ([]gateway.Product, error)
}

type Confirmation struct {
	OrderID   string
	Total     float64
	ItemCount int
	// PricesUpdated is set when cart prices were brought in line with the
	// snapshot before the order was placed.
	PricesUpdated bool
	// ClearErr is set when the order was placed but the cart could not be
	// emptied.
	ClearErr error
	// Products is the product snapshot after the purchase.
	Products []gateway.Product
}

// CartPath is where an unauthenticated checkout returns after sign-in.
const CartPath = "/cart"

type Sequencer struct {
	session  Session
	cart     Cart
	orders   Orders
	products Refresher
	inFlight atomic.Bool
}

func NewSequencer(session Session, c Cart, orders Orders, products Refresher) *Sequencer {
	return &Sequencer{session: session, cart: c, orders: orders, products: products}
}

// Checkout places an order for the cart, checking it first against
// snapshot, the last product list the caller fetched. Cart prices are
// updated from snapshot before the order total is declared. The cart is
// emptied only once the order is placed.
func (s *Sequencer) Checkout(ctx context.Context, snapshot []gateway.Product) (*Confirmation, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer s.inFlight.Store(false)

	if !s.session.IsLoggedIn() {
		return nil, &AuthRequiredError{ReturnTo: CartPath}
	}

	lines := s.cart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := preflight(lines, snapshot); err != nil {
		return nil, err
	}
	repriced, err := s.cart.Reprice(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("update cart prices: %w", err)
	}
	if repriced {
		lines = s.cart.Items()
		log.Printf("Checkout: cart prices updated from the product list")
	}

	totals := cart.Totals(lines)
	declared := pricing.Amount(totals.Total)
	req := gateway.PlaceOrderRequest{Items: make([]gateway.OrderItemInput, len(lines)), Total: &declared}
	itemCount := 0
	for i, l := range lines {
		req.Items[i] = gateway.OrderItemInput{ProductID: l.ProductID, Quantity: l.Quantity}
		itemCount += l.Quantity
	}

	log.Printf("Checkout: placing order with %d lines, total %.2f", len(lines), declared)
	order, err := s.orders.PlaceOrder(ctx, s.session.Token(), req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	log.Printf("Checkout: order %s placed, total %.2f", order.ID, order.Total)

	clearErr := s.cart.Clear(ctx)
	if clearErr != nil {
		log.Printf("Checkout: order %s placed but clearing the cart failed: %v", order.ID, clearErr)
	}

	products, err := s.products.Refresh(ctx)
	if err != nil {
		log.Printf("Checkout: product refresh failed, adjusting snapshot locally: %v", err)
		products = applyPurchase(snapshot, lines)
	}

	return &Confirmation{
		OrderID:       order.ID,
		Total:         order.Total,
		ItemCount:     itemCount,
		PricesUpdated: repriced,
		ClearErr:      clearErr,
		Products:      products,
	}, nil
}

// preflight checks lines in cart order against snapshot.
func preflight(lines []cart.Line, snapshot []gateway.Product) error {
	for _, l := range lines {
		p, ok := catalog.Find(snapshot, l.ProductID)
		if !ok {
			return &InsufficientStockError{ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity, Missing: true}
		}
		if p.Stock < l.Quantity {
			return &InsufficientStockError{ProductID: l.ProductID, Name: p.Name, Requested: l.Quantity, Available: p.Stock}
		}
	}
	return nil
}

// applyPurchase returns a copy of snapshot with the purchased quantities
// taken off stock.
func applyPurchase(snapshot []gateway.Product, lines []cart.Line) []gateway.Product {
	out := append([]gateway.Product(nil), snapshot...)
	for _, l := range lines {
		for i := range out {
			if out[i].ID == l.ProductID {
				out[i].Stock -= l.Quantity
				if out[i].Stock < 0 {
					out[i].Stock = 0
				}
			}
		}
	}
	return out
}
