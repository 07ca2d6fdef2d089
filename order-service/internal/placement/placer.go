// Package placement turns a checkout request into a stored order while
// keeping inventory consistent. Stock is taken one item at a time with the
// inventory service's conditional decrement; when any item cannot be
// taken, the units already taken are put back and the order is cancelled.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	inventorypb "ecommerce-storefront/inventory-service/pb"
	"ecommerce-storefront/order-service/internal/domain"
	"ecommerce-storefront/pkg/pricing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrInvalidRequest     = errors.New("invalid order request")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrPriceMismatch      = errors.New("order total does not match current prices")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

const compensationTimeout = 10 * time.Second

type Inventory interface {
	GetProduct(ctx context.Context, productID int64) (*inventorypb.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error)
	RestockProduct(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type Item struct {
	ProductID int64
	Quantity  int
}

type Request struct {
	UserID string
	Items  []Item
	// DeclaredTotal is the total the client showed the buyer. When set it
	// must equal the total recomputed from current prices.
	DeclaredTotal *float64
}

type Placer struct {
	inventory Inventory
	orders    OrderStore
}

func NewPlacer(inventory Inventory, orders OrderStore) *Placer {
	return &Placer{inventory: inventory, orders: orders}
}

func validate(req Request) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}
	seen := make(map[int64]bool, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return fmt.Errorf("%w: product %d quantity %d", ErrInvalidRequest, item.ProductID, item.Quantity)
		}
		if seen[item.ProductID] {
			return fmt.Errorf("%w: duplicate product %d", ErrInvalidRequest, item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return nil
}

// inventoryError classifies a failed inventory call for productID.
func inventoryError(err error, productID int64) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: product %d not found", ErrProductUnavailable, productID)
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: product %d: %s", ErrInsufficientStock, productID, status.Convert(err).Message())
	default:
		return fmt.Errorf("inventory call for product %d failed: %w", productID, err)
	}
}

// Place validates the request, prices it from inventory, stores a pending
// order and then takes stock for each item in request order.
func (p *Placer) Place(ctx context.Context, req Request) (*domain.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, it := range req.Items {
		product, err := p.inventory.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, inventoryError(err, it.ProductID)
		}
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      product.Name,
			Quantity:  it.Quantity,
			UnitPrice: product.Price,
			LineTotal: pricing.Amount(pricing.LineTotal(product.Price, it.Quantity)),
		})
		lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: it.Quantity})
	}

	totals := pricing.Compute(lines)
	if req.DeclaredTotal != nil && !pricing.Matches(*req.DeclaredTotal, totals.Total) {
		log.Printf("Placement for user %s rejected: declared total %.2f, current total %s", req.UserID, *req.DeclaredTotal, totals.Total.StringFixed(2))
		return nil, fmt.Errorf("%w: declared %.2f, current %s", ErrPriceMismatch, *req.DeclaredTotal, totals.Total.StringFixed(2))
	}

	order := &domain.Order{
		UserID:   req.UserID,
		Items:    items,
		Subtotal: pricing.Amount(totals.Subtotal),
		Tax:      pricing.Amount(totals.Tax),
		Total:    pricing.Amount(totals.Total),
		Status:   domain.StatusPending,
	}
	if err := p.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	for i, item := range order.Items {
		if _, err := p.inventory.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("Stock decrement failed for order %s, product %d: %v", order.ID.Hex(), item.ProductID, err)
			p.compensate(ctx, order, order.Items[:i])
			return nil, inventoryError(err, item.ProductID)
		}
	}

	log.Printf("Order %s placed for user %s, %d items, total %.2f", order.ID.Hex(), order.UserID, len(order.Items), order.Total)
	return order, nil
}

// compensate puts back the stock taken for taken, most recent first, and
// cancels the order. It runs even when ctx is already cancelled.
func (p *Placer) compensate(ctx context.Context, order *domain.Order, taken []domain.OrderItem) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for i := len(taken) - 1; i >= 0; i-- {
		item := taken[i]
		if _, err := p.inventory.RestockProduct(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("Compensation: failed to restock product %d by %d for order %s: %v", item.ProductID, item.Quantity, order.ID.Hex(), err)
		}
	}

	if err := p.orders.UpdateStatus(ctx, order.ID.Hex(), domain.StatusCancelled); err != nil {
		log.Printf("Compensation: failed to cancel order %s: %v", order.ID.Hex(), err)
		return
	}
	order.Status = domain.StatusCancelled
}
