package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrderID = errors.New("invalid order id")
	ErrInvalidStatus  = errors.New("invalid order status")
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// OrderItem keeps the name and unit price the product had when the order
// was placed.
type OrderItem struct {
	ProductID int64   `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	LineTotal float64 `json:"line_total" bson:"line_total"`
}

type Order struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Items     []OrderItem        `json:"items" bson:"items"`
	Subtotal  float64            `json:"subtotal" bson:"subtotal"`
	Tax       float64            `json:"tax" bson:"tax"`
	Total     float64            `json:"total" bson:"total"`
	Status    OrderStatus        `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type OrderSort string

const (
	SortNewest    OrderSort = "newest"
	SortOldest    OrderSort = "oldest"
	SortTotalDesc OrderSort = "total_desc"
	SortTotalAsc  OrderSort = "total_asc"
)

func (s OrderSort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortTotalDesc, SortTotalAsc:
		return true
	}
	return false
}

// OrderQuery drives the admin order listing. Search matches an order id
// exactly or a user id as a case-insensitive substring; an empty Status
// lists every status.
type OrderQuery struct {
	Search string
	Status OrderStatus
	Sort   OrderSort
	Limit  int64
	Offset int64
}
