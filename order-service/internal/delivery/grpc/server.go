package grpc

import (
	"context"
	"errors"
	"log"

	"ecommerce-storefront/order-service/internal/domain"
	"ecommerce-storefront/order-service/internal/placement"
	pb "ecommerce-storefront/order-service/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	ListByUserID(ctx context.Context, userID string, limit, offset int64) ([]*domain.Order, int64, error)
	List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error)
}

type Placer interface {
	Place(ctx context.Context, req placement.Request) (*domain.Order, error)
}

type OrderServer struct {
	pb.UnimplementedOrderServiceServer
	orderStore OrderStore
	placer     Placer
}

func NewOrderServer(os OrderStore, p Placer) *OrderServer {
	if os == nil {
		log.Fatalf("OrderStore cannot be nil")
	}
	if p == nil {
		log.Fatalf("Placer cannot be nil")
	}
	return &OrderServer{orderStore: os, placer: p}
}

func page(size, number int32) (limit, offset int64) {
	limit = int64(size)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	p := int64(number)
	if p <= 0 {
		p = 1
	}
	return limit, (p - 1) * limit
}

// storeError maps order store failures onto gRPC status codes.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOrderID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		log.Printf("Failed to %s: %v", action, err)
		return status.Errorf(codes.Internal, "Failed to %s: %v", action, err)
	}
}

func placementError(err error) error {
	switch {
	case errors.Is(err, placement.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, placement.ErrProductUnavailable),
		errors.Is(err, placement.ErrInsufficientStock),
		errors.Is(err, placement.ErrPriceMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "Failed to place order: %v", err)
	}
}

func (s *OrderServer) PlaceOrder(ctx context.Context, req *pb.PlaceOrderRequest) (*pb.OrderResponse, error) {
	log.Printf("Received PlaceOrder request for user %s with %d items", req.UserID, len(req.Items))

	items := make([]placement.Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it == nil {
			return nil, status.Error(codes.InvalidArgument, "Order item cannot be empty")
		}
		items = append(items, placement.Item{ProductID: it.ProductID, Quantity: int(it.Quantity)})
	}

	order, err := s.placer.Place(ctx, placement.Request{
		UserID:        req.UserID,
		Items:         items,
		DeclaredTotal: req.DeclaredTotal,
	})
	if err != nil {
		log.Printf("PlaceOrder failed for user %s: %v", req.UserID, err)
		return nil, placementError(err)
	}

	return &pb.OrderResponse{Order: OrderToProto(order)}, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, req *pb.GetOrderRequest) (*pb.OrderResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "Order ID is required")
	}

	order, err := s.orderStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, storeError(err, "get order")
	}
	return &pb.OrderResponse{Order: OrderToProto(order)}, nil
}

func (s *OrderServer) ListUserOrders(ctx context.Context, req *pb.ListUserOrdersRequest) (*pb.ListOrdersResponse, error) {
	if req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "User ID is required to list orders")
	}

	limit, offset := page(req.PageSize, req.PageNumber)
	orders, total, err := s.orderStore.ListByUserID(ctx, req.UserID, limit, offset)
	if err != nil {
		return nil, storeError(err, "list user orders")
	}

	log.Printf("Found %d orders (total %d) for user %s", len(orders), total, req.UserID)
	return &pb.ListOrdersResponse{Orders: OrdersToProto(orders), TotalCount: total}, nil
}

func (s *OrderServer) ListOrders(ctx context.Context, req *pb.ListOrdersRequest) (*pb.ListOrdersResponse, error) {
	q := domain.OrderQuery{Search: req.Search, Sort: domain.OrderSort(req.Sort)}
	if req.Status != "" {
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		q.Status = st
	}
	if req.Sort != "" && !q.Sort.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown sort option %q", req.Sort)
	}
	q.Limit, q.Offset = page(req.PageSize, req.PageNumber)

	orders, total, err := s.orderStore.List(ctx, q)
	if err != nil {
		return nil, storeError(err, "list orders")
	}
	return &pb.ListOrdersResponse{Orders: OrdersToProto(orders), TotalCount: total}, nil
}

func (s *OrderServer) UpdateOrderStatus(ctx context.Context, req *pb.UpdateOrderStatusRequest) (*pb.OrderResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "Order ID is required")
	}
	newStatus, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	log.Printf("Received UpdateOrderStatus request for ID: %s to status %s", req.ID, newStatus)

	if err := s.orderStore.UpdateStatus(ctx, req.ID, newStatus); err != nil {
		return nil, storeError(err, "update order status")
	}

	updated, err := s.orderStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, storeError(err, "retrieve updated order")
	}
	return &pb.OrderResponse{Order: OrderToProto(updated)}, nil
}
