package grpc

import (
	"ecommerce-storefront/order-service/internal/domain"
	"ecommerce-storefront/order-service/pb"

	"google.golang.org/protobuf/types/known/timestamppb"
)

func OrderItemToProto(item domain.OrderItem) *pb.OrderItem {
	return &pb.OrderItem{
		ProductID: item.ProductID,
		Name:      item.Name,
		Quantity:  int32(item.Quantity),
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
	}
}

func OrderItemsToProto(items []domain.OrderItem) []*pb.OrderItem {
	protoItems := make([]*pb.OrderItem, len(items))
	for i, item := range items {
		protoItems[i] = OrderItemToProto(item)
	}
	return protoItems
}

func OrderToProto(o *domain.Order) *pb.Order {
	if o == nil {
		return nil
	}
	return &pb.Order{
		ID:        o.ID.Hex(),
		UserID:    o.UserID,
		Items:     OrderItemsToProto(o.Items),
		Subtotal:  o.Subtotal,
		Tax:       o.Tax,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: timestamppb.New(o.CreatedAt),
		UpdatedAt: timestamppb.New(o.UpdatedAt),
	}
}

func OrdersToProto(orders []*domain.Order) []*pb.Order {
	protoOrders := make([]*pb.Order, len(orders))
	for i, o := range orders {
		protoOrders[i] = OrderToProto(o)
	}
	return protoOrders
}
