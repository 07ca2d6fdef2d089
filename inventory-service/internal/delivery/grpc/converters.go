package grpc

import (
	"ecommerce-storefront/inventory-service/internal/domain"
	"ecommerce-storefront/inventory-service/pb"

	"google.golang.org/protobuf/types/known/timestamppb"
)

func ProductToProto(p *domain.Product) *pb.Product {
	if p == nil {
		return nil
	}
	return &pb.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Stock:       int32(p.Stock),
		CreatedAt:   timestamppb.New(p.CreatedAt),
		UpdatedAt:   timestamppb.New(p.UpdatedAt),
	}
}

func ProductsToProto(products []*domain.Product) []*pb.Product {
	protoProducts := make([]*pb.Product, len(products))
	for i, p := range products {
		protoProducts[i] = ProductToProto(p)
	}
	return protoProducts
}
