package grpc

import (
	"context"
	"errors"
	"log"
	"strings"

	"ecommerce-storefront/inventory-service/internal/domain"
	pb "ecommerce-storefront/inventory-service/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// ProductStore is the persistence the inventory server needs.
// *repository.MongoProductStore satisfies it.
type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f domain.ProductFilter, sortBy domain.SortOption, limit, offset int64) ([]*domain.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	DecrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
	IncrementStock(ctx context.Context, id int64, quantity int) (*domain.Product, error)
}

type InventoryServer struct {
	pb.UnimplementedInventoryServiceServer
	productStore ProductStore
}

func NewInventoryServer(ps ProductStore) *InventoryServer {
	return &InventoryServer{productStore: ps}
}

func validateProductFields(name string, price float64, stock int32) error {
	if strings.TrimSpace(name) == "" {
		return status.Error(codes.InvalidArgument, "Product name is required")
	}
	if price <= 0 {
		return status.Error(codes.InvalidArgument, "Price must be positive")
	}
	if stock < 0 {
		return status.Error(codes.InvalidArgument, "Stock cannot be negative")
	}
	return nil
}

// storeError maps store failures onto gRPC status codes.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		log.Printf("Failed to %s: %v", action, err)
		return status.Errorf(codes.Internal, "Failed to %s: %v", action, err)
	}
}

func (s *InventoryServer) CreateProduct(ctx context.Context, req *pb.CreateProductRequest) (*pb.ProductResponse, error) {
	if err := validateProductFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       int(req.Stock),
	}
	if err := s.productStore.Create(ctx, product); err != nil {
		return nil, storeError(err, "create product")
	}

	return &pb.ProductResponse{Product: ProductToProto(product)}, nil
}

func (s *InventoryServer) GetProduct(ctx context.Context, req *pb.GetProductRequest) (*pb.ProductResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Product ID must be positive")
	}

	product, err := s.productStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, storeError(err, "get product")
	}

	return &pb.ProductResponse{Product: ProductToProto(product)}, nil
}

func (s *InventoryServer) UpdateProduct(ctx context.Context, req *pb.UpdateProductRequest) (*pb.ProductResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Product ID must be positive")
	}
	if err := validateProductFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       int(req.Stock),
	}
	if err := s.productStore.Update(ctx, req.ID, product); err != nil {
		return nil, storeError(err, "update product")
	}

	updated, err := s.productStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, storeError(err, "retrieve updated product")
	}

	return &pb.ProductResponse{Product: ProductToProto(updated)}, nil
}

func (s *InventoryServer) DeleteProduct(ctx context.Context, req *pb.DeleteProductRequest) (*emptypb.Empty, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Product ID must be positive")
	}

	if err := s.productStore.Delete(ctx, req.ID); err != nil {
		return nil, storeError(err, "delete product")
	}

	return &emptypb.Empty{}, nil
}

func (s *InventoryServer) ListProducts(ctx context.Context, req *pb.ListProductsRequest) (*pb.ListProductsResponse, error) {
	limit := int64(req.PageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := int64(req.PageNumber-1) * limit
	if offset < 0 {
		offset = 0
	}

	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return nil, status.Error(codes.InvalidArgument, "min_price cannot exceed max_price")
	}
	sortBy := domain.SortOption(req.Sort)
	if req.Sort != "" && !sortBy.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown sort option %q", req.Sort)
	}

	filter := domain.ProductFilter{
		Categories:  req.Categories,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		InStockOnly: req.InStockOnly,
		Search:      req.Search,
	}

	products, total, err := s.productStore.List(ctx, filter, sortBy, limit, offset)
	if err != nil {
		return nil, storeError(err, "list products")
	}

	return &pb.ListProductsResponse{
		Products:   ProductsToProto(products),
		TotalCount: total,
	}, nil
}

func (s *InventoryServer) ListCategories(ctx context.Context, _ *pb.ListCategoriesRequest) (*pb.ListCategoriesResponse, error) {
	categories, err := s.productStore.Categories(ctx)
	if err != nil {
		return nil, storeError(err, "list categories")
	}
	return &pb.ListCategoriesResponse{Categories: categories}, nil
}

func validateStockRequest(req *pb.StockRequest) error {
	if req.ProductID <= 0 {
		return status.Error(codes.InvalidArgument, "Product ID must be positive")
	}
	if req.Quantity <= 0 {
		return status.Error(codes.InvalidArgument, "Quantity must be positive")
	}
	return nil
}

// DecrementStock takes units out of stock, failing with FailedPrecondition
// when fewer than the requested quantity remain.
func (s *InventoryServer) DecrementStock(ctx context.Context, req *pb.StockRequest) (*pb.ProductResponse, error) {
	if err := validateStockRequest(req); err != nil {
		return nil, err
	}

	product, err := s.productStore.DecrementStock(ctx, req.ProductID, int(req.Quantity))
	if err != nil {
		return nil, storeError(err, "decrement stock")
	}
	return &pb.ProductResponse{Product: ProductToProto(product)}, nil
}

func (s *InventoryServer) RestockProduct(ctx context.Context, req *pb.StockRequest) (*pb.ProductResponse, error) {
	if err := validateStockRequest(req); err != nil {
		return nil, err
	}

	product, err := s.productStore.IncrementStock(ctx, req.ProductID, int(req.Quantity))
	if err != nil {
		return nil, storeError(err, "restock product")
	}
	return &pb.ProductResponse{Product: ProductToProto(product)}, nil
}
