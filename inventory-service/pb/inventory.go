// Package pb holds the wire messages and gRPC service descriptors of the
// inventory service. Messages are encoded with the codec from pkg/grpcjson.
package pb

import (
	"context"

	"ecommerce-storefront/pkg/grpcjson"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Product struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	ImageURL    string                 `json:"image_url"`
	Price       float64                `json:"price"`
	Stock       int32                  `json:"stock"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Stock       int32   `json:"stock"`
}

type UpdateProductRequest struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Stock       int32   `json:"stock"`
}

type GetProductRequest struct {
	ID int64 `json:"id"`
}

type DeleteProductRequest struct {
	ID int64 `json:"id"`
}

type ProductResponse struct {
	Product *Product `json:"product"`
}

type ListProductsRequest struct {
	Categories  []string `json:"categories,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	InStockOnly bool     `json:"in_stock_only,omitempty"`
	Search      string   `json:"search,omitempty"`
	Sort        string   `json:"sort,omitempty"`
	PageSize    int32    `json:"page_size,omitempty"`
	PageNumber  int32    `json:"page_number,omitempty"`
}

type ListProductsResponse struct {
	Products   []*Product `json:"products"`
	TotalCount int64      `json:"total_count"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// StockRequest is used by both DecrementStock and RestockProduct.
type StockRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

const (
	InventoryService_CreateProduct_FullMethodName  = "/inventory.InventoryService/CreateProduct"
	InventoryService_GetProduct_FullMethodName     = "/inventory.InventoryService/GetProduct"
	InventoryService_UpdateProduct_FullMethodName  = "/inventory.InventoryService/UpdateProduct"
	InventoryService_DeleteProduct_FullMethodName  = "/inventory.InventoryService/DeleteProduct"
	InventoryService_ListProducts_FullMethodName   = "/inventory.InventoryService/ListProducts"
	InventoryService_ListCategories_FullMethodName = "/inventory.InventoryService/ListCategories"
	InventoryService_DecrementStock_FullMethodName = "/inventory.InventoryService/DecrementStock"
	InventoryService_RestockProduct_FullMethodName = "/inventory.InventoryService/RestockProduct"
)

type InventoryServiceClient interface {
	CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error)
	DecrementStock(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	RestockProduct(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc}
}

func (c *inventoryServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpcjson.CallOption()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *inventoryServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := c.invoke(ctx, InventoryService_CreateProduct_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := c.invoke(ctx, InventoryService_GetProduct_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := c.invoke(ctx, InventoryService_UpdateProduct_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invoke(ctx, InventoryService_DeleteProduct_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.invoke(ctx, InventoryService_ListProducts_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	out := new(ListCategoriesResponse)
	if err := c.invoke(ctx, InventoryService_ListCategories_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) DecrementStock(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := c.invoke(ctx, InventoryService_DecrementStock_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) RestockProduct(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := c.invoke(ctx, InventoryService_RestockProduct_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type InventoryServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*emptypb.Empty, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	DecrementStock(context.Context, *StockRequest) (*ProductResponse, error)
	RestockProduct(context.Context, *StockRequest) (*ProductResponse, error)
}

// UnimplementedInventoryServiceServer can be embedded to keep servers
// compiling when methods are added.
type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProduct not implemented")
}
func (UnimplementedInventoryServiceServer) GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}
func (UnimplementedInventoryServiceServer) UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProduct not implemented")
}
func (UnimplementedInventoryServiceServer) DeleteProduct(context.Context, *DeleteProductRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteProduct not implemented")
}
func (UnimplementedInventoryServiceServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProducts not implemented")
}
func (UnimplementedInventoryServiceServer) ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCategories not implemented")
}
func (UnimplementedInventoryServiceServer) DecrementStock(context.Context, *StockRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DecrementStock not implemented")
}
func (UnimplementedInventoryServiceServer) RestockProduct(context.Context, *StockRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RestockProduct not implemented")
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](fullMethod string, call func(InventoryServiceServer, context.Context, *Req) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "inventory.InventoryService",
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProduct", Handler: unaryHandler(InventoryService_CreateProduct_FullMethodName, InventoryServiceServer.CreateProduct)},
		{MethodName: "GetProduct", Handler: unaryHandler(InventoryService_GetProduct_FullMethodName, InventoryServiceServer.GetProduct)},
		{MethodName: "UpdateProduct", Handler: unaryHandler(InventoryService_UpdateProduct_FullMethodName, InventoryServiceServer.UpdateProduct)},
		{MethodName: "DeleteProduct", Handler: unaryHandler(InventoryService_DeleteProduct_FullMethodName, InventoryServiceServer.DeleteProduct)},
		{MethodName: "ListProducts", Handler: unaryHandler(InventoryService_ListProducts_FullMethodName, InventoryServiceServer.ListProducts)},
		{MethodName: "ListCategories", Handler: unaryHandler(InventoryService_ListCategories_FullMethodName, InventoryServiceServer.ListCategories)},
		{MethodName: "DecrementStock", Handler: unaryHandler(InventoryService_DecrementStock_FullMethodName, InventoryServiceServer.DecrementStock)},
		{MethodName: "RestockProduct", Handler: unaryHandler(InventoryService_RestockProduct_FullMethodName, InventoryServiceServer.RestockProduct)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory-service/pb",
}
