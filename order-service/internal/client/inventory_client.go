package client

import (
	"context"
	"fmt"
	"log"

	inventorypb "ecommerce-storefront/inventory-service/pb"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// InventoryClient is what order placement needs from the inventory service.
type InventoryClient interface {
	GetProduct(ctx context.Context, productID int64) (*inventorypb.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error)
	RestockProduct(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error)
}

type grpcInventoryClient struct {
	conn inventorypb.InventoryServiceClient
}

func NewInventoryGRPCClient(target string) (InventoryClient, *grpc.ClientConn, error) {
	log.Printf("Connecting to Inventory gRPC Service at %s", target)
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create inventory service client: %w", err)
	}
	return NewInventoryClient(inventorypb.NewInventoryServiceClient(conn)), conn, nil
}

func NewInventoryClient(c inventorypb.InventoryServiceClient) InventoryClient {
	return &grpcInventoryClient{conn: c}
}

func productFrom(resp *inventorypb.ProductResponse, method string, productID int64) (*inventorypb.Product, error) {
	if resp == nil || resp.Product == nil {
		log.Printf("gRPC Client: Received nil product from %s for ID: %d", method, productID)
		return nil, status.Error(codes.Internal, "received nil product from inventory service")
	}
	return resp.Product, nil
}

func logCallError(method string, err error) {
	if st, ok := status.FromError(err); ok {
		log.Printf("gRPC Client: InventoryService.%s failed with code %s: %s", method, st.Code(), st.Message())
		return
	}
	log.Printf("gRPC Client: InventoryService.%s failed with non-gRPC error: %v", method, err)
}

func (c *grpcInventoryClient) GetProduct(ctx context.Context, productID int64) (*inventorypb.Product, error) {
	resp, err := c.conn.GetProduct(ctx, &inventorypb.GetProductRequest{ID: productID})
	if err != nil {
		logCallError("GetProduct", err)
		return nil, err
	}
	return productFrom(resp, "GetProduct", productID)
}

func (c *grpcInventoryClient) DecrementStock(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error) {
	resp, err := c.conn.DecrementStock(ctx, &inventorypb.StockRequest{ProductID: productID, Quantity: int32(quantity)})
	if err != nil {
		logCallError("DecrementStock", err)
		return nil, err
	}
	return productFrom(resp, "DecrementStock", productID)
}

func (c *grpcInventoryClient) RestockProduct(ctx context.Context, productID int64, quantity int) (*inventorypb.Product, error) {
	resp, err := c.conn.RestockProduct(ctx, &inventorypb.StockRequest{ProductID: productID, Quantity: int32(quantity)})
	if err != nil {
		logCallError("RestockProduct", err)
		return nil, err
	}
	return productFrom(resp, "RestockProduct", productID)
}
