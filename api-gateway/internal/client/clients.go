package client

import (
	"fmt"
	"log"

	inventorypb "ecommerce-storefront/inventory-service/pb"
	orderpb "ecommerce-storefront/order-service/pb"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type ServiceClients struct {
	Inventory inventorypb.InventoryServiceClient
	Order     orderpb.OrderServiceClient
	invConn   *grpc.ClientConn
	ordConn   *grpc.ClientConn
}

// NewServiceClients creates lazy connections to both backend services.
// Connection errors surface on the first call, as Unavailable.
func NewServiceClients(invTarget, ordTarget string) (*ServiceClients, error) {
	log.Printf("API Gateway: Connecting to Inventory gRPC Service at %s", invTarget)
	invConn, err := grpc.NewClient(invTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory service client (%s): %w", invTarget, err)
	}

	log.Printf("API Gateway: Connecting to Order gRPC Service at %s", ordTarget)
	ordConn, err := grpc.NewClient(ordTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		invConn.Close()
		return nil, fmt.Errorf("failed to create order service client (%s): %w", ordTarget, err)
	}

	return &ServiceClients{
		Inventory: inventorypb.NewInventoryServiceClient(invConn),
		Order:     orderpb.NewOrderServiceClient(ordConn),
		invConn:   invConn,
		ordConn:   ordConn,
	}, nil
}

func (c *ServiceClients) Close() {
	log.Println("API Gateway: Closing gRPC client connections...")
	if err := c.invConn.Close(); err != nil {
		log.Printf("API Gateway: Error closing inventory connection: %v", err)
	}
	if err := c.ordConn.Close(); err != nil {
		log.Printf("API Gateway: Error closing order connection: %v", err)
	}
}
