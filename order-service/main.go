package main

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	invClient "ecommerce-storefront/order-service/internal/client"
	grpcServer "ecommerce-storefront/order-service/internal/delivery/grpc"
	"ecommerce-storefront/order-service/internal/placement"
	repo "ecommerce-storefront/order-service/internal/repository"
	"ecommerce-storefront/order-service/pb"
	"ecommerce-storefront/pkg/config"
	"ecommerce-storefront/pkg/mongodb"

	"google.golang.org/grpc"
)

func main() {
	config.LoadEnv()

	mongoCfg := mongodb.Config{
		URI:      config.GetEnv("MONGO_URI", ""),
		Host:     config.GetEnv("MONGO_HOST", "localhost"),
		Port:     config.GetEnv("MONGO_PORT", "27017"),
		User:     config.GetEnv("MONGO_USER", ""),
		Password: config.GetEnv("MONGO_PASSWORD", ""),
		DBName:   config.GetEnv("MONGO_DBNAME", "order_db"),
		Timeout:  config.GetDuration("MONGO_TIMEOUT", 15*time.Second),
	}
	grpcPort := config.GetEnv("GRPC_PORT", "50052")
	inventoryServiceAddr := config.GetEnv("INVENTORY_SERVICE_ADDR", "localhost:50051")
	shutdownTimeout := config.GetDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	mongoClient, err := mongodb.Connect(mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Disconnect(mongoClient)

	inventoryClient, inventoryConn, err := invClient.NewInventoryGRPCClient(inventoryServiceAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Inventory Service at %s: %v", inventoryServiceAddr, err)
	}
	defer func() {
		log.Println("Closing connection to Inventory Service...")
		inventoryConn.Close()
	}()

	orderStore := repo.NewMongoOrderStore(mongoClient.Database(mongoCfg.DBName))
	placer := placement.NewPlacer(inventoryClient, orderStore)
	orderServer := grpcServer.NewOrderServer(orderStore, placer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", grpcPort))
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", grpcPort, err)
	}

	srv := grpc.NewServer()
	pb.RegisterOrderServiceServer(srv, orderServer)

	go func() {
		log.Printf("Starting Order gRPC Service on port %s", grpcPort)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
		log.Println("gRPC server stopped serving")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %v, shutting down gRPC server...", sig)

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	t := time.NewTimer(shutdownTimeout)
	select {
	case <-t.C:
		log.Println("Graceful shutdown timed out, forcing stop.")
		srv.Stop()
	case <-stopped:
		t.Stop()
		log.Println("gRPC server stopped gracefully.")
	}

	log.Println("Order Service exiting")
}
