package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcServer "ecommerce-storefront/inventory-service/internal/delivery/grpc"
	repo "ecommerce-storefront/inventory-service/internal/repository"
	pb "ecommerce-storefront/inventory-service/pb"
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
		DBName:   config.GetEnv("MONGO_DBNAME", "inventory_db"),
		Timeout:  config.GetDuration("MONGO_TIMEOUT", 15*time.Second),
	}
	grpcPort := config.GetEnv("GRPC_PORT", "50051")
	shutdownTimeout := config.GetDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	mongoClient, err := mongodb.Connect(mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Disconnect(mongoClient)

	productStore := repo.NewMongoProductStore(mongoClient.Database(mongoCfg.DBName))
	inventoryGrpcServer := grpcServer.NewInventoryServer(productStore)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", grpcPort))
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", grpcPort, err)
	}

	server := grpc.NewServer()
	pb.RegisterInventoryServiceServer(server, inventoryGrpcServer)

	go func() {
		log.Printf("Starting Inventory gRPC Service on port %s", grpcPort)
		if err := server.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down gRPC server...")

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		log.Println("Graceful stop timed out, forcing shutdown")
		server.Stop()
	}

	log.Println("Server exiting")
}
