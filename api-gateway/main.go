package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-storefront/api-gateway/internal/auth"
	"ecommerce-storefront/api-gateway/internal/client"
	"ecommerce-storefront/api-gateway/internal/handlers"
	"ecommerce-storefront/pkg/config"
	"ecommerce-storefront/pkg/mongodb"
	"ecommerce-storefront/pkg/redisdb"
)

func main() {
	config.LoadEnv()

	mongoCfg := mongodb.Config{
		URI:      config.GetEnv("MONGO_URI", ""),
		Host:     config.GetEnv("MONGO_HOST", "localhost"),
		Port:     config.GetEnv("MONGO_PORT", "27017"),
		User:     config.GetEnv("MONGO_USER", ""),
		Password: config.GetEnv("MONGO_PASSWORD", ""),
		DBName:   config.GetEnv("MONGO_DBNAME", "auth_db"),
		Timeout:  config.GetDuration("MONGO_TIMEOUT", 15*time.Second),
	}
	redisCfg := redisdb.Config{
		Addr:     config.GetEnv("REDIS_ADDR", "localhost:6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetInt("REDIS_DB", 0),
	}
	jwtSecret := config.GetEnv("JWT_SECRET", "")
	tokenTTL := config.GetDuration("TOKEN_TTL", 24*time.Hour)
	inventoryAddr := config.GetEnv("INVENTORY_SERVICE_ADDR", "localhost:50051")
	orderAddr := config.GetEnv("ORDER_SERVICE_ADDR", "localhost:50052")
	gatewayPort := config.GetEnv("GATEWAY_PORT", "8080")
	authRate := config.GetFloat("AUTH_RATE_RPS", 1)
	authBurst := config.GetInt("AUTH_RATE_BURST", 5)
	shutdownTimeout := config.GetDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	mongoClient, err := mongodb.Connect(mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Disconnect(mongoClient)

	userStore := auth.NewMongoUserStore(mongoClient.Database(mongoCfg.DBName))
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), mongoCfg.Timeout)
	if err := userStore.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Fatalf("Failed to create auth indexes: %v", err)
	}
	cancelIndex()

	redisClient, err := redisdb.Connect(redisCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisdb.Close(redisClient)

	authService := auth.NewService(
		userStore,
		auth.NewTokenIssuer(jwtSecret, tokenTTL),
		auth.NewRedisDenylist(redisClient, "gateway"),
		config.GetList("ADMIN_EMAILS"),
	)

	clients, err := client.NewServiceClients(inventoryAddr, orderAddr)
	if err != nil {
		log.Fatalf("Failed to create gRPC clients: %v", err)
	}
	defer clients.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := handlers.NewIPRateLimiter(authRate, authBurst)
	go limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	router := handlers.NewRouter(handlers.RouterDeps{
		Inventory:   clients.Inventory,
		Order:       clients.Order,
		Auth:        authService,
		AuthLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + gatewayPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting API Gateway on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start API Gateway: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down API Gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced API Gateway shutdown: %v", err)
	}

	log.Println("API Gateway exiting")
}
