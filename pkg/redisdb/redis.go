package redisdb

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and pings the server before returning it.
func Connect(cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("Successfully connected to Redis at %s! Ping response: %s", cfg.Addr, pong)
	return client, nil
}

func Close(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
		return
	}
	log.Println("Redis connection closed.")
}
